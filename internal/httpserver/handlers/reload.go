package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/psykzz/avalon-hideout-mapper/internal/httpserver/deps"
	"github.com/psykzz/avalon-hideout-mapper/internal/index"
	"github.com/psykzz/avalon-hideout-mapper/internal/logger"
)

type reloadResponse struct {
	Reloaded bool   `json:"reloaded"`
	Zones    int    `json:"zones"`
	Hideouts int    `json:"hideouts"`
	LoadedAt string `json:"loaded_at"`
}

// Reload re-reads the datasets. A request that arrives while another
// reload runs, manual or periodic, gets 429. On failure the previous datasets stay live.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Reload == nil {
			writeError(w, http.StatusNotImplemented, "Reload is not available")
			return
		}

		snap, err := d.Reload(r.Context())
		if errors.Is(err, index.ErrReloadInProgress) {
			d.Logger.Warn("datasets reload already in progress",
				logger.String("remote_ip", r.RemoteAddr))
			writeError(w, http.StatusTooManyRequests, "Reload already in progress, please wait")
			return
		}
		if err != nil {
			d.Logger.Error("manual datasets reload failed", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to reload datasets")
			return
		}

		d.Logger.Info("manual datasets reload done",
			logger.String("remote_ip", r.RemoteAddr),
			logger.Int("zones", snap.Zones.Count()),
			logger.Int("hideouts", snap.Hideouts.Count()))

		writeJSON(w, http.StatusOK, reloadResponse{
			Reloaded: true,
			Zones:    snap.Zones.Count(),
			Hideouts: snap.Hideouts.Count(),
			LoadedAt: snap.LoadedAt.UTC().Format(time.RFC3339),
		})
	}
}
