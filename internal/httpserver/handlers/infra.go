package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/psykzz/avalon-hideout-mapper/internal/httpserver/deps"
	"github.com/psykzz/avalon-hideout-mapper/internal/logger"
)

type componentStatus struct {
	OK             bool             `json:"ok"`
	ZonesLoaded    *int             `json:"zones_loaded,omitempty"`
	ZonesTracked   *int             `json:"zones_tracked,omitempty"`
	HideoutsLoaded *int             `json:"hideouts_loaded,omitempty"`
	LastReload     string           `json:"last_reload,omitempty"`
	Repository     string           `json:"repository,omitempty"`
	Checks         []string         `json:"checks,omitempty"`
	CachedVerdicts *int             `json:"cached_verdicts,omitempty"`
	ReportsCreated map[string]int64 `json:"reports_created,omitempty"`
	Mode           string           `json:"mode,omitempty"`
	Impact         string           `json:"impact,omitempty"`
	Error          string           `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of every component for operators.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"datasets":     datasetsStatus(d),
			"tracker":      trackerStatus(d),
			"verification": verificationStatus(d),
			"redis":        redisStatus(r.Context(), d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

// determineMode is "critical" when reports cannot be served or created,
// "degraded" when only an optional component is down.
func determineMode(components map[string]componentStatus) string {
	for _, name := range []string{"datasets", "tracker"} {
		if c, ok := components[name]; ok && !c.OK {
			return "critical"
		}
	}
	if c, ok := components["redis"]; ok && !c.OK {
		return "degraded"
	}
	return "optimal"
}

func datasetsStatus(d deps.Deps) componentStatus {
	snap := d.Datasets.Current()
	zones := snap.Zones.Count()
	tracked := snap.Zones.TrackedCount()
	hideouts := snap.Hideouts.Count()

	lastReload := "never"
	if !snap.LoadedAt.IsZero() {
		lastReload = snap.LoadedAt.UTC().Format(time.RFC3339)
	}

	return componentStatus{
		OK:             tracked > 0,
		ZonesLoaded:    &zones,
		ZonesTracked:   &tracked,
		HideoutsLoaded: &hideouts,
		LastReload:     lastReload,
	}
}

func trackerStatus(d deps.Deps) componentStatus {
	if !d.Reports.Configured() {
		return componentStatus{
			OK:         false,
			Repository: d.Repository,
			Impact:     "submissions-disabled",
			Error:      "GITHUB_TOKEN not set",
		}
	}
	return componentStatus{OK: true, Repository: d.Repository}
}

func verificationStatus(d deps.Deps) componentStatus {
	var checks []string
	if d.VerifyZones {
		checks = append(checks, "zone")
	}
	if d.VerifyGuilds {
		checks = append(checks, "guild")
	}
	if len(checks) == 0 {
		return componentStatus{OK: true, Mode: "disabled"}
	}
	return componentStatus{OK: true, Mode: "enabled", Checks: checks}
}

func redisStatus(ctx context.Context, d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{
			OK:     true,
			Mode:   "disabled",
			Impact: "guild-verdicts-uncached",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.Store.Ping(ctx); err != nil {
		d.Logger.Warn("infra: redis ping failed", logger.Error(err))
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "guild-verdicts-uncached",
			Error:  "unreachable",
		}
	}

	status := componentStatus{OK: true, Mode: "optimal"}
	if n, err := d.Store.CountGuildVerdicts(ctx); err == nil {
		status.CachedVerdicts = &n
	}
	if counts, err := d.Store.ReportCounts(ctx); err == nil {
		status.ReportsCreated = make(map[string]int64, len(counts))
		for server, n := range counts {
			status.ReportsCreated[string(server)] = n
		}
	}
	return status
}
