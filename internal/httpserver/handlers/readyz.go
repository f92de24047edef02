package handlers

import (
	"net/http"

	"github.com/psykzz/avalon-hideout-mapper/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready       bool   `json:"ready"`
	ZonesLoaded int    `json:"zones_loaded"`
	Reason      string `json:"reason,omitempty"`
}

// Readyz is ready once a zone dataset with tracked zones is loaded.
// A missing tracker credential does not make the service unready: the
// read side keeps working and submissions answer 500 on their own.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracked := d.Datasets.Current().Zones.TrackedCount()
		if tracked == 0 {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{
				Ready:  false,
				Reason: "no tracked zones loaded",
			})
			return
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true, ZonesLoaded: tracked})
	}
}
