package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/psykzz/avalon-hideout-mapper/internal/httpserver/deps"
	"github.com/psykzz/avalon-hideout-mapper/internal/index"
)

// MaxSuggestLimit caps the ?limit= of zone suggestions.
const MaxSuggestLimit = 100

type zonesResponse struct {
	Zones []string `json:"zones"`
}

// ListZones returns every tracked zone name, or suggestions for ?q=.
func ListZones(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		zones := d.Datasets.Current().Zones

		q := r.URL.Query()
		term := strings.TrimSpace(q.Get("q"))
		if term == "" {
			writeJSON(w, http.StatusOK, zonesResponse{Zones: zones.ListZoneNames()})
			return
		}

		writeJSON(w, http.StatusOK, zonesResponse{Zones: zones.Suggest(term, parseLimit(q.Get("limit")))})
	}
}

// parseLimit falls back to the default on anything that is not a positive integer.
func parseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return index.DefaultSuggestLimit
	}
	return min(n, MaxSuggestLimit)
}
