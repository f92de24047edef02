package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/psykzz/avalon-hideout-mapper/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// pathParam returns a decoded chi URL parameter.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(raw)
}

// serverFilter parses the optional ?server= filter.
// ok is false when a value is present but not a known server.
func serverFilter(r *http.Request) (server *domain.Server, ok bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("server"))
	if raw == "" {
		return nil, true
	}
	s, ok := domain.ParseServer(raw)
	if !ok {
		return nil, false
	}
	return &s, true
}
