package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/psykzz/avalon-hideout-mapper/internal/httpserver/deps"
	"github.com/psykzz/avalon-hideout-mapper/internal/httpserver/handlers"
	"github.com/psykzz/avalon-hideout-mapper/internal/httpserver/mw"
)

const (
	ReportPath        = "/api/create-hideout-report"
	NetlifyReportPath = "/.netlify/functions/create-hideout-report"
)

func init() { Register(Route{Name: "report", Access: Public, Mount: registerReport}) }

// registerReport mounts the submission endpoint on both paths.
// Both share one limiter so the alias is not a second budget. Only POST
// spends tokens; other methods reach the handler and get its 405.
func registerReport(r chi.Router, d deps.Deps) {
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.ReportBurst,
		RefillPerIPPerMin: d.ReportRefillPerMin,
		MaxEntries:        10_000,
		TrustProxy:        d.TrustProxy,
		Methods:           []string{http.MethodPost},
	})

	h := handlers.CreateHideoutReport(d)
	r.With(limit).HandleFunc(ReportPath, h)
	r.With(limit).HandleFunc(NetlifyReportPath, h)
}
