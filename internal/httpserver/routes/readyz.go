package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/psykzz/avalon-hideout-mapper/internal/httpserver/deps"
	"github.com/psykzz/avalon-hideout-mapper/internal/httpserver/handlers"
)

func init() {
	Register(Route{Name: "health", Access: Public, Mount: registerHealth})
	Register(Route{Name: "ops", Access: Operator, Mount: registerOps})
}

func registerHealth(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
}

func registerOps(r chi.Router, d deps.Deps) {
	r.Get("/readyz", handlers.Readyz(d))
	r.Get("/infra", handlers.Infra(d))
}
