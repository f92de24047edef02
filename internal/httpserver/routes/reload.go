package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/psykzz/avalon-hideout-mapper/internal/httpserver/deps"
	"github.com/psykzz/avalon-hideout-mapper/internal/httpserver/handlers"
)

func init() { Register(Route{Name: "reload", Access: Operator, Mount: registerReload}) }

func registerReload(r chi.Router, d deps.Deps) {
	r.Post("/reload", handlers.Reload(d))
}
