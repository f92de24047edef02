package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/psykzz/avalon-hideout-mapper/internal/httpserver/deps"
	"github.com/psykzz/avalon-hideout-mapper/internal/httpserver/handlers"
)

func init() { Register(Route{Name: "servers", Access: Public, Mount: registerServers}) }

func registerServers(r chi.Router, d deps.Deps) {
	r.Get("/api/servers", handlers.ListServers(d))
	r.Get("/api/servers/{server}/hideouts", handlers.ServerHideouts(d))
}
