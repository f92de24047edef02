package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/psykzz/avalon-hideout-mapper/internal/httpserver/deps"
	"github.com/psykzz/avalon-hideout-mapper/internal/httpserver/handlers"
)

func init() { Register(Route{Name: "zones", Access: Public, Mount: registerZones}) }

func registerZones(r chi.Router, d deps.Deps) {
	r.Route("/api/zones", func(r chi.Router) {
		r.Get("/", handlers.ListZones(d))
		r.Get("/{zone}/hideouts", handlers.ZoneHideouts(d))
		r.Get("/{zone}/guilds", handlers.ZoneGuilds(d))
	})
}
