package handlers

import (
	"net/http"

	"github.com/psykzz/avalon-hideout-mapper/internal/domain"
	"github.com/psykzz/avalon-hideout-mapper/internal/httpserver/deps"
	"github.com/psykzz/avalon-hideout-mapper/internal/index"
)

type zoneHideoutsResponse struct {
	Zone     string                 `json:"zone"`
	Server   *domain.Server         `json:"server,omitempty"`
	Count    int                    `json:"count"`
	Hideouts []*domain.Hideout      `json:"hideouts"`
	Guilds   []domain.GuildHideouts `json:"guilds"`
}

type zoneGuildsResponse struct {
	Zone   string         `json:"zone"`
	Server *domain.Server `json:"server,omitempty"`
	Guilds []string       `json:"guilds"`
}

type serverHideoutsResponse struct {
	Server   domain.Server     `json:"server"`
	Count    int               `json:"count"`
	Hideouts []*domain.Hideout `json:"hideouts"`
}

type serversResponse struct {
	Servers []domain.Server `json:"servers"`
}

// ZoneHideouts lists the reported hideouts of a zone, also grouped by guild.
func ZoneHideouts(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		zone := pathParam(r, "zone")
		server, ok := serverFilter(r)
		if !ok {
			writeError(w, http.StatusBadRequest, domain.InvalidServerMessage)
			return
		}

		hideouts := d.Datasets.Current().Hideouts.ListByZone(zone, server)
		writeJSON(w, http.StatusOK, zoneHideoutsResponse{
			Zone:     zone,
			Server:   server,
			Count:    len(hideouts),
			Hideouts: hideouts,
			Guilds:   index.GroupByGuild(hideouts),
		})
	}
}

// ZoneGuilds lists the distinct guilds reported in a zone.
func ZoneGuilds(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		zone := pathParam(r, "zone")
		server, ok := serverFilter(r)
		if !ok {
			writeError(w, http.StatusBadRequest, domain.InvalidServerMessage)
			return
		}

		writeJSON(w, http.StatusOK, zoneGuildsResponse{
			Zone:   zone,
			Server: server,
			Guilds: d.Datasets.Current().Hideouts.ListGuildsByZone(zone, server),
		})
	}
}

// ServerHideouts lists every reported hideout of a server.
func ServerHideouts(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		server, ok := domain.ParseServer(pathParam(r, "server"))
		if !ok {
			writeError(w, http.StatusBadRequest, domain.InvalidServerMessage)
			return
		}

		hideouts := d.Datasets.Current().Hideouts.ListByServer(server)
		writeJSON(w, http.StatusOK, serverHideoutsResponse{
			Server:   server,
			Count:    len(hideouts),
			Hideouts: hideouts,
		})
	}
}

// ListServers returns the server choices in display order.
func ListServers(_ deps.Deps) http.HandlerFunc {
	body := serversResponse{Servers: domain.Servers}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, body)
	}
}
