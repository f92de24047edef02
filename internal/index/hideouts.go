package index

import (
	"sort"
	"strings"

	"github.com/psykzz/avalon-hideout-mapper/internal/domain"
)

// HideoutRepository is a read-only snapshot of previously reported hideouts.
//
// New reports never land here: they go to the issue tracker, and only show
// up once the dataset is regenerated and reloaded.
type HideoutRepository struct {
	hideouts []*domain.Hideout
}

// NewHideoutRepository wraps a loaded dataset. Input order is kept.
func NewHideoutRepository(hideouts []*domain.Hideout) *HideoutRepository {
	return &HideoutRepository{hideouts: hideouts}
}

// All returns every hideout
func (r *HideoutRepository) All() []*domain.Hideout {
	out := make([]*domain.Hideout, len(r.hideouts))
	copy(out, r.hideouts)
	return out
}

// Count returns the number of hideouts in the dataset
func (r *HideoutRepository) Count() int { return len(r.hideouts) }

// ListByZone returns the hideouts of a zone (case-insensitive), optionally
// restricted to a server.
func (r *HideoutRepository) ListByZone(zoneName string, server *domain.Server) []*domain.Hideout {
	out := make([]*domain.Hideout, 0)
	for _, h := range r.hideouts {
		if !strings.EqualFold(h.ZoneName, zoneName) {
			continue
		}
		if server != nil && h.Server != *server {
			continue
		}
		out = append(out, h)
	}
	return out
}

// ListGuildsByZone returns the distinct guild names of a zone, sorted.
func (r *HideoutRepository) ListGuildsByZone(zoneName string, server *domain.Server) []string {
	seen := make(map[string]bool)
	guilds := make([]string, 0)
	for _, h := range r.ListByZone(zoneName, server) {
		if seen[h.GuildName] {
			continue
		}
		seen[h.GuildName] = true
		guilds = append(guilds, h.GuildName)
	}
	sort.Strings(guilds)
	return guilds
}

// ListByServer returns every hideout of a server
func (r *HideoutRepository) ListByServer(server domain.Server) []*domain.Hideout {
	out := make([]*domain.Hideout, 0)
	for _, h := range r.hideouts {
		if h.Server == server {
			out = append(out, h)
		}
	}
	return out
}

// GroupByGuild groups hideouts by guild name. Guilds are sorted, hideouts
// keep their input order within a guild.
func GroupByGuild(hideouts []*domain.Hideout) []domain.GuildHideouts {
	byGuild := make(map[string][]*domain.Hideout)
	for _, h := range hideouts {
		byGuild[h.GuildName] = append(byGuild[h.GuildName], h)
	}

	guilds := make([]string, 0, len(byGuild))
	for g := range byGuild {
		guilds = append(guilds, g)
	}
	sort.Strings(guilds)

	groups := make([]domain.GuildHideouts, 0, len(guilds))
	for _, g := range guilds {
		groups = append(groups, domain.GuildHideouts{
			Guild:    g,
			Count:    len(byGuild[g]),
			Hideouts: byGuild[g],
		})
	}
	return groups
}
