package index

import (
	"sort"
	"strings"

	"github.com/psykzz/avalon-hideout-mapper/internal/domain"
)

// DefaultSuggestLimit caps autocomplete results.
const DefaultSuggestLimit = 10

// ZoneCatalog is a read-only snapshot of the world dataset.
// It is built once and shared by reference, so it needs no locking.
type ZoneCatalog struct {
	zones   []*domain.Zone
	byName  map[string]*domain.Zone // Index and UniqueName -> Zone
	names   []string                // sorted display names of tracked zones
	tracked int
}

// NewZoneCatalog builds the catalog and precomputes the tracked zone names.
func NewZoneCatalog(zones []*domain.Zone, family domain.ZoneFamily) *ZoneCatalog {
	c := &ZoneCatalog{
		zones:  zones,
		byName: make(map[string]*domain.Zone, len(zones)*2),
	}

	seen := make(map[string]bool, len(zones))
	for _, z := range zones {
		// First entry wins when a name is shared.
		if _, ok := c.byName[z.Index]; !ok {
			c.byName[z.Index] = z
		}
		if z.UniqueName != "" {
			if _, ok := c.byName[z.UniqueName]; !ok {
				c.byName[z.UniqueName] = z
			}
		}

		name, ok := family.DisplayName(*z)
		if !ok {
			continue
		}
		c.tracked++
		if seen[name] {
			continue
		}
		seen[name] = true
		c.names = append(c.names, name)
	}
	sort.Strings(c.names)

	return c
}

// ListZoneNames returns the display names of every tracked zone, sorted.
// The returned slice is a copy.
func (c *ZoneCatalog) ListZoneNames() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Suggest returns up to limit zone names containing term (case-insensitive).
// An empty term yields nothing; limit <= 0 uses DefaultSuggestLimit.
func (c *ZoneCatalog) Suggest(term string, limit int) []string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return []string{}
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	out := make([]string, 0, limit)
	for _, name := range c.names {
		if !strings.Contains(strings.ToLower(name), term) {
			continue
		}
		out = append(out, name)
		if len(out) == limit {
			break
		}
	}
	return out
}

// Lookup finds a zone of the full dataset by exact Index or UniqueName.
func (c *ZoneCatalog) Lookup(name string) (*domain.Zone, bool) {
	z, ok := c.byName[name]
	return z, ok
}

// Count returns the number of zones in the dataset
func (c *ZoneCatalog) Count() int { return len(c.zones) }

// TrackedCount returns the number of zones matching the tracked prefixes
func (c *ZoneCatalog) TrackedCount() int { return c.tracked }
