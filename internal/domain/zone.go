package domain

import "strings"

// Zone is a single map entry of the world dataset.
//
// A Zone is identified by its Index. UniqueName is the human readable name
// and is what players see in game for tunnel (roads) zones.
type Zone struct {
	// Index is the structured code of the zone.
	// Example: AVALON-LIONEL-01, TNL-001
	Index string

	// UniqueName is the display name of the zone.
	// Example: Quaent-Al-Viesom
	UniqueName string
}

// ZoneFamily decides which zones are tracked and how they are displayed.
//
// Zones of the Avalon family are displayed by Index. Every other tracked
// family (tunnels) is displayed by UniqueName, since its Index is only a
// serial number. The order of Prefixes has no effect on display.
type ZoneFamily struct {
	Prefixes []string
}

// PrimaryZonePrefix is the family whose Index is human readable.
const PrimaryZonePrefix = "AVALON"

// DefaultZonePrefixes tracks Avalon zones and the tunnel zones of the roads.
var DefaultZonePrefixes = []string{"AVALON", "TNL"}

// NewZoneFamily builds a family from a prefix list, falling back to the defaults.
func NewZoneFamily(prefixes []string) ZoneFamily {
	cleaned := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) == 0 {
		cleaned = append(cleaned, DefaultZonePrefixes...)
	}
	return ZoneFamily{Prefixes: cleaned}
}

// DisplayName returns the name used for z, and false if z is not tracked.
func (f ZoneFamily) DisplayName(z Zone) (string, bool) {
	for _, prefix := range f.Prefixes {
		if !strings.HasPrefix(z.Index, prefix) {
			continue
		}
		if prefix == PrimaryZonePrefix || z.UniqueName == "" {
			return z.Index, true
		}
		return z.UniqueName, true
	}
	return "", false
}
