package dataset

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/psykzz/avalon-hideout-mapper/internal/domain"
)

// hideoutNamespace seeds the deterministic ids of hideouts recorded without one.
var hideoutNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("avalon-hideout-mapper/hideouts"))

// Mapper converts dataset records to domain entities
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapZones converts a WorldConfig to zones, skipping entries without an Index
func (m *Mapper) MapZones(config WorldConfig) []*domain.Zone {
	zones := make([]*domain.Zone, 0, len(config))
	for _, props := range config {
		index := strings.TrimSpace(props.Index)
		if index == "" {
			continue
		}
		zones = append(zones, &domain.Zone{
			Index:      index,
			UniqueName: strings.TrimSpace(props.UniqueName),
		})
	}
	return zones
}

// MapHideouts converts a HideoutsConfig to hideouts.
// A record with an unknown server fails the whole dataset.
func (m *Mapper) MapHideouts(config HideoutsConfig) ([]*domain.Hideout, error) {
	hideouts := make([]*domain.Hideout, 0, len(config.Hideouts))
	for i, props := range config.Hideouts {
		server, ok := domain.ParseServer(props.Server)
		if !ok {
			return nil, fmt.Errorf("hideout #%d (id=%q): invalid server %q", i, props.ID, props.Server)
		}

		id := props.ID
		if id == "" {
			id = deriveID(props)
		}

		hideouts = append(hideouts, &domain.Hideout{
			ID:           id,
			ZoneName:     props.ZoneName,
			GuildName:    props.GuildName,
			Server:       server,
			ReportedDate: props.ReportedDate,
			Notes:        props.Notes,
		})
	}
	return hideouts, nil
}

// deriveID returns a stable UUIDv5 for a record, so ids survive restarts.
func deriveID(p HideoutProps) string {
	key := strings.Join([]string{p.ZoneName, p.GuildName, p.Server, p.ReportedDate}, "|")
	return uuid.NewSHA1(hideoutNamespace, []byte(key)).String()
}
