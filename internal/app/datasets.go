package app

import (
	"fmt"
	"time"

	"github.com/psykzz/avalon-hideout-mapper/internal/domain"
	"github.com/psykzz/avalon-hideout-mapper/internal/index"
	"github.com/psykzz/avalon-hideout-mapper/internal/logger"
	"github.com/psykzz/avalon-hideout-mapper/internal/sources/dataset"
)

// DatasetOptions locates the datasets. Empty paths use the bundled copies.
type DatasetOptions struct {
	ZoneFile     string
	HideoutFile  string
	ZonePrefixes []string
}

// LoadSnapshot reads both datasets and builds their indexes.
func LoadSnapshot(opts DatasetOptions, log logger.Logger, now time.Time) (*index.Snapshot, error) {
	mapper := dataset.NewMapper()

	worldLoader := dataset.NewWorldLoader(opts.ZoneFile)
	world, err := worldLoader.LoadWorld()
	if err != nil {
		return nil, fmt.Errorf("failed to load zones from %s: %w", worldLoader.Source(), err)
	}

	hideoutLoader := dataset.NewHideoutsLoader(opts.HideoutFile)
	rawHideouts, err := hideoutLoader.LoadHideouts()
	if err != nil {
		return nil, fmt.Errorf("failed to load hideouts from %s: %w", hideoutLoader.Source(), err)
	}
	hideouts, err := mapper.MapHideouts(rawHideouts)
	if err != nil {
		return nil, fmt.Errorf("invalid hideouts dataset %s: %w", hideoutLoader.Source(), err)
	}

	catalog := index.NewZoneCatalog(mapper.MapZones(world), domain.NewZoneFamily(opts.ZonePrefixes))

	log.Info("datasets loaded",
		logger.String("zones_source", worldLoader.Source()),
		logger.String("hideouts_source", hideoutLoader.Source()),
		logger.Int("zones", catalog.Count()),
		logger.Int("zones_tracked", catalog.TrackedCount()),
		logger.Int("hideouts", len(hideouts)))

	return &index.Snapshot{
		Zones:    catalog,
		Hideouts: index.NewHideoutRepository(hideouts),
		LoadedAt: now,
	}, nil
}
