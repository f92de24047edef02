package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/psykzz/avalon-hideout-mapper/internal/index"
	"github.com/psykzz/avalon-hideout-mapper/internal/logger"
)

// ReloadFunc loads fresh datasets and swaps them in.
type ReloadFunc func(ctx context.Context) (*index.Snapshot, error)

// DatasetReloader re-reads the datasets on a fixed interval, so a
// regenerated hideouts.json is picked up without a restart.
type DatasetReloader struct {
	reload   ReloadFunc
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewDatasetReloader creates a reloader. An interval <= 0 disables it.
func NewDatasetReloader(reload ReloadFunc, log logger.Logger, interval time.Duration) *DatasetReloader {
	return &DatasetReloader{
		reload:   reload,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Enabled reports whether Start runs a loop.
func (dr *DatasetReloader) Enabled() bool { return dr.interval > 0 }

// Start begins the periodic reload. The datasets are already loaded at
// startup, so the first reload happens after one interval.
func (dr *DatasetReloader) Start(ctx context.Context) {
	if !dr.Enabled() {
		close(dr.done)
		return
	}

	ticker := time.NewTicker(dr.interval)
	go func() {
		defer close(dr.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				dr.tick(ctx)
			case <-dr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (dr *DatasetReloader) tick(ctx context.Context) {
	snap, err := dr.reload(ctx)
	if errors.Is(err, index.ErrReloadInProgress) {
		dr.logger.Debug("datasets reload skipped, another reload is running")
		return
	}
	if err != nil {
		// The previous snapshot stays live.
		dr.logger.Error("failed to reload datasets", logger.Error(err))
		return
	}
	dr.logger.Debug("datasets reloaded",
		logger.Int("zones", snap.Zones.Count()),
		logger.Int("hideouts", snap.Hideouts.Count()))
}

// Stop stops the reloader and waits for the loop to exit.
// It is safe to call more than once.
func (dr *DatasetReloader) Stop() {
	dr.stopOnce.Do(func() { close(dr.stopCh) })
	<-dr.done
}
