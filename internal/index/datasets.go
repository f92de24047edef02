package index

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/psykzz/avalon-hideout-mapper/internal/domain"
)

// Snapshot pairs the zone and hideout datasets loaded together.
type Snapshot struct {
	Zones    *ZoneCatalog
	Hideouts *HideoutRepository
	LoadedAt time.Time
}

// Datasets holds the current snapshot. Readers never block; a reload
// builds a whole new snapshot and swaps it in.
type Datasets struct {
	current   atomic.Pointer[Snapshot]
	reloading sync.Mutex
}

// ErrReloadInProgress is returned by Reload while another reload runs.
var ErrReloadInProgress = errors.New("datasets reload already in progress")

func NewDatasets(s *Snapshot) *Datasets {
	d := &Datasets{}
	d.current.Store(s)
	return d
}

// Current returns the snapshot in use.
// Handlers load it once per request so a request sees one consistent pair.
func (d *Datasets) Current() *Snapshot { return d.current.Load() }

// Swap replaces the snapshot and returns the previous one.
func (d *Datasets) Swap(s *Snapshot) *Snapshot { return d.current.Swap(s) }

// Reload runs load unless another reload is running, in which case it
// returns ErrReloadInProgress without calling load. Periodic and manual
// reloads share this guard so an older load never swaps in last.
func (d *Datasets) Reload(ctx context.Context, load func(context.Context) (*Snapshot, error)) (*Snapshot, error) {
	if !d.reloading.TryLock() {
		return nil, ErrReloadInProgress
	}
	defer d.reloading.Unlock()
	return load(ctx)
}

// Lookup resolves a zone name against the current snapshot.
func (d *Datasets) Lookup(name string) (*domain.Zone, bool) {
	return d.Current().Zones.Lookup(name)
}
