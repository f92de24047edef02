package verify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/psykzz/avalon-hideout-mapper/internal/domain"
	"github.com/psykzz/avalon-hideout-mapper/internal/sources/dataset"
)

// ZoneLookup is the part of the zone catalog a verifier needs.
type ZoneLookup interface {
	Lookup(name string) (*domain.Zone, bool)
}

// CatalogZoneVerifier checks zones against the dataset already in memory.
type CatalogZoneVerifier struct {
	zones ZoneLookup
}

func NewCatalogZoneVerifier(zones ZoneLookup) *CatalogZoneVerifier {
	return &CatalogZoneVerifier{zones: zones}
}

func (v *CatalogZoneVerifier) VerifyZone(_ context.Context, zone string) (domain.Verdict, error) {
	if _, ok := v.zones.Lookup(zone); ok {
		return domain.VerdictConfirmed, nil
	}
	return domain.VerdictRejected, nil
}

// RemoteZoneVerifier checks zones against a world dataset served over HTTP.
// The dataset is fetched on first use and kept once a fetch succeeds;
// a failed fetch is retried by the next call.
type RemoteZoneVerifier struct {
	url     string
	client  *http.Client
	timeout time.Duration

	group singleflight.Group
	mu    sync.RWMutex
	names map[string]struct{}
}

func NewRemoteZoneVerifier(url string, timeout time.Duration, client *http.Client) *RemoteZoneVerifier {
	if client == nil {
		client = &http.Client{}
	}
	return &RemoteZoneVerifier{url: url, client: client, timeout: timeout}
}

func (v *RemoteZoneVerifier) VerifyZone(ctx context.Context, zone string) (domain.Verdict, error) {
	names, err := v.dataset(ctx)
	if err != nil {
		return domain.VerdictUnknown, err
	}
	if _, ok := names[zone]; ok {
		return domain.VerdictConfirmed, nil
	}
	return domain.VerdictRejected, nil
}

// Reset forgets the fetched dataset; the next check fetches it again.
func (v *RemoteZoneVerifier) Reset() {
	v.mu.Lock()
	v.names = nil
	v.mu.Unlock()
}

func (v *RemoteZoneVerifier) dataset(ctx context.Context) (map[string]struct{}, error) {
	v.mu.RLock()
	names := v.names
	v.mu.RUnlock()
	if names != nil {
		return names, nil
	}

	// The fetch outlives any single caller so that one cancelled request
	// does not fail the others waiting on it.
	ch := v.group.DoChan("world", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), v.timeout)
		defer cancel()

		names, err := v.fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		v.mu.Lock()
		v.names = names
		v.mu.Unlock()
		return names, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(map[string]struct{}), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (v *RemoteZoneVerifier) fetch(ctx context.Context) (map[string]struct{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("zone dataset request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("zone dataset returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read zone dataset: %w", err)
	}

	world, err := dataset.ParseWorld(data)
	if err != nil {
		return nil, err
	}

	zones := dataset.NewMapper().MapZones(world)
	names := make(map[string]struct{}, 2*len(zones))
	for _, z := range zones {
		names[z.Index] = struct{}{}
		if z.UniqueName != "" {
			names[z.UniqueName] = struct{}{}
		}
	}
	return names, nil
}
