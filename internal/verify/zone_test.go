package verify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/psykzz/avalon-hideout-mapper/internal/domain"
	"github.com/psykzz/avalon-hideout-mapper/internal/index"
)

const worldJSON = `[
  {"Index": "AVALON-LIONEL-01", "UniqueName": "Lionel Roads 1"},
  {"Index": "TNL-001", "UniqueName": "Quaent-Al-Viesom"}
]`

func TestCatalogZoneVerifier(t *testing.T) {
	catalog := index.NewZoneCatalog([]*domain.Zone{
		{Index: "AVALON-LIONEL-01", UniqueName: "Lionel Roads 1"},
		{Index: "0000", UniqueName: "Thetford"},
	}, domain.NewZoneFamily(nil))
	v := NewCatalogZoneVerifier(catalog)

	tests := []struct {
		zone string
		want domain.Verdict
	}{
		{zone: "AVALON-LIONEL-01", want: domain.VerdictConfirmed},
		{zone: "Lionel Roads 1", want: domain.VerdictConfirmed},
		{zone: "Thetford", want: domain.VerdictConfirmed},
		{zone: "avalon-lionel-01", want: domain.VerdictRejected},
		{zone: "NOWHERE", want: domain.VerdictRejected},
	}
	for _, tt := range tests {
		got, err := v.VerifyZone(context.Background(), tt.zone)
		if err != nil || got != tt.want {
			t.Errorf("VerifyZone(%q) = %s, %v, want %s", tt.zone, got, err, tt.want)
		}
	}
}

func TestRemoteZoneVerifierMemoizes(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(worldJSON))
	}))
	defer srv.Close()

	v := NewRemoteZoneVerifier(srv.URL, time.Second, srv.Client())

	for _, tc := range []struct {
		zone string
		want domain.Verdict
	}{
		{"TNL-001", domain.VerdictConfirmed},
		{"Quaent-Al-Viesom", domain.VerdictConfirmed},
		{"AVALON-UTHER-09", domain.VerdictRejected},
	} {
		got, err := v.VerifyZone(context.Background(), tc.zone)
		if err != nil || got != tc.want {
			t.Errorf("VerifyZone(%q) = %s, %v, want %s", tc.zone, got, err, tc.want)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("dataset fetched %d times, want 1", n)
	}
}

func TestRemoteZoneVerifierRetriesAfterFailure(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(worldJSON))
	}))
	defer srv.Close()

	v := NewRemoteZoneVerifier(srv.URL, time.Second, srv.Client())

	got, err := v.VerifyZone(context.Background(), "TNL-001")
	if got != domain.VerdictUnknown || err == nil {
		t.Fatalf("first VerifyZone() = %s, %v, want unknown with error", got, err)
	}

	got, err = v.VerifyZone(context.Background(), "TNL-001")
	if got != domain.VerdictConfirmed || err != nil {
		t.Errorf("second VerifyZone() = %s, %v, want confirmed", got, err)
	}
}

func TestRemoteZoneVerifierBadDataset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not": "a list"}`))
	}))
	defer srv.Close()

	v := NewRemoteZoneVerifier(srv.URL, time.Second, srv.Client())
	if got, err := v.VerifyZone(context.Background(), "TNL-001"); got != domain.VerdictUnknown || err == nil {
		t.Errorf("VerifyZone() = %s, %v, want unknown with error", got, err)
	}
}

func TestRemoteZoneVerifierReset(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(worldJSON))
	}))
	defer srv.Close()

	v := NewRemoteZoneVerifier(srv.URL, time.Second, srv.Client())
	_, _ = v.VerifyZone(context.Background(), "TNL-001")
	v.Reset()
	_, _ = v.VerifyZone(context.Background(), "TNL-001")

	if n := hits.Load(); n != 2 {
		t.Errorf("dataset fetched %d times, want 2", n)
	}
}
