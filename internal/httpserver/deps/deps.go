package deps

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/psykzz/avalon-hideout-mapper/internal/index"
	"github.com/psykzz/avalon-hideout-mapper/internal/logger"
	"github.com/psykzz/avalon-hideout-mapper/internal/report"
	redisstore "github.com/psykzz/avalon-hideout-mapper/internal/store/redis"
)

// ReloadFunc loads fresh datasets, swaps them in, and returns the new snapshot.
type ReloadFunc func(ctx context.Context) (*index.Snapshot, error)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed to access the server
	AllowedCIDRS []string         // IPs allowed to access readyz/infra/reload
	TrustProxy   bool             // true if running behind a trusted reverse proxy (e.g., netlify, cloudflared)
	CORSOrigins  []string         // Origins allowed to call the API from a browser

	Datasets *index.Datasets // Zone and hideout snapshot
	Reports  *report.Service // Submission pipeline
	Reload   ReloadFunc      // nil disables POST /reload

	ReportBurst        int // Submissions allowed at once per client IP
	ReportRefillPerMin int // Submissions regained per minute per client IP

	VerifyZones  bool   // Tier 2 zone check active
	VerifyGuilds bool   // Tier 2 guild check active
	Repository   string // owner/repo receiving the issues

	RedisClient *redis.Client     // nil when the cache is disabled
	Store       *redisstore.Store // nil when the cache is disabled
}

// Now returns the configured clock, or time.Now.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
