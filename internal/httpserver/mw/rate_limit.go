package mw

import (
	"math"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/psykzz/avalon-hideout-mapper/internal/utils"
)

// MsgTooManyRequests is the JSON error of a rejected request.
const MsgTooManyRequests = "Too many requests, please try again later"

// RateLimitConfig sizes the per-client token buckets.
type RateLimitConfig struct {
	Burst             int // bucket capacity, at least 1
	RefillPerIPPerMin int // tokens added per minute, at least 1
	MaxEntries        int // sweep idle buckets once this many clients are tracked
	SweepInterval     time.Duration
	IdleTTL           time.Duration
	TrustProxy        bool             // resolve IP from proxy headers when true
	Methods           []string         // methods that spend tokens, empty means every method
	Now               func() time.Time // for testing, defaults to time.Now
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = 15 * time.Minute
	}
	c.Burst = max(c.Burst, 1)
	c.RefillPerIPPerMin = max(c.RefillPerIPPerMin, 1)
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Decision is the outcome of one Limiter.Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int           // whole tokens left after this request
	RetryAfter time.Duration // zero when allowed
}

type bucket struct {
	mu       sync.Mutex
	tokens   float64
	refilled time.Time
	seen     time.Time
}

// take refills the bucket up to capacity, then spends one token if it can.
func (b *bucket) take(now time.Time, capacity, perSec float64) Decision {
	b.mu.Lock()
	defer b.mu.Unlock()

	if elapsed := now.Sub(b.refilled).Seconds(); elapsed > 0 {
		b.tokens = math.Min(capacity, b.tokens+elapsed*perSec)
		b.refilled = now
	}

	if b.tokens < 1 {
		wait := math.Max(1, math.Ceil((1-b.tokens)/perSec))
		return Decision{RetryAfter: time.Duration(wait) * time.Second}
	}
	b.tokens--
	b.seen = now
	return Decision{Allowed: true, Remaining: int(b.tokens)}
}

// Limiter keeps one token bucket per client key.
type Limiter struct {
	cfg      RateLimitConfig
	capacity float64
	perSec   float64

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func NewLimiter(cfg RateLimitConfig) *Limiter {
	cfg = cfg.withDefaults()
	return &Limiter{
		cfg:       cfg,
		capacity:  float64(cfg.Burst),
		perSec:    float64(cfg.RefillPerIPPerMin) / 60,
		buckets:   make(map[string]*bucket, 1024),
		lastSweep: cfg.Now(),
	}
}

// Allow spends a token of key's bucket.
func (l *Limiter) Allow(key string) Decision {
	now := l.cfg.Now()
	return l.bucketFor(key, now).take(now, l.capacity, l.perSec)
}

// charges reports whether requests with method spend a token.
func (l *Limiter) charges(method string) bool {
	return len(l.cfg.Methods) == 0 || slices.Contains(l.cfg.Methods, method)
}

// Clients returns the number of tracked buckets.
func (l *Limiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) bucketFor(key string, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	full := l.cfg.MaxEntries > 0 && len(l.buckets) >= l.cfg.MaxEntries
	if full || now.Sub(l.lastSweep) >= l.cfg.SweepInterval {
		l.sweepLocked(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, refilled: now, seen: now}
		l.buckets[key] = b
	}
	return b
}

// sweepLocked drops buckets idle for longer than IdleTTL.
func (l *Limiter) sweepLocked(now time.Time) {
	for key, b := range l.buckets {
		b.mu.Lock()
		idle := now.Sub(b.seen) > l.cfg.IdleTTL
		b.mu.Unlock()
		if idle {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

// RateLimit limits requests per client IP with a token bucket.
// Rejected requests get a JSON 429 with Retry-After.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return RateLimitWith(NewLimiter(cfg))
}

// RateLimitWith applies an existing limiter, so several routes can share
// one budget.
func RateLimitWith(l *Limiter) func(http.Handler) http.Handler {
	limit := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.charges(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			d := l.Allow(utils.ClientIP(r, l.cfg.TrustProxy))

			h := w.Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if !d.Allowed {
				h.Set("Retry-After", strconv.Itoa(int(d.RetryAfter/time.Second)))
				writeError(w, http.StatusTooManyRequests, MsgTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
