package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request budget, must exceed VerifyTimeout + GitHubTimeout

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Datasets (empty path = dataset bundled in the binary)
	ZoneFile       string        // path to world.json
	HideoutFile    string        // path to hideouts.json
	ZonePrefixes   []string      // tracked zone prefixes, AVALON is shown by Index, others by UniqueName (ex: AVALON,TNL)
	ReloadInterval time.Duration // periodic dataset reload, 0 disables it

	// Report verification (tier 2)
	VerifyEnabled  bool          // master switch for external verification
	VerifyZones    bool          // check the zone exists in the world dataset
	VerifyGuilds   bool          // check the guild exists on the game API
	VerifyTimeout  time.Duration // bound for each verification call
	VerifyCacheTTL time.Duration // how long a confirmed guild stays cached in redis
	ZoneDatasetURL string        // optional remote world.json used for the zone check
	GameInfoURLs   map[string]string

	// Issue tracker
	GitHubToken   string        // required per request, absence => 500
	GitHubOwner   string        // ex: psykzz
	GitHubRepo    string        // ex: avalon-hideout-mapper
	GitHubAPIURL  string        // optional, GitHub Enterprise or tests
	GitHubTimeout time.Duration // bound for the create-issue call
	IncludeGeo    bool          // embed requester geo info in the issue body

	// Redis (optional, verification cache)
	RedisAddr           string        // ex: "localhost:6379", empty disables the cache
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	// Submission rate limit (per client IP)
	ReportBurst        int
	ReportRefillPerMin int

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict operational endpoints to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. netlify, cloudflared)
	CORSOrigins  []string // allowed origins for the browser UI
}

const (
	defaultAmericaGameInfo = "https://gameinfo.albiononline.com/api/gameinfo"
	defaultEuropeGameInfo  = "https://gameinfo-ams.albiononline.com/api/gameinfo"
	defaultAsiaGameInfo    = "https://gameinfo-sgp.albiononline.com/api/gameinfo"
)

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("HIDEOUT_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("HIDEOUT_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("HIDEOUT_REQUEST_TIMEOUT", 30*time.Second),

		// Logging
		LogLevel:  getenv("HIDEOUT_LOG_LEVEL", "info"),
		PrettyLog: mustBool("HIDEOUT_PRETTY_LOG", false),

		// Datasets
		ZoneFile:       getenv("HIDEOUT_ZONE_FILE", ""),
		HideoutFile:    getenv("HIDEOUT_HIDEOUT_FILE", ""),
		ZonePrefixes:   splitAndTrim(getenv("HIDEOUT_ZONE_PREFIXES", "AVALON,TNL")),
		ReloadInterval: mustDuration("HIDEOUT_RELOAD_INTERVAL", 0),

		// Verification
		VerifyEnabled:  mustBool("HIDEOUT_VERIFY_ENABLED", false),
		VerifyZones:    mustBool("HIDEOUT_VERIFY_ZONES", true),
		VerifyGuilds:   mustBool("HIDEOUT_VERIFY_GUILDS", true),
		VerifyTimeout:  mustDuration("HIDEOUT_VERIFY_TIMEOUT", 5*time.Second),
		VerifyCacheTTL: mustDuration("HIDEOUT_VERIFY_CACHE_TTL", 24*time.Hour),
		ZoneDatasetURL: getenv("HIDEOUT_ZONE_DATASET_URL", ""),
		GameInfoURLs: map[string]string{
			"America": getenv("HIDEOUT_GAMEINFO_AMERICA_URL", defaultAmericaGameInfo),
			"Europe":  getenv("HIDEOUT_GAMEINFO_EUROPE_URL", defaultEuropeGameInfo),
			"Asia":    getenv("HIDEOUT_GAMEINFO_ASIA_URL", defaultAsiaGameInfo),
		},

		// Issue tracker (names kept compatible with the netlify deployment)
		GitHubToken:   os.Getenv("GITHUB_TOKEN"),
		GitHubOwner:   getenv("GITHUB_OWNER", "psykzz"),
		GitHubRepo:    getenv("GITHUB_REPO", "avalon-hideout-mapper"),
		GitHubAPIURL:  getenv("GITHUB_API_URL", ""),
		GitHubTimeout: mustDuration("GITHUB_TIMEOUT", 10*time.Second),
		IncludeGeo:    exactTrue("INCLUDE_GEO_IN_ISSUE"),

		// Redis settings
		RedisAddr:           getenv("HIDEOUT_REDIS_ADDR", ""),
		RedisUser:           getenv("HIDEOUT_REDIS_USERNAME", ""),
		RedisPassword:       getenv("HIDEOUT_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("HIDEOUT_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Rate limit
		ReportBurst:        getenvInt("HIDEOUT_REPORT_BURST", 5),
		ReportRefillPerMin: getenvInt("HIDEOUT_REPORT_REFILL_PER_MIN", 5),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("HIDEOUT_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("HIDEOUT_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("HIDEOUT_TRUST_PROXY", true),
		CORSOrigins:  splitAndTrim(getenv("HIDEOUT_CORS_ORIGINS", "*")),
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cfgCopy := *c
	if cfgCopy.GitHubToken != "" {
		cfgCopy.GitHubToken = "***REDACTED***"
	}
	if cfgCopy.RedisPassword != "" {
		cfgCopy.RedisPassword = "***REDACTED***"
	}
	if cfgCopy.RedisUser != "" {
		cfgCopy.RedisUser = "***REDACTED***"
	}
	return cfgCopy
}

// CacheEnabled reports whether a redis verification cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

// exactTrue is stricter than mustBool: only the literal "true" enables the flag.
func exactTrue(key string) bool {
	return os.Getenv(key) == "true"
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
