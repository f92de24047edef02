package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/psykzz/avalon-hideout-mapper/internal/config"
	"github.com/psykzz/avalon-hideout-mapper/internal/httpserver"
	"github.com/psykzz/avalon-hideout-mapper/internal/httpserver/deps"
	"github.com/psykzz/avalon-hideout-mapper/internal/index"
	"github.com/psykzz/avalon-hideout-mapper/internal/logger"
	"github.com/psykzz/avalon-hideout-mapper/internal/redis"
	"github.com/psykzz/avalon-hideout-mapper/internal/report"
	"github.com/psykzz/avalon-hideout-mapper/internal/scheduler"
	redisstore "github.com/psykzz/avalon-hideout-mapper/internal/store/redis"
	"github.com/psykzz/avalon-hideout-mapper/internal/tracker"
	"github.com/psykzz/avalon-hideout-mapper/internal/tracker/github"
	"github.com/psykzz/avalon-hideout-mapper/internal/verify"
	"github.com/psykzz/avalon-hideout-mapper/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	reloader    *scheduler.DatasetReloader
}

// New builds the application from the environment. Only a dataset that
// cannot be loaded is fatal; the tracker and Redis degrade gracefully.
func New(ctx context.Context) (*App, error) {
	cfg := config.Load()
	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	d, redisClient, err := Build(ctx, cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		redisClient: redisClient,
		reloader:    scheduler.NewDatasetReloader(scheduler.ReloadFunc(d.Reload), loggerClient.With(logger.Component("scheduler")), cfg.ReloadInterval),
	}, nil
}

// Build wires every component behind the HTTP routes.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger) (deps.Deps, *goredis.Client, error) {
	datasetOpts := DatasetOptions{
		ZoneFile:     cfg.ZoneFile,
		HideoutFile:  cfg.HideoutFile,
		ZonePrefixes: cfg.ZonePrefixes,
	}
	snap, err := LoadSnapshot(datasetOpts, log, time.Now())
	if err != nil {
		return deps.Deps{}, nil, err
	}
	datasets := index.NewDatasets(snap)

	redisClient, store := connectCache(ctx, cfg, log)

	var issues tracker.Tracker
	if cfg.GitHubToken != "" {
		gw, err := github.New(github.Options{
			Token:   cfg.GitHubToken,
			Owner:   cfg.GitHubOwner,
			Repo:    cfg.GitHubRepo,
			BaseURL: cfg.GitHubAPIURL,
			Timeout: cfg.GitHubTimeout,
		})
		if err != nil {
			log.Error("issue tracker disabled", logger.Error(err))
		} else {
			issues = gw
		}
	} else {
		log.Warn("GITHUB_TOKEN not set, submissions will fail until it is configured")
	}

	zones, guilds, remote := buildVerifiers(cfg, datasets, store, log)

	opts := report.Options{
		Tracker:    issues,
		Zones:      zones,
		Guilds:     guilds,
		IncludeGeo: cfg.IncludeGeo,
		Logger:     log.With(logger.Component("report")),
	}
	if store != nil {
		opts.Recorder = store
	}

	load := func(ctx context.Context) (*index.Snapshot, error) {
		fresh, err := LoadSnapshot(datasetOpts, log, time.Now())
		if err != nil {
			return nil, err
		}
		datasets.Swap(fresh)
		if remote != nil {
			remote.Reset()
		}
		if store != nil {
			if err := store.FlushGuildVerdicts(ctx); err != nil {
				log.Warn("failed to flush guild verdicts", logger.Error(err))
			}
		}
		return fresh, nil
	}
	reload := func(ctx context.Context) (*index.Snapshot, error) {
		return datasets.Reload(ctx, load)
	}

	d := deps.Deps{
		Logger:             log,
		StartTime:          time.Now(),
		Version:            version.Version,
		Commit:             version.Commit,
		BuildDate:          version.BuildDate,
		GoVersion:          version.GoVersion,
		TimeNow:            time.Now,
		AllowedHosts:       cfg.AllowedHosts,
		AllowedCIDRS:       cfg.AllowedCIDRS,
		TrustProxy:         cfg.TrustProxy,
		CORSOrigins:        cfg.CORSOrigins,
		Datasets:           datasets,
		Reports:            report.NewService(opts),
		Reload:             reload,
		ReportBurst:        cfg.ReportBurst,
		ReportRefillPerMin: cfg.ReportRefillPerMin,
		VerifyZones:        zones != nil,
		VerifyGuilds:       guilds != nil,
		Repository:         cfg.GitHubOwner + "/" + cfg.GitHubRepo,
		RedisClient:        redisClient,
		Store:              store,
	}
	return d, redisClient, nil
}

// connectCache connects to Redis when configured. A failure leaves the
// verification uncached instead of stopping the service.
func connectCache(ctx context.Context, cfg *config.Config, log logger.Logger) (*goredis.Client, *redisstore.Store) {
	if !cfg.CacheEnabled() {
		log.Info("redis not configured, guild verification cache disabled")
		return nil, nil
	}

	client, err := redis.Connect(ctx, redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, log)
	if err != nil {
		log.Warn("redis unavailable, continuing without verification cache", logger.Error(err))
		return nil, nil
	}
	return client, redisstore.NewStore(client, cfg.VerifyCacheTTL)
}

// buildVerifiers returns nil verifiers for disabled checks. remote is set
// when zones are checked against a dataset served over HTTP.
func buildVerifiers(cfg *config.Config, datasets *index.Datasets, store *redisstore.Store, log logger.Logger) (report.ZoneVerifier, report.GuildVerifier, *verify.RemoteZoneVerifier) {
	if !cfg.VerifyEnabled {
		log.Info("report verification disabled")
		return nil, nil, nil
	}

	client := &http.Client{Timeout: cfg.VerifyTimeout}

	var zones report.ZoneVerifier
	var remote *verify.RemoteZoneVerifier
	if cfg.VerifyZones {
		if cfg.ZoneDatasetURL != "" {
			remote = verify.NewRemoteZoneVerifier(cfg.ZoneDatasetURL, cfg.VerifyTimeout, client)
			zones = remote
		} else {
			zones = verify.NewCatalogZoneVerifier(datasets)
		}
	}

	var guilds report.GuildVerifier
	if cfg.VerifyGuilds {
		var cache verify.Cache
		if store != nil {
			cache = store
		}
		search := verify.NewGameInfoClient(cfg.GameInfoURLs, client)
		guilds = verify.NewGuildVerifier(search, cache, cfg.VerifyTimeout, log.With(logger.Component("verify")))
	}

	log.Info("report verification enabled",
		logger.Bool("zones", zones != nil),
		logger.Bool("zones_remote", remote != nil),
		logger.Bool("guilds", guilds != nil),
		logger.Bool("guild_cache", store != nil))

	return zones, guilds, remote
}

func (a *App) Run() error {
	a.logger.Infof("Starting hideouts %s on %s", version.String(), a.cfg.ListenPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.reloader.Start(ctx)
	if a.reloader.Enabled() {
		a.logger.Info("dataset reloader started",
			logger.Duration("interval", a.cfg.ReloadInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.reloader.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("Redis closed cleanly")
		}
	}

	a.logger.Info("hideouts stopped cleanly")
	_ = a.logger.Sync()
	return nil
}
