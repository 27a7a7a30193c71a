package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"


	"github.com/MrSnakeDoc/quill/internal/config"
	"github.com/MrSnakeDoc/quill/internal/content"
	"github.com/MrSnakeDoc/quill/internal/httpserver"
	"github.com/MrSnakeDoc/quill/internal/httpserver/deps"
	"github.com/MrSnakeDoc/quill/internal/icons"
	"github.com/MrSnakeDoc/quill/internal/index"
	"github.com/MrSnakeDoc/quill/internal/logger"
	"github.com/MrSnakeDoc/quill/internal/post"
	"github.com/MrSnakeDoc/quill/internal/scheduler"
	redisstore "github.com/MrSnakeDoc/quill/internal/store/redis"
	"github.com/MrSnakeDoc/quill/internal/utils"
	"github.com/MrSnakeDoc/quill/internal/version"
)

type App struct {
	cfg        *config.Config
	logger     logger.Logger
	server     *httpserver.Server
	redisStore *redisstore.Store
	memIndex   *index.MemoryIndex
	reloader   *scheduler.ContentReloader
	watcher    *scheduler.Watcher
	gc         *scheduler.GarbageCollector
}

// New wires every component. Redis is only dialed when configured, and a
// configured Redis that cannot be reached is fatal.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loggerClient, err := logger.New(cfg.LogLevel, cfg.PrettyLog)
	if err != nil {
		return nil, err
	}

	memIndex := index.NewMemoryIndex()

	// Typed nil interfaces would look "enabled" to the consumers, so both
	// stay untyped nil when Redis is off.
	var (
		redisStore *redisstore.Store
		viewStore  scheduler.ViewStore
		httpStore  deps.ViewStore
	)
	if cfg.RedisEnabled() {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		redisStore, err = redisstore.Dial(ctx, redisstore.DialOptions{
			Addr:           cfg.RedisAddr,
			Username:       cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			PoolSize:       cfg.RedisPoolSize,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnAfter:      cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		loggerClient.Info("Redis initialized successfully")

		viewStore, httpStore = redisStore, redisStore

		syncer := scheduler.NewViewSyncer(redisStore, memIndex, loggerClient)
		if err := syncer.Sync(ctx); err != nil {
			loggerClient.Warn("failed to sync view counters from redis, starting from zero",
				logger.Error(err))
		}
	} else {
		loggerClient.Info("QUILL_REDIS_ADDR not set, view counters are kept in memory")
	}

	iconCfg, err := icons.Load(cfg.IconsFile, cfg.ContactEmail)
	if err != nil {
		return nil, err
	}

	loader := content.NewLoader(cfg.ContentDir,
		post.NewSchema(post.WithSeriesEncoding(cfg.SchemaVariant)),
		content.WithLogger(loggerClient),
		content.WithWordsPerMinute(cfg.WordsPerMinute),
	)

	reloadTrigger := make(chan struct{}, 1)

	reloader := scheduler.NewContentReloader(
		loader,
		viewStore,
		memIndex,
		loggerClient,
		cfg.ReloadInterval,
		cfg.Strict,
		reloadTrigger,
	)

	var watcher *scheduler.Watcher
	if cfg.Watch {
		watcher = scheduler.NewWatcher(cfg.ContentDir, cfg.WatchDebounce, reloadTrigger, loggerClient)
	}

	gc := scheduler.NewGarbageCollector(
		viewStore,
		memIndex,
		loggerClient,
		cfg.GCInterval,
		cfg.GCThreshold,
	)

	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		AllowedHosts:  cfg.AllowedHosts,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		Index:         memIndex,
		Store:         httpStore,
		Icons:         iconCfg,
		ContentDir:    cfg.ContentDir,
		ShowDrafts:    cfg.ShowDrafts,
		ReloadTrigger: reloadTrigger,
		CORSOrigins:   cfg.CORSOrigins,
		RateBurst:     cfg.RateBurst,
		RatePerMin:    cfg.RatePerMin,
	}

	return &App{
		cfg:        cfg,
		logger:     loggerClient,
		server:     httpserver.New(cfg, loggerClient, d),
		redisStore: redisStore,
		memIndex:   memIndex,
		reloader:   reloader,
		watcher:    watcher,
		gc:         gc,
	}, nil
}

// Run starts the background jobs and the HTTP server, and blocks until
// SIGINT/SIGTERM or a server error.
func (a *App) Run(ctx context.Context) error {
	defer func() { _ = a.logger.Sync() }()

	a.logger.Infof("🚀 Starting %s on %s", version.String(), a.cfg.ListenPort)
	a.logger.Debug("configuration", logger.String("config", fmt.Sprintf("%+v", a.cfg.Redacted())))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start content reloader: %w", err)
	}
	a.logger.Info("content reloader started",
		logger.String("dir", a.cfg.ContentDir),
		logger.Int("posts", a.memIndex.Count()),
		logger.Duration("interval", a.cfg.ReloadInterval))

	if a.watcher != nil {
		if err := a.watcher.Start(ctx); err != nil {
			// Periodic reloads still cover the content.
			a.logger.Warn("content watcher disabled", logger.Error(err))
			a.watcher = nil
		}
	}

	if err := a.gc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start garbage collector: %w", err)
	}
	a.logger.Info("garbage collector started",
		logger.Duration("interval", a.cfg.GCInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	if a.watcher != nil {
		a.watcher.Stop()
	}
	a.reloader.Stop()
	a.gc.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisStore != nil {
		utils.CloseLogged(a.redisStore, "redis store", a.logger)
	}

	if runErr == nil {
		a.logger.Info("✅ quill stopped cleanly")
	}
	return runErr
}
