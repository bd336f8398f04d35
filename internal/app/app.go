package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/moteur/internal/catalog"
	"github.com/MrSnakeDoc/moteur/internal/config"
	"github.com/MrSnakeDoc/moteur/internal/credential"
	"github.com/MrSnakeDoc/moteur/internal/httpserver"
	"github.com/MrSnakeDoc/moteur/internal/httpserver/deps"
	"github.com/MrSnakeDoc/moteur/internal/listing"
	"github.com/MrSnakeDoc/moteur/internal/logger"
	"github.com/MrSnakeDoc/moteur/internal/redis"
	"github.com/MrSnakeDoc/moteur/internal/scheduler"
	"github.com/MrSnakeDoc/moteur/internal/search"
	"github.com/MrSnakeDoc/moteur/internal/session"
	redisstore "github.com/MrSnakeDoc/moteur/internal/store/redis"
	"github.com/MrSnakeDoc/moteur/internal/utils"
	"github.com/MrSnakeDoc/moteur/internal/version"
	"github.com/MrSnakeDoc/moteur/internal/view"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	sessions    *session.Registry
	syncer      *scheduler.CredentialSyncer
	reloader    *scheduler.CatalogReloader
	gc          *scheduler.SessionCollector
	cancelFetch context.CancelFunc
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Credential store: redis when configured (fail fast if unavailable), local file otherwise
	var (
		redisClient *goredis.Client
		store       credential.Store
	)
	switch cfg.CredentialBackend {
	case config.BackendRedis:
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(context.Background(), redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		redisClient = client
		redisStore := redisstore.NewCredentialStore(client, redisstore.DefaultCredentialName)
		store = redisStore
		loggerClient.Info("redis credential store initialized",
			logger.String("key", redisStore.Key()))
	default:
		fileStore := credential.NewFileStore(cfg.CredentialFile)
		store = fileStore
		loggerClient.Info("file credential store initialized",
			logger.String("path", fileStore.Path()))
	}
	credentialHolder := credential.NewHolder(store, cfg.DefaultAPIKey, loggerClient)

	// Catalog: built-in until the reloader has read the configured file
	catalogLoader := catalog.NewLoader(cfg.CatalogFile)
	catalogHolder := catalog.NewHolder(catalog.Default())

	renderer, err := view.NewRenderer()
	if err != nil {
		loggerClient.Errorf("Failed to build page renderer: %v", err)
		os.Exit(1)
	}

	fetcher := listing.NewFetcher(listing.NewGenAIClient, catalogHolder, loggerClient, listing.Options{
		Model:       cfg.GeminiModel,
		Temperature: float32(cfg.Temperature),
		Timeout:     cfg.FetchTimeout,
	})

	// Fetches outlive the HTTP request that started them; they stop on shutdown.
	fetchCtx, cancelFetch := context.WithCancel(context.Background())
	sessions := session.NewRegistry(func() *search.Controller {
		return search.NewController(fetchCtx, fetcher, loggerClient)
	}, cfg.MaxSessions)

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)

	reloader := scheduler.NewCatalogReloader(
		catalogLoader,
		catalogHolder,
		loggerClient,
		cfg.CatalogReloadInterval,
		reloadTrigger,
	)

	gc := scheduler.NewSessionCollector(
		sessions,
		loggerClient,
		cfg.SessionGCInterval,
		cfg.SessionIdleTTL,
	)

	syncer := scheduler.NewCredentialSyncer(credentialHolder, loggerClient, cfg.RedisConnectTimeout)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:            loggerClient,
		StartTime:         time.Now(),
		Version:           version.Version,
		Commit:            version.Commit,
		BuildDate:         version.BuildDate,
		GoVersion:         version.GoVersion,
		TimeNow:           time.Now,
		AllowedHosts:      cfg.AllowedHosts,
		AllowedCIDRS:      cfg.AllowedCIDRS,
		TrustProxy:        cfg.TrustProxy,
		Catalog:           catalogHolder,
		CatalogSource:     catalogLoader.Source(),
		Credential:        credentialHolder,
		CredentialBackend: cfg.CredentialBackend,
		Sessions:          sessions,
		SessionTTL:        cfg.SessionIdleTTL,
		Renderer:          renderer,
		RedisClient:       redisClient,
		ReloadTrigger:     reloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		sessions:    sessions,
		syncer:      syncer,
		reloader:    reloader,
		gc:          gc,
		cancelFetch: cancelFetch,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Moteur v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Moteur %s", version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load the stored credential; a failure only means the user is asked again
	if err := a.syncer.Sync(ctx); err != nil {
		a.logger.Warn("failed to load credential on startup",
			logger.Error(err))
	}

	// Start catalog reloader (loads the catalog and starts periodic refresh)
	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start catalog reloader: %w", err)
	}
	a.logger.Info("catalog reloader started",
		logger.Duration("interval", a.cfg.CatalogReloadInterval))

	// Start session garbage collector
	if err := a.gc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session collector: %w", err)
	}
	a.logger.Info("session collector started",
		logger.Duration("interval", a.cfg.SessionGCInterval),
		logger.Duration("idle_ttl", a.cfg.SessionIdleTTL))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.reloader.Stop()
	a.gc.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	// Abort fetches still in flight
	a.sessions.CloseAll()
	a.cancelFetch()

	if a.redisClient != nil {
		utils.MustClose(a.redisClient, "redis", a.logger)
	}
	a.logger.Info("✅ Moteur stopped cleanly")
	_ = a.logger.Sync()
	return nil
}
