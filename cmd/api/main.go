package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadgen_backend/internal/email"
	"leadgen_backend/internal/exports"
	apphttp "leadgen_backend/internal/http"
	"leadgen_backend/internal/http/router"
	"leadgen_backend/internal/leads"
	"leadgen_backend/internal/leads/repository"
	"leadgen_backend/internal/leads/service"
	"leadgen_backend/internal/scheduler"
	"leadgen_backend/internal/sources"
	"leadgen_backend/platform/config"
	"leadgen_backend/platform/db"
	"leadgen_backend/platform/logger"
	"leadgen_backend/platform/retry"
	"leadgen_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := retry.Do(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := retry.Do(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	cache, closeCache := initSearchCache(cfg, log)
	if closeCache != nil {
		defer closeCache()
	}

	var leadOpts []service.Option

	taskClient, closeTasks := initTaskClient(cfg, log)
	if taskClient != nil {
		defer closeTasks()
		leadOpts = append(leadOpts, service.WithTaskEnqueuer(taskClient))
	}

	if sender := email.NewSMTPSender(cfg); sender != nil {
		leadOpts = append(leadOpts, service.WithDigestNotifier(sender))
	} else {
		log.Info("SMTP or digest recipients not configured; hot lead digest disabled")
	}

	exportStore := initExportStore(ctx, cfg, log)

	// ========================================================================
	// Domain Modules
	// ========================================================================

	val := validator.New()

	leadsModule, err := leads.NewModule(pool, val, cfg, cache, log, leadOpts...)
	if err != nil {
		log.Error("failed to initialize leads module", "error", err)
		panic("failed to initialize leads module: " + err.Error())
	}

	exportsModule := exports.NewModule(
		exports.NewService(repository.New(pool), exportStore, cfg.GetExportsBucket(), log),
		val,
	)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: db.NewPoolAdapter(pool),
		Modules: []apphttp.Module{
			leadsModule,
			exportsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initSearchCache(cfg config.CacheConfig, log *logger.Logger) (*sources.Cache, func()) {
	client, err := sources.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to initialize search cache", "error", err)
		return nil, nil
	}
	if client == nil {
		log.Warn("REDIS_URL not configured; provider results will not be cached")
		return nil, nil
	}

	return sources.NewCache(client, cfg.GetSearchCacheTTL(), log), func() {
		_ = client.Close()
	}
}

func initTaskClient(cfg config.SchedulerConfig, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; background enrichment disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize task client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

// initExportStore returns nil when MinIO is not configured; exports then
// answer with Unavailable.
func initExportStore(ctx context.Context, cfg *config.Config, log *logger.Logger) exports.ObjectStore {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; lead exports disabled")
		return nil
	}

	store, err := exports.NewMinIOStore(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}

	bucket := cfg.GetExportsBucket()
	if err := retry.Do(ctx, log, "ensure exports bucket", 5, 2*time.Second, func() error {
		return store.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}

	return store
}
