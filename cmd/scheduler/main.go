package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadgen_backend/internal/leads"
	"leadgen_backend/internal/leads/repository"
	"leadgen_backend/internal/scheduler"
	"leadgen_backend/internal/sources"
	"leadgen_backend/platform/config"
	"leadgen_backend/platform/db"
	"leadgen_backend/platform/logger"
	"leadgen_backend/platform/retry"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	cache := initSearchCache(cfg, log)

	// Worker-side lead pipeline wiring (no HTTP handlers required).
	leadService, err := leads.NewService(pool, cfg, cache, log)
	if err != nil {
		log.Error("failed to initialize lead service", "error", err)
		panic("failed to initialize lead service: " + err.Error())
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize task client", "error", err)
		panic("failed to initialize task client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	sweep := scheduler.NewEnrichmentSweep(repository.New(pool), client, cfg, log)
	go sweep.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, leadService, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func initSearchCache(cfg config.CacheConfig, log *logger.Logger) *sources.Cache {
	client, err := sources.NewRedisClient(cfg)
	if err != nil || client == nil {
		log.Warn("search cache disabled", "error", err)
		return nil
	}
	return sources.NewCache(client, cfg.GetSearchCacheTTL(), log)
}
