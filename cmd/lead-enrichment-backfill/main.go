package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadgen_backend/internal/leads"
	"leadgen_backend/internal/leads/domain"
	"leadgen_backend/internal/leads/repository"
	"leadgen_backend/internal/leads/service"
	"leadgen_backend/platform/config"
	"leadgen_backend/platform/db"
	"leadgen_backend/platform/logger"

	"github.com/google/uuid"
)

type leadPager interface {
	ListAfter(ctx context.Context, cursor *uuid.UUID, limit int) ([]domain.NormalizedLead, error)
}

type stats struct {
	processed int
	enriched  int
	updated   int
	scored    int
}

func main() {
	batchSize := flag.Int("batch", 50, "Leads per batch")
	delay := flag.Duration("delay", 2*time.Second, "Pause between batches")
	skipEnrich := flag.Bool("score-only", false, "Only rescore; do not crawl websites")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting lead enrichment backfill", "batch", *batchSize, "delay", delay.String(), "scoreOnly", *skipEnrich)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	svc, err := leads.NewService(pool, cfg, nil, log)
	if err != nil {
		log.Error("failed to initialize lead service", "error", err)
		panic("failed to initialize lead service: " + err.Error())
	}

	result := backfill(ctx, repository.New(pool), svc, *batchSize, *delay, !*skipEnrich, log)
	log.Info("lead enrichment backfill completed",
		"processed", result.processed,
		"enriched", result.enriched,
		"updated", result.updated,
		"scored", result.scored,
	)
}

func backfill(ctx context.Context, pager leadPager, svc *service.Service, batchSize int, delay time.Duration, enrich bool, log *logger.Logger) stats {
	var (
		result stats
		cursor *uuid.UUID
	)

	for ctx.Err() == nil {
		batch, err := pager.ListAfter(ctx, cursor, batchSize)
		if err != nil {
			log.Error("failed to list leads", "error", err)
			break
		}
		if len(batch) == 0 {
			log.Info("no leads left to backfill", "processed", result.processed)
			break
		}

		last := batch[len(batch)-1].ID
		cursor = &last
		result.processed += len(batch)

		ids := make([]uuid.UUID, 0, len(batch))
		pending := make([]uuid.UUID, 0, len(batch))
		for _, lead := range batch {
			ids = append(ids, lead.ID)
			if lead.NeedsEnrichment() {
				pending = append(pending, lead.ID)
			}
		}

		if enrich && len(pending) > 0 {
			resp, err := svc.Enrich(ctx, pending)
			if err != nil {
				log.Error("failed to enrich batch", "error", err, "cursor", last)
			} else {
				result.enriched += len(resp.Results)
				for _, r := range resp.Results {
					if r.Updated {
						result.updated++
					}
				}
			}
		}

		scores, err := svc.Score(ctx, ids)
		if err != nil {
			log.Error("failed to rescore batch", "error", err, "cursor", last)
		} else {
			result.scored += len(scores.Results)
		}

		log.Info("backfill batch done", "cursor", last, "processed", result.processed, "updated", result.updated)

		select {
		case <-ctx.Done():
		case <-time.After(delay):
		}
	}

	return result
}
