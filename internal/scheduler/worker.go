package scheduler

import (
	"context"
	"fmt"

	"leadgen_backend/internal/leads/transport"
	"leadgen_backend/platform/config"
	"leadgen_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// LeadProcessor runs the lead operations tasks stand for.
type LeadProcessor interface {
	Enrich(ctx context.Context, ids []uuid.UUID) (transport.EnrichResponse, error)
	Score(ctx context.Context, ids []uuid.UUID) (transport.ScoreResponse, error)
}

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor LeadProcessor
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, processor LeadProcessor, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newWorker(processor, log)
	w.server = server
	return w, nil
}

func newWorker(processor LeadProcessor, log *logger.Logger) *Worker {
	w := &Worker{
		mux:       asynq.NewServeMux(),
		processor: processor,
		log:       log,
	}
	w.mux.HandleFunc(TaskEnrichLeads, w.handleEnrichLeads)
	w.mux.HandleFunc(TaskScoreLeads, w.handleScoreLeads)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleEnrichLeads(ctx context.Context, task *asynq.Task) error {
	ids, err := ParseLeadBatchPayload(task)
	if err != nil {
		return err
	}

	resp, err := w.processor.Enrich(ctx, ids)
	if err != nil {
		return err
	}

	updated := 0
	for _, r := range resp.Results {
		if r.Updated {
			updated++
		}
	}
	w.log.Info("enrich task completed", "leads", len(ids), "updated", updated, "notFound", len(resp.NotFound))
	return nil
}

func (w *Worker) handleScoreLeads(ctx context.Context, task *asynq.Task) error {
	ids, err := ParseLeadBatchPayload(task)
	if err != nil {
		return err
	}

	resp, err := w.processor.Score(ctx, ids)
	if err != nil {
		return err
	}

	w.log.Info("score task completed", "leads", len(resp.Results), "notFound", len(resp.NotFound))
	return nil
}
