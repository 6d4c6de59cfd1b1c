package scheduler

import (
	"context"
	"time"

	"leadgen_backend/internal/leads/domain"
	"leadgen_backend/platform/config"
	"leadgen_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	defaultSweepInterval  = 30 * time.Minute
	defaultSweepBatchSize = 25
	// sweepCooldown keeps a lead out of the sweep for a while after an attempt.
	sweepCooldown = 24 * time.Hour
)

// PendingEnrichmentLister finds persisted leads with contact gaps.
type PendingEnrichmentLister interface {
	ListNeedingEnrichment(ctx context.Context, attemptedBefore time.Time, limit int) ([]domain.NormalizedLead, error)
}

// EnrichEnqueuer schedules enrichment tasks.
type EnrichEnqueuer interface {
	EnqueueEnrichLeads(ctx context.Context, leadIDs []uuid.UUID) error
}

// EnrichmentSweep periodically enqueues enrichment for leads that still miss
// an email or social handle.
type EnrichmentSweep struct {
	lister    PendingEnrichmentLister
	enqueuer  EnrichEnqueuer
	log       *logger.Logger
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

func NewEnrichmentSweep(lister PendingEnrichmentLister, enqueuer EnrichEnqueuer, cfg config.SweepConfig, log *logger.Logger) *EnrichmentSweep {
	interval := cfg.GetEnrichmentSweepInterval()
	batchSize := cfg.GetEnrichmentSweepBatchSize()
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if batchSize <= 0 {
		batchSize = defaultSweepBatchSize
	}

	return &EnrichmentSweep{
		lister:    lister,
		enqueuer:  enqueuer,
		log:       log,
		interval:  interval,
		batchSize: batchSize,
		now:       time.Now,
	}
}

func (s *EnrichmentSweep) Run(ctx context.Context) {
	if s == nil || s.lister == nil || s.enqueuer == nil {
		return
	}

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep enqueues one batch and reports how many leads it scheduled.
func (s *EnrichmentSweep) sweep(ctx context.Context) int {
	leads, err := s.lister.ListNeedingEnrichment(ctx, s.now().Add(-sweepCooldown), s.batchSize)
	if err != nil {
		s.log.Warn("enrichment sweep list failed", "error", err)
		return 0
	}
	if len(leads) == 0 {
		return 0
	}

	ids := make([]uuid.UUID, 0, len(leads))
	for _, lead := range leads {
		ids = append(ids, lead.ID)
	}

	if err := s.enqueuer.EnqueueEnrichLeads(ctx, ids); err != nil {
		s.log.Warn("enrichment sweep enqueue failed", "error", err, "leads", len(ids))
		return 0
	}

	s.log.Info("enrichment sweep enqueued leads", "leads", len(ids))
	return len(ids)
}
