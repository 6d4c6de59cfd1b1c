package scoring

import (
	"context"
	"errors"

	"leadgen_backend/internal/leads/domain"
	"leadgen_backend/internal/leads/repository"
	"leadgen_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the persistence the rescoring service needs.
type Store interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.NormalizedLead, error)
	UpdateScore(ctx context.Context, id uuid.UUID, update repository.ScoreUpdate) error
}

// LeadScore pairs a lead with its fresh score.
type LeadScore struct {
	LeadID uuid.UUID
	Result Result
}

// Service recomputes and stores scores for persisted leads.
type Service struct {
	store Store
	log   *logger.Logger
}

// NewService creates a rescoring service.
func NewService(store Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// Rescore scores lead and persists the result.
func (s *Service) Rescore(ctx context.Context, lead domain.NormalizedLead) (Result, error) {
	result := Score(lead)
	factors, err := result.FactorsJSON()
	if err != nil {
		return Result{}, err
	}
	err = s.store.UpdateScore(ctx, lead.ID, repository.ScoreUpdate{
		Score:    result.Total,
		Grade:    result.Grade,
		Priority: result.Priority,
		Factors:  factors,
	})
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

// RescoreIDs rescores every existing lead in ids. IDs with no lead are
// returned in missing rather than failing the call.
func (s *Service) RescoreIDs(ctx context.Context, ids []uuid.UUID) (scores []LeadScore, missing []uuid.UUID, err error) {
	leads, err := s.store.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	found := make(map[uuid.UUID]struct{}, len(leads))
	scores = make([]LeadScore, 0, len(leads))
	for _, lead := range leads {
		result, err := s.Rescore(ctx, lead)
		if errors.Is(err, repository.ErrNotFound) {
			// Deleted between read and write.
			continue
		}
		if err != nil {
			s.log.Error("failed to store lead score", "leadId", lead.ID, "error", err)
			return nil, nil, err
		}
		found[lead.ID] = struct{}{}
		scores = append(scores, LeadScore{LeadID: lead.ID, Result: result})
	}

	missing = make([]uuid.UUID, 0)
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return scores, missing, nil
}
