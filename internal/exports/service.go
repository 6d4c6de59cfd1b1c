// Package exports writes filtered lead lists as CSV to object storage and
// hands back a presigned download link.
package exports

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"leadgen_backend/internal/leads/domain"
	"leadgen_backend/internal/leads/repository"
	"leadgen_backend/internal/leads/transport"
	"leadgen_backend/platform/apperr"
	"leadgen_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	exportPageSize = 500
	maxExportRows  = 10000
	csvContentType = "text/csv"
)

// LeadLister pages through persisted leads.
type LeadLister interface {
	List(ctx context.Context, params repository.ListParams) ([]domain.NormalizedLead, int, error)
}

// ExportResponse describes a finished export.
type ExportResponse struct {
	Rows      int       `json:"rows"`
	Truncated bool      `json:"truncated"`
	FileKey   string    `json:"fileKey"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Service struct {
	leads  LeadLister
	store  ObjectStore
	bucket string
	log    *logger.Logger
	now    func() time.Time
}

// NewService creates the exporter. store may be nil when storage is not
// configured; exports then fail with Unavailable.
func NewService(leads LeadLister, store ObjectStore, bucket string, log *logger.Logger) *Service {
	return &Service{
		leads:  leads,
		store:  store,
		bucket: bucket,
		log:    log,
		now:    time.Now,
	}
}

// ExportLeads writes every lead matching the list filters (pagination ignored).
func (s *Service) ExportLeads(ctx context.Context, req transport.ListLeadsRequest) (ExportResponse, error) {
	if s.store == nil {
		return ExportResponse{}, apperr.Unavailable("exports storage is not configured")
	}

	leads, truncated, err := s.collect(ctx, req)
	if err != nil {
		return ExportResponse{}, err
	}

	var buf bytes.Buffer
	if err := WriteLeadsCSV(&buf, leads); err != nil {
		return ExportResponse{}, err
	}

	now := s.now().UTC()
	key := fmt.Sprintf("leads/%s/leads_%s_%s.csv", now.Format("2006-01-02"), now.Format("150405"), uuid.New().String()[:8])
	size := int64(buf.Len())
	if err := s.store.PutObject(ctx, s.bucket, key, csvContentType, &buf, size); err != nil {
		return ExportResponse{}, apperr.Wrap(apperr.KindUnavailable, "failed to store export", err)
	}

	link, err := s.store.GenerateDownloadURL(ctx, s.bucket, key)
	if err != nil {
		return ExportResponse{}, apperr.Wrap(apperr.KindUnavailable, "failed to sign export link", err)
	}

	s.log.Info("lead export written", "key", key, "rows", len(leads), "bytes", size, "truncated", truncated)

	return ExportResponse{
		Rows:      len(leads),
		Truncated: truncated,
		FileKey:   key,
		URL:       link.URL,
		ExpiresAt: link.ExpiresAt,
	}, nil
}

func (s *Service) collect(ctx context.Context, req transport.ListLeadsRequest) ([]domain.NormalizedLead, bool, error) {
	params := repository.ListParams{
		Priority:  req.Priority,
		Grade:     req.Grade,
		Source:    req.Source,
		Stage:     req.Stage,
		MinScore:  req.MinScore,
		Search:    strings.TrimSpace(req.Search),
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Limit:     exportPageSize,
	}

	out := make([]domain.NormalizedLead, 0)
	for {
		page, total, err := s.leads.List(ctx, params)
		if err != nil {
			return nil, false, err
		}
		out = append(out, page...)

		if len(out) >= maxExportRows {
			return out[:maxExportRows], total > maxExportRows, nil
		}
		if len(page) < exportPageSize || len(out) >= total {
			return out, false, nil
		}
		params.Offset += exportPageSize
	}
}
