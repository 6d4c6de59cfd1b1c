package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadgen_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Text columns are stored NULL when absent and read back as "".
const leadColumns = `
	l.id, l.business_name, COALESCE(l.address, ''), COALESCE(l.city, ''), COALESCE(l.country, ''),
	COALESCE(l.phone, ''), COALESCE(l.email, ''), COALESCE(l.website, ''), COALESCE(l.social_handle, ''),
	l.rating, l.review_count, l.source,
	l.score, l.grade, l.priority, l.score_factors, l.score_updated_at,
	l.pipeline_stage, l.ghl_contact_id, l.audit_score,
	l.enriched_at, l.created_at, l.updated_at`

func scanLead(row pgx.Row) (domain.NormalizedLead, error) {
	var (
		lead     domain.NormalizedLead
		source   string
		grade    *string
		priority *string
	)
	err := row.Scan(
		&lead.ID, &lead.BusinessName, &lead.Address, &lead.City, &lead.Country,
		&lead.Phone, &lead.Email, &lead.Website, &lead.SocialHandle,
		&lead.Rating, &lead.ReviewCount, &source,
		&lead.Score, &grade, &priority, &lead.ScoreFactors, &lead.ScoreUpdatedAt,
		&lead.PipelineStage, &lead.GHLContactID, &lead.AuditScore,
		&lead.EnrichedAt, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return domain.NormalizedLead{}, err
	}
	lead.Source = domain.SourceID(source)
	if grade != nil {
		g := domain.Grade(*grade)
		lead.Grade = &g
	}
	if priority != nil {
		p := domain.Priority(*priority)
		lead.Priority = &p
	}
	return lead, nil
}

func collectLeads(rows pgx.Rows) ([]domain.NormalizedLead, error) {
	defer rows.Close()

	leads := make([]domain.NormalizedLead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return leads, nil
}

// Upsert inserts a candidate or merges it into the existing row with the same
// (business_name, source). Contact fields already stored are kept; descriptive
// fields take the fresher provider value when one is present.
func (r *Repository) Upsert(ctx context.Context, c domain.LeadCandidate) (domain.NormalizedLead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads AS l (
			business_name, address, city, country, phone, email, website, social_handle,
			rating, review_count, source
		) VALUES (
			$1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''),
			$9, $10, $11
		)
		ON CONFLICT (business_name, source) DO UPDATE SET
			address = COALESCE(EXCLUDED.address, l.address),
			city = COALESCE(EXCLUDED.city, l.city),
			country = COALESCE(EXCLUDED.country, l.country),
			rating = COALESCE(EXCLUDED.rating, l.rating),
			review_count = COALESCE(EXCLUDED.review_count, l.review_count),
			phone = COALESCE(l.phone, EXCLUDED.phone),
			email = COALESCE(l.email, EXCLUDED.email),
			website = COALESCE(l.website, EXCLUDED.website),
			social_handle = COALESCE(l.social_handle, EXCLUDED.social_handle),
			updated_at = now()
		RETURNING `+leadColumns,
		c.BusinessName, c.Address, c.City, c.Country, c.Phone, c.Email, c.Website, c.SocialHandle,
		c.Rating, c.ReviewCount, string(c.Source),
	)
	return scanLead(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.NormalizedLead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads l WHERE l.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NormalizedLead{}, ErrNotFound
	}
	return lead, err
}

// GetByIDs returns the leads that exist among ids, in created order. Unknown IDs are ignored.
func (r *Repository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.NormalizedLead, error) {
	if len(ids) == 0 {
		return []domain.NormalizedLead{}, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads l
		WHERE l.id = ANY($1)
		ORDER BY l.created_at ASC, l.id ASC
	`, ids)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

// EnrichmentUpdate carries crawl findings. Empty values are ignored.
type EnrichmentUpdate struct {
	Email        string
	Phone        string
	SocialHandle string
}

// ApplyEnrichment fills only the lead's NULL contact fields and stamps the
// attempt. enriched_at moves only when a field was actually filled.
func (r *Repository) ApplyEnrichment(ctx context.Context, id uuid.UUID, update EnrichmentUpdate) (domain.NormalizedLead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		UPDATE leads AS l SET
			email = COALESCE(l.email, NULLIF($2, '')),
			phone = COALESCE(l.phone, NULLIF($3, '')),
			social_handle = COALESCE(l.social_handle, NULLIF($4, '')),
			enriched_at = CASE
				WHEN (l.email IS NULL AND NULLIF($2, '') IS NOT NULL)
					OR (l.phone IS NULL AND NULLIF($3, '') IS NOT NULL)
					OR (l.social_handle IS NULL AND NULLIF($4, '') IS NOT NULL)
				THEN now()
				ELSE l.enriched_at
			END,
			enrichment_attempted_at = now(),
			updated_at = now()
		WHERE l.id = $1
		RETURNING `+leadColumns,
		id, update.Email, update.Phone, update.SocialHandle,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NormalizedLead{}, ErrNotFound
	}
	return lead, err
}

// ScoreUpdate is a recomputed score.
type ScoreUpdate struct {
	Score    int
	Grade    domain.Grade
	Priority domain.Priority
	Factors  []byte
}

func (r *Repository) UpdateScore(ctx context.Context, id uuid.UUID, update ScoreUpdate) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET
			score = $2, grade = $3, priority = $4, score_factors = $5,
			score_updated_at = now(), updated_at = now()
		WHERE id = $1
	`, id, update.Score, string(update.Grade), string(update.Priority), update.Factors)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) UpdateStage(ctx context.Context, id uuid.UUID, stage string) (domain.NormalizedLead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		UPDATE leads AS l SET pipeline_stage = $2, updated_at = now()
		WHERE l.id = $1
		RETURNING `+leadColumns,
		id, stage,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NormalizedLead{}, ErrNotFound
	}
	return lead, err
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListNeedingEnrichment returns leads with a website and a missing email or
// social handle whose last attempt is older than attemptedBefore (or never).
func (r *Repository) ListNeedingEnrichment(ctx context.Context, attemptedBefore time.Time, limit int) ([]domain.NormalizedLead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads l
		WHERE l.website IS NOT NULL
			AND (l.email IS NULL OR l.social_handle IS NULL)
			AND (l.enrichment_attempted_at IS NULL OR l.enrichment_attempted_at < $1)
		ORDER BY l.enrichment_attempted_at ASC NULLS FIRST, l.created_at ASC
		LIMIT $2
	`, attemptedBefore, limit)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

// ListAfter pages through every lead by ID. A nil cursor starts from the beginning.
func (r *Repository) ListAfter(ctx context.Context, cursor *uuid.UUID, limit int) ([]domain.NormalizedLead, error) {
	var after uuid.UUID
	if cursor != nil {
		after = *cursor
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads l
		WHERE l.id > $1
		ORDER BY l.id ASC
		LIMIT $2
	`, after, limit)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

type ListParams struct {
	Priority  *string
	Grade     *string
	Source    *string
	Stage     *string
	MinScore  *int
	Search    string
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]domain.NormalizedLead, int, error) {
	whereClause, args, argIdx := buildLeadListWhere(params)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM leads l WHERE %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortOrder := "DESC"
	if params.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM leads l
		WHERE %s
		ORDER BY %s %s NULLS LAST, l.id ASC
		LIMIT $%d OFFSET $%d
	`, leadColumns, whereClause, mapLeadSortColumn(params.SortBy), sortOrder, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	leads, err := collectLeads(rows)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func buildLeadListWhere(params ListParams) (string, []interface{}, int) {
	whereClauses := make([]string, 0, 6)
	args := make([]interface{}, 0, 6)
	argIdx := 1

	addEquals := func(column string, value interface{}) {
		whereClauses = append(whereClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if params.Priority != nil {
		addEquals("l.priority", *params.Priority)
	}
	if params.Grade != nil {
		addEquals("l.grade", *params.Grade)
	}
	if params.Source != nil {
		addEquals("l.source", *params.Source)
	}
	if params.Stage != nil {
		addEquals("l.pipeline_stage", *params.Stage)
	}
	if params.MinScore != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("l.score >= $%d", argIdx))
		args = append(args, *params.MinScore)
		argIdx++
	}
	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(l.business_name ILIKE $%d OR l.city ILIKE $%d OR l.email ILIKE $%d OR l.website ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx,
		))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}

	if len(whereClauses) == 0 {
		return "TRUE", args, argIdx
	}
	return strings.Join(whereClauses, " AND "), args, argIdx
}

func mapLeadSortColumn(sortBy string) string {
	switch sortBy {
	case "score":
		return "l.score"
	case "businessName":
		return "l.business_name"
	case "city":
		return "l.city"
	case "reviewCount":
		return "l.review_count"
	case "updatedAt":
		return "l.updated_at"
	default:
		return "l.created_at"
	}
}
