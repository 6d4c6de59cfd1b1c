// Package scoring computes the deterministic lead prioritization score.
//
// The weights below are a business policy. Change them only together with the
// boundary tests in scorer_test.go and bump scoreVersion.
package scoring

import (
	"encoding/json"
	"fmt"
	"strings"

	"leadgen_backend/internal/leads/domain"
)

const (
	// scoreVersion tracks the scoring model for debugging and analysis.
	scoreVersion = "2026-10-v1"

	emailPoints = 25
	phonePoints = 15

	maxWebsiteOpportunity = 25
	maxReviewOpportunity  = 15
	maxPresence           = 10
	maxCompleteness       = 10

	minRatingForPresence = 3.0
)

const (
	FactorEmail        = "email"
	FactorPhone        = "phone"
	FactorWebsite      = "website_opportunity"
	FactorReviews      = "review_opportunity"
	FactorPresence     = "online_presence"
	FactorCompleteness = "data_completeness"
)

// Factor is one named contribution to the total.
type Factor struct {
	Name      string `json:"name"`
	Earned    int    `json:"earned"`
	Max       int    `json:"max"`
	Rationale string `json:"rationale"`
}

// Result is the outcome of scoring one lead.
type Result struct {
	Total    int             `json:"total"`
	Grade    domain.Grade    `json:"grade"`
	Priority domain.Priority `json:"priority"`
	Factors  []Factor        `json:"factors"`
	Version  string          `json:"version"`
}

// FactorsJSON serializes the ordered factor list for storage.
func (r Result) FactorsJSON() ([]byte, error) {
	return json.Marshal(r.Factors)
}

// Factor returns the named factor, if present.
func (r Result) Factor(name string) (Factor, bool) {
	for _, f := range r.Factors {
		if f.Name == name {
			return f, true
		}
	}
	return Factor{}, false
}

// Score maps a lead's known attributes to a score, grade and priority.
// It is pure: no I/O, no clock.
func Score(lead domain.NormalizedLead) Result {
	factors := []Factor{
		scoreEmail(lead.LeadCandidate),
		scorePhone(lead.LeadCandidate),
		scoreWebsiteOpportunity(lead.Website, lead.AuditScore),
		scoreReviewOpportunity(lead.ReviewCount),
		scorePresence(lead.LeadCandidate),
		scoreCompleteness(lead.LeadCandidate),
	}

	total := 0
	for _, f := range factors {
		total += f.Earned
	}
	total = clampScore(total)

	return Result{
		Total:    total,
		Grade:    GradeFor(total),
		Priority: PriorityFor(total),
		Factors:  factors,
		Version:  scoreVersion,
	}
}

// ScoreCandidate scores an unpersisted candidate (no audit history).
func ScoreCandidate(c domain.LeadCandidate) Result {
	return Score(domain.NormalizedLead{LeadCandidate: c})
}

// GradeFor derives the letter grade from a total.
func GradeFor(total int) domain.Grade {
	switch {
	case total >= 80:
		return domain.GradeA
	case total >= 65:
		return domain.GradeB
	case total >= 50:
		return domain.GradeC
	case total >= 35:
		return domain.GradeD
	default:
		return domain.GradeF
	}
}

// PriorityFor derives the outreach tier from a total.
func PriorityFor(total int) domain.Priority {
	switch {
	case total >= 70:
		return domain.PriorityHot
	case total >= 45:
		return domain.PriorityWarm
	default:
		return domain.PriorityCold
	}
}

func scoreEmail(c domain.LeadCandidate) Factor {
	if present(c.Email) {
		return Factor{Name: FactorEmail, Earned: emailPoints, Max: emailPoints, Rationale: "email address on file"}
	}
	return Factor{Name: FactorEmail, Earned: 0, Max: emailPoints, Rationale: "no email address"}
}

func scorePhone(c domain.LeadCandidate) Factor {
	if present(c.Phone) {
		return Factor{Name: FactorPhone, Earned: phonePoints, Max: phonePoints, Rationale: "phone number on file"}
	}
	return Factor{Name: FactorPhone, Earned: 0, Max: phonePoints, Rationale: "no phone number"}
}

// scoreWebsiteOpportunity inverts website quality: a weaker site is a bigger sales opening.
// No website at all scores above an unaudited one (rebuild opportunity).
func scoreWebsiteOpportunity(website string, auditScore *int) Factor {
	f := Factor{Name: FactorWebsite, Max: maxWebsiteOpportunity}

	switch {
	case auditScore != nil:
		audit := *auditScore
		switch {
		case audit < 40:
			f.Earned = 25
		case audit < 60:
			f.Earned = 20
		case audit < 80:
			f.Earned = 12
		default:
			f.Earned = 5
		}
		f.Rationale = fmt.Sprintf("website audit scored %d", audit)
	case present(website):
		f.Earned = 12
		f.Rationale = "website not yet audited"
	default:
		f.Earned = 18
		f.Rationale = "no website, rebuild opportunity"
	}

	return f
}

func scoreReviewOpportunity(reviewCount *int) Factor {
	f := Factor{Name: FactorReviews, Max: maxReviewOpportunity}
	if reviewCount == nil {
		f.Rationale = "review count unknown"
		return f
	}

	count := *reviewCount
	switch {
	case count < 10:
		f.Earned = 15
	case count < 30:
		f.Earned = 12
	case count < 100:
		f.Earned = 8
	default:
		f.Earned = 4
	}
	f.Rationale = fmt.Sprintf("%d reviews", count)
	return f
}

func scorePresence(c domain.LeadCandidate) Factor {
	f := Factor{Name: FactorPresence, Max: maxPresence}
	var parts []string

	if present(c.SocialHandle) {
		f.Earned += 3
		parts = append(parts, "social profile")
	}
	if present(c.Website) {
		f.Earned += 4
		parts = append(parts, "website")
	}
	if c.Rating != nil && *c.Rating >= minRatingForPresence {
		f.Earned += 3
		parts = append(parts, fmt.Sprintf("rating %.1f", *c.Rating))
	}

	f.Rationale = rationaleList(parts, "no online presence signals")
	return f
}

func scoreCompleteness(c domain.LeadCandidate) Factor {
	f := Factor{Name: FactorCompleteness, Max: maxCompleteness}
	var parts []string

	if present(c.BusinessName) {
		f.Earned += 2
		parts = append(parts, "name")
	}
	if present(c.Email) {
		f.Earned += 3
		parts = append(parts, "email")
	}
	if present(c.Phone) {
		f.Earned += 2
		parts = append(parts, "phone")
	}
	if present(c.Website) {
		f.Earned += 3
		parts = append(parts, "website")
	}

	f.Rationale = rationaleList(parts, "no contact data")
	return f
}

func rationaleList(parts []string, empty string) string {
	if len(parts) == 0 {
		return empty
	}
	return "has " + strings.Join(parts, ", ")
}

func present(value string) bool {
	return strings.TrimSpace(value) != ""
}

func clampScore(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
