package scoring

import (
	"testing"

	"leadgen_backend/internal/leads/domain"
)

const fmtExpectedTotal = "expected total %d, got %d"

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestGradeAndPriorityBoundaries(t *testing.T) {
	cases := []struct {
		total    int
		grade    domain.Grade
		priority domain.Priority
	}{
		{34, domain.GradeF, domain.PriorityCold},
		{35, domain.GradeD, domain.PriorityCold},
		{44, domain.GradeD, domain.PriorityCold},
		{45, domain.GradeD, domain.PriorityWarm},
		{49, domain.GradeD, domain.PriorityWarm},
		{50, domain.GradeC, domain.PriorityWarm},
		{64, domain.GradeC, domain.PriorityWarm},
		{65, domain.GradeB, domain.PriorityWarm},
		{69, domain.GradeB, domain.PriorityWarm},
		{70, domain.GradeB, domain.PriorityHot},
		{79, domain.GradeB, domain.PriorityHot},
		{80, domain.GradeA, domain.PriorityHot},
		{0, domain.GradeF, domain.PriorityCold},
		{100, domain.GradeA, domain.PriorityHot},
	}

	for _, tc := range cases {
		if got := GradeFor(tc.total); got != tc.grade {
			t.Errorf("GradeFor(%d) = %q, want %q", tc.total, got, tc.grade)
		}
		if got := PriorityFor(tc.total); got != tc.priority {
			t.Errorf("PriorityFor(%d) = %q, want %q", tc.total, got, tc.priority)
		}
	}
}

func TestScoreNameOnlyLead(t *testing.T) {
	result := ScoreCandidate(domain.LeadCandidate{BusinessName: "Glow Clinic"})

	// no website 18 + name 2
	if result.Total != 20 {
		t.Fatalf(fmtExpectedTotal, 20, result.Total)
	}
	if result.Grade != domain.GradeF || result.Priority != domain.PriorityCold {
		t.Fatalf("expected F/cold, got %s/%s", result.Grade, result.Priority)
	}
}

func TestScoreFullyPopulatedUnauditedLead(t *testing.T) {
	result := ScoreCandidate(domain.LeadCandidate{
		BusinessName: "Glow Clinic",
		Email:        "info@glow.co.uk",
		Phone:        "+442079460958",
		Website:      "https://glow.co.uk",
		SocialHandle: "glowclinic",
		Rating:       floatPtr(4.5),
		ReviewCount:  intPtr(5),
	})

	// 25 + 15 + 12 + 15 + 10 + 10
	if result.Total != 87 {
		t.Fatalf(fmtExpectedTotal, 87, result.Total)
	}
	if result.Grade != domain.GradeA || result.Priority != domain.PriorityHot {
		t.Fatalf("expected A/hot, got %s/%s", result.Grade, result.Priority)
	}
}

func TestScoreNoWebsiteOutranksUnauditedWebsite(t *testing.T) {
	withSite := ScoreCandidate(domain.LeadCandidate{BusinessName: "A", Website: "a.com"})
	without := ScoreCandidate(domain.LeadCandidate{BusinessName: "A"})

	siteFactor, _ := withSite.Factor(FactorWebsite)
	noSiteFactor, _ := without.Factor(FactorWebsite)
	if siteFactor.Earned != 12 {
		t.Fatalf("expected unaudited website opportunity 12, got %d", siteFactor.Earned)
	}
	if noSiteFactor.Earned != 18 {
		t.Fatalf("expected missing website opportunity 18, got %d", noSiteFactor.Earned)
	}
}

func TestScoreWebsiteOpportunityFromAudit(t *testing.T) {
	cases := []struct {
		audit int
		want  int
	}{
		{0, 25}, {39, 25}, {40, 20}, {59, 20}, {60, 12}, {79, 12}, {80, 5}, {100, 5},
	}
	for _, tc := range cases {
		lead := domain.NormalizedLead{
			LeadCandidate: domain.LeadCandidate{BusinessName: "A", Website: "a.com"},
			AuditScore:    intPtr(tc.audit),
		}
		f, ok := Score(lead).Factor(FactorWebsite)
		if !ok {
			t.Fatalf("expected website factor")
		}
		if f.Earned != tc.want {
			t.Errorf("audit %d: expected %d, got %d", tc.audit, tc.want, f.Earned)
		}
	}
}

func TestScoreReviewOpportunity(t *testing.T) {
	cases := []struct {
		count *int
		want  int
	}{
		{nil, 0}, {intPtr(0), 15}, {intPtr(9), 15}, {intPtr(10), 12}, {intPtr(29), 12},
		{intPtr(30), 8}, {intPtr(99), 8}, {intPtr(100), 4}, {intPtr(5000), 4},
	}
	for _, tc := range cases {
		f, _ := ScoreCandidate(domain.LeadCandidate{BusinessName: "A", ReviewCount: tc.count}).Factor(FactorReviews)
		if f.Earned != tc.want {
			t.Errorf("reviews %v: expected %d, got %d", tc.count, tc.want, f.Earned)
		}
	}
}

func TestScorePresenceRatingThreshold(t *testing.T) {
	low, _ := ScoreCandidate(domain.LeadCandidate{BusinessName: "A", Rating: floatPtr(2.9)}).Factor(FactorPresence)
	high, _ := ScoreCandidate(domain.LeadCandidate{BusinessName: "A", Rating: floatPtr(3.0)}).Factor(FactorPresence)
	if low.Earned != 0 {
		t.Fatalf("expected 0 presence for rating 2.9, got %d", low.Earned)
	}
	if high.Earned != 3 {
		t.Fatalf("expected 3 presence for rating 3.0, got %d", high.Earned)
	}
}

func TestScoreEmailFactorIsWorthExactly25(t *testing.T) {
	base := domain.LeadCandidate{BusinessName: "A", Website: "a.com", ReviewCount: intPtr(50)}
	withEmail := base
	withEmail.Email = "info@a.com"

	before, _ := ScoreCandidate(base).Factor(FactorEmail)
	after, _ := ScoreCandidate(withEmail).Factor(FactorEmail)
	if after.Earned-before.Earned != 25 {
		t.Fatalf("expected email factor delta 25, got %d", after.Earned-before.Earned)
	}

	// completeness also credits the email field
	delta := ScoreCandidate(withEmail).Total - ScoreCandidate(base).Total
	if delta != 28 {
		t.Fatalf("expected total delta 28, got %d", delta)
	}
}

func TestScorePhoneFactorIsWorthExactly15(t *testing.T) {
	base := domain.LeadCandidate{BusinessName: "A"}
	withPhone := base
	withPhone.Phone = "020 7946 0958"

	before, _ := ScoreCandidate(base).Factor(FactorPhone)
	after, _ := ScoreCandidate(withPhone).Factor(FactorPhone)
	if after.Earned-before.Earned != 15 {
		t.Fatalf("expected phone factor delta 15, got %d", after.Earned-before.Earned)
	}
	if delta := ScoreCandidate(withPhone).Total - ScoreCandidate(base).Total; delta != 17 {
		t.Fatalf("expected total delta 17, got %d", delta)
	}
}

func TestScoreMixedLeads(t *testing.T) {
	cases := []struct {
		name     string
		lead     domain.NormalizedLead
		total    int
		grade    domain.Grade
		priority domain.Priority
	}{
		{
			name: "contactable without website",
			lead: domain.NormalizedLead{LeadCandidate: domain.LeadCandidate{
				BusinessName: "A", Email: "a@a.com", Phone: "1", ReviewCount: intPtr(50), Rating: floatPtr(2.0),
			}},
			// 25 + 15 + 18 + 8 + 0 + 7
			total: 73, grade: domain.GradeB, priority: domain.PriorityHot,
		},
		{
			name: "phone only with poor audited site",
			lead: domain.NormalizedLead{
				LeadCandidate: domain.LeadCandidate{
					BusinessName: "A", Phone: "1", Website: "a.com", ReviewCount: intPtr(150), Rating: floatPtr(3.0),
				},
				AuditScore: intPtr(35),
			},
			// 0 + 15 + 25 + 4 + 7 + 7
			total: 58, grade: domain.GradeC, priority: domain.PriorityWarm,
		},
	}

	for _, tc := range cases {
		result := Score(tc.lead)
		if result.Total != tc.total {
			t.Errorf("%s: "+fmtExpectedTotal, tc.name, tc.total, result.Total)
		}
		if result.Grade != tc.grade || result.Priority != tc.priority {
			t.Errorf("%s: expected %s/%s, got %s/%s", tc.name, tc.grade, tc.priority, result.Grade, result.Priority)
		}
	}
}

func TestScoreIsDeterministicAndOrdered(t *testing.T) {
	lead := domain.LeadCandidate{BusinessName: "A", Email: "a@a.com", Website: "a.com"}
	first := ScoreCandidate(lead)
	second := ScoreCandidate(lead)

	if first.Total != second.Total || len(first.Factors) != len(second.Factors) {
		t.Fatalf("expected identical results")
	}

	wantOrder := []string{FactorEmail, FactorPhone, FactorWebsite, FactorReviews, FactorPresence, FactorCompleteness}
	for i, name := range wantOrder {
		if first.Factors[i].Name != name {
			t.Fatalf("expected factor %d to be %q, got %q", i, name, first.Factors[i].Name)
		}
		if first.Factors[i].Rationale == "" {
			t.Fatalf("expected rationale for factor %q", name)
		}
	}
}
