package domain

import "testing"

func TestNeedsEnrichment(t *testing.T) {
	cases := []struct {
		name string
		c    LeadCandidate
		want bool
	}{
		{"no website", LeadCandidate{Email: "", SocialHandle: ""}, false},
		{"missing email", LeadCandidate{Website: "acme.com", SocialHandle: "acme"}, true},
		{"missing social", LeadCandidate{Website: "acme.com", Email: "info@acme.com"}, true},
		{"complete", LeadCandidate{Website: "acme.com", Email: "info@acme.com", SocialHandle: "acme"}, false},
		{"whitespace website", LeadCandidate{Website: "   "}, false},
	}
	for _, tc := range cases {
		if got := tc.c.NeedsEnrichment(); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestIsKnownPipelineStage(t *testing.T) {
	if !IsKnownPipelineStage(PipelineStageNew) {
		t.Fatalf("expected %q to be known", PipelineStageNew)
	}
	if IsKnownPipelineStage("Triage") {
		t.Fatalf("expected Triage to be unknown")
	}
}
