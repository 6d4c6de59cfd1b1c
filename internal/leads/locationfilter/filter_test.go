package locationfilter

import (
	"testing"

	"leadgen_backend/internal/leads/domain"
)

func TestFilterKeepsAddressOrCityMatches(t *testing.T) {
	in := []domain.LeadCandidate{
		{BusinessName: "A", Address: "1 High St, LONDON W1"},
		{BusinessName: "B", City: "London"},
		{BusinessName: "C", Address: "2 Deansgate", City: "Manchester"},
	}

	out := Filter(in, "london")
	if len(out) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(out))
	}
	if out[0].BusinessName != "A" || out[1].BusinessName != "B" {
		t.Fatalf("expected A and B in order, got %q and %q", out[0].BusinessName, out[1].BusinessName)
	}
}

func TestFilterFallsBackToUnfilteredWhenNothingMatches(t *testing.T) {
	in := []domain.LeadCandidate{
		{BusinessName: "A", Address: "Westminster"},
		{BusinessName: "B", City: "Camden"},
	}

	out := Filter(in, "London")
	if len(out) != len(in) {
		t.Fatalf("expected unfiltered %d candidates, got %d", len(in), len(out))
	}
}

func TestFilterNeverEmptiesNonEmptyInput(t *testing.T) {
	locations := []string{"London", "", "zzz", "Manchester"}
	in := []domain.LeadCandidate{{BusinessName: "A", City: "Leeds"}}

	for _, loc := range locations {
		if out := Filter(in, loc); len(out) < 1 {
			t.Fatalf("expected at least one candidate for %q", loc)
		}
	}
}

func TestFilterEmptyInput(t *testing.T) {
	if out := Filter(nil, "London"); len(out) != 0 {
		t.Fatalf("expected empty output, got %d", len(out))
	}
}
