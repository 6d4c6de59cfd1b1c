package repository

import (
	"reflect"
	"testing"
)

func TestBuildLeadListWhereNoFilters(t *testing.T) {
	where, args, next := buildLeadListWhere(ListParams{})
	if where != "TRUE" || len(args) != 0 || next != 1 {
		t.Fatalf("expected empty filter, got %q %v %d", where, args, next)
	}
}

func TestBuildLeadListWhereNumbersPlaceholders(t *testing.T) {
	priority := "hot"
	stage := "new"
	minScore := 50
	where, args, next := buildLeadListWhere(ListParams{
		Priority: &priority,
		Stage:    &stage,
		MinScore: &minScore,
		Search:   "acme",
	})

	want := "l.priority = $1 AND l.pipeline_stage = $2 AND l.score >= $3 AND " +
		"(l.business_name ILIKE $4 OR l.city ILIKE $4 OR l.email ILIKE $4 OR l.website ILIKE $4)"
	if where != want {
		t.Fatalf("expected %q, got %q", want, where)
	}
	if !reflect.DeepEqual(args, []interface{}{"hot", "new", 50, "%acme%"}) {
		t.Fatalf("unexpected args %v", args)
	}
	if next != 5 {
		t.Fatalf("expected next placeholder 5, got %d", next)
	}
}

func TestMapLeadSortColumnDefaultsToCreatedAt(t *testing.T) {
	if got := mapLeadSortColumn("score"); got != "l.score" {
		t.Fatalf("expected l.score, got %q", got)
	}
	if got := mapLeadSortColumn("'; DROP TABLE leads;--"); got != "l.created_at" {
		t.Fatalf("expected fallback column, got %q", got)
	}
}
