package bulkimport_test

import (
	"testing"

	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
)

func TestNormalizeKey(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Batch A":          "batcha",
		"batch a":          "batcha",
		"  CXO-General ":   "cxogeneral",
		"Employee_2025!":   "employee2025",
		"":                 "",
		"Équipe Très Bien": "quipetrsbien",
	}
	for in, want := range cases {
		if got := domain.NormalizeKey(in); got != want {
			t.Fatalf("NormalizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGenderValid(t *testing.T) {
	t.Parallel()

	for _, g := range []domain.Gender{"MALE", "FEMALE", "OTHER", "OTHERS"} {
		if !g.Valid() {
			t.Fatalf("expected %s to be valid", g)
		}
	}
	if domain.Gender("UNKNOWN").Valid() {
		t.Fatal("expected UNKNOWN to be invalid")
	}
}

func TestJobProgressPercent(t *testing.T) {
	t.Parallel()

	p := domain.JobProgress{Job: domain.ImportJob{TotalRecords: 3, ProcessedCount: 2}}
	if got := p.Percent(); got != 67 {
		t.Fatalf("expected 67, got %d", got)
	}

	empty := domain.JobProgress{}
	if got := empty.Percent(); got != 0 {
		t.Fatalf("expected 0 for empty job, got %d", got)
	}
}
