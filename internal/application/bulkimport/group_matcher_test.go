package bulkimport_test

import (
	"testing"

	app "github.com/mohammadpnp/candidate-import/internal/application/bulkimport"
	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
)

func TestLevenshteinSymmetric(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{"kitten", "sitting"},
		{"", "abc"},
		{"Engineering Team", "Enginering Team"},
		{"flaw", "lawn"},
		{"résumé", "resume"},
	}
	for _, p := range pairs {
		if a, b := app.Levenshtein(p[0], p[1]), app.Levenshtein(p[1], p[0]); a != b {
			t.Fatalf("distance(%q,%q)=%d but reverse=%d", p[0], p[1], a, b)
		}
		if d := app.Levenshtein(p[0], p[0]); d != 0 {
			t.Fatalf("distance(%q,%q)=%d, want 0", p[0], p[0], d)
		}
	}
	if d := app.Levenshtein("kitten", "sitting"); d != 3 {
		t.Fatalf("expected kitten/sitting distance 3, got %d", d)
	}
}

func TestMatchGroup(t *testing.T) {
	t.Parallel()

	tables := app.NewReferenceTables(nil, []domain.Group{
		{ID: 1, Name: "Batch A"},
		{ID: 2, Name: "Engineering Team"},
		{ID: 3, Name: "Sales"},
	}, nil)

	t.Run("exact normalized", func(t *testing.T) {
		match, ok := app.MatchGroup("batch a", tables)
		if !ok || !match.Exact || match.Score != 100 || match.Group.ID != 1 {
			t.Fatalf("expected exact match on group 1, got %+v ok=%v", match, ok)
		}
		match, ok = app.MatchGroup("BATCH-A", tables)
		if !ok || !match.Exact {
			t.Fatalf("expected punctuation variant to match exactly, got %+v ok=%v", match, ok)
		}
	})

	t.Run("approximate", func(t *testing.T) {
		match, ok := app.MatchGroup("Enginering Team", tables)
		if !ok {
			t.Fatal("expected approximate match")
		}
		if match.Exact || match.Group.ID != 2 || match.Distance != 1 || match.Score != 94 {
			t.Fatalf("unexpected match %+v", match)
		}
	})

	t.Run("too far", func(t *testing.T) {
		if match, ok := app.MatchGroup("Marketing", tables); ok {
			t.Fatalf("expected no match, got %+v", match)
		}
	})

	t.Run("length outside window", func(t *testing.T) {
		if match, ok := app.MatchGroup("Sales Team", tables); ok {
			t.Fatalf("expected no match, got %+v", match)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, ok := app.MatchGroup("  ", tables); ok {
			t.Fatal("expected no match for blank input")
		}
	})
}
