package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRow(t *testing.T) {
	before := testutil.ToFloat64(importRows.WithLabelValues("SUCCESS"))
	RecordRow("SUCCESS")
	if got := testutil.ToFloat64(importRows.WithLabelValues("SUCCESS")); got != before+1 {
		t.Fatalf("expected %v, got %v", before+1, got)
	}
}

func TestRecordDraftsSweptIgnoresZero(t *testing.T) {
	before := testutil.ToFloat64(draftsSwept)
	RecordDraftsSwept(0)
	RecordDraftsSwept(3)
	if got := testutil.ToFloat64(draftsSwept); got != before+3 {
		t.Fatalf("expected %v, got %v", before+3, got)
	}
}
