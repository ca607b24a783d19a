package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	importRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bulk_import",
		Name:      "rows_total",
		Help:      "Import rows reaching a validation or execution outcome, by status.",
	}, []string{"status"})

	importBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bulk_import",
		Name:      "batches_total",
		Help:      "Executed batches by result (ok, group_failed, header_failed).",
	}, []string{"result"})

	importJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bulk_import",
		Name:      "jobs_total",
		Help:      "Import jobs reaching a lifecycle status.",
	}, []string{"status"})

	registrationRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bulk_import",
		Name:      "registration_retries_total",
		Help:      "Registration calls retried after a rate-limit response.",
	})

	draftsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bulk_import",
		Name:      "drafts_swept_total",
		Help:      "Abandoned draft imports deleted by the retention sweeper.",
	})
)

func RecordRow(status string) {
	if status == "" {
		status = "unknown"
	}
	importRows.WithLabelValues(status).Inc()
}

func RecordBatch(result string) {
	importBatches.WithLabelValues(result).Inc()
}

func RecordJob(status string) {
	importJobs.WithLabelValues(status).Inc()
}

func RecordRegistrationRetry() {
	registrationRetries.Inc()
}

func RecordDraftsSwept(n int) {
	if n <= 0 {
		return
	}
	draftsSwept.Add(float64(n))
}
