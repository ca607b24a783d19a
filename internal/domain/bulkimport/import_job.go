package bulkimport

import "time"

type JobStatus string

const (
	JobStatusDraft      JobStatus = "DRAFT"
	JobStatusQueued     JobStatus = "QUEUED"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
)

// Terminal reports whether no further transition is allowed besides deletion.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

type ImportJob struct {
	ID             string
	CreatedByID    int64
	Filename       string
	TotalRecords   int
	ProcessedCount int
	Status         JobStatus
	CreatedAt      time.Time
	CompletedAt    *time.Time
}

type RowCounts struct {
	Success int
	Failed  int
}

type JobProgress struct {
	Job    ImportJob
	Counts RowCounts
}

// Percent mirrors the processed/total ratio used for progress bars.
func (p JobProgress) Percent() int {
	if p.Job.TotalRecords <= 0 {
		return 0
	}
	ratio := float64(p.Job.ProcessedCount) / float64(p.Job.TotalRecords) * 100
	return int(ratio + 0.5)
}
