package bulkimport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
)

type StatusOutput struct {
	JobID           string           `json:"job_id"`
	Status          domain.JobStatus `json:"status"`
	Filename        string           `json:"filename"`
	Total           int              `json:"total"`
	Processed       int              `json:"processed"`
	Success         int              `json:"success"`
	Failed          int              `json:"failed"`
	ProgressPercent int              `json:"progress_percent"`
	CreatedAt       time.Time        `json:"created_at"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
}

type GetStatus interface {
	Execute(ctx context.Context, jobID string) (StatusOutput, error)
}

type GetRows interface {
	Execute(ctx context.Context, jobID string) ([]RowOutput, error)
}

type statusRepo interface {
	GetJob(ctx context.Context, jobID string) (*domain.ImportJob, error)
	CountRows(ctx context.Context, jobID string) (domain.RowCounts, error)
}

type rowsRepo interface {
	GetJob(ctx context.Context, jobID string) (*domain.ImportJob, error)
	ListRows(ctx context.Context, jobID string, statuses ...domain.RowStatus) ([]domain.ImportRow, error)
}

type getStatus struct {
	repo statusRepo
}

func NewGetStatus(repo statusRepo) GetStatus {
	return &getStatus{repo: repo}
}

func (uc *getStatus) Execute(ctx context.Context, jobID string) (StatusOutput, error) {
	job, err := loadJob(ctx, uc.repo, jobID)
	if err != nil {
		return StatusOutput{}, err
	}

	counts, err := uc.repo.CountRows(ctx, job.ID)
	if err != nil {
		return StatusOutput{}, fmt.Errorf("%w: count rows: %v", ErrGetImportStatus, err)
	}

	progress := domain.JobProgress{Job: *job, Counts: counts}
	return StatusOutput{
		JobID:           job.ID,
		Status:          job.Status,
		Filename:        job.Filename,
		Total:           job.TotalRecords,
		Processed:       job.ProcessedCount,
		Success:         counts.Success,
		Failed:          counts.Failed,
		ProgressPercent: progress.Percent(),
		CreatedAt:       job.CreatedAt,
		CompletedAt:     job.CompletedAt,
	}, nil
}

type getRows struct {
	repo rowsRepo
}

func NewGetRows(repo rowsRepo) GetRows {
	return &getRows{repo: repo}
}

// Execute returns every row of the job ordered by row index.
func (uc *getRows) Execute(ctx context.Context, jobID string) ([]RowOutput, error) {
	job, err := loadJob(ctx, uc.repo, jobID)
	if err != nil {
		return nil, err
	}

	rows, err := uc.repo.ListRows(ctx, job.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: list rows: %v", ErrGetImportStatus, err)
	}
	return toRowOutputs(rows), nil
}

type jobGetter interface {
	GetJob(ctx context.Context, jobID string) (*domain.ImportJob, error)
}

func loadJob(ctx context.Context, repo jobGetter, jobID string) (*domain.ImportJob, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, ErrImportNotFound
	}

	job, err := repo.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			return nil, ErrImportNotFound
		}
		return nil, fmt.Errorf("%w: load job: %v", ErrGetImportStatus, err)
	}
	return job, nil
}
