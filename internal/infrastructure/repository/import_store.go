package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
	"github.com/mohammadpnp/candidate-import/internal/infrastructure/db/models"
	"gorm.io/gorm"
)

const rowInsertBatchSize = 500

type ImportStore struct {
	db *gorm.DB
}

func NewImportStore(db *gorm.DB) *ImportStore {
	return &ImportStore{db: db}
}

// CreateDraft writes the job and all of its rows in one transaction.
func (r *ImportStore) CreateDraft(ctx context.Context, job *domain.ImportJob, rows []domain.ImportRow) error {
	jobRow := toJobModel(*job)
	rowModels := make([]models.ImportRow, 0, len(rows))
	for _, row := range rows {
		rowModels = append(rowModels, toRowModel(row))
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&jobRow).Error; err != nil {
			return fmt.Errorf("create import job: %w", err)
		}
		if len(rowModels) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&rowModels, rowInsertBatchSize).Error; err != nil {
			return fmt.Errorf("create import rows: %w", err)
		}
		return nil
	})
}

func (r *ImportStore) GetJob(ctx context.Context, jobID string) (*domain.ImportJob, error) {
	var row models.ImportJob
	if err := r.db.WithContext(ctx).First(&row, "id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("get import job: %w", err)
	}

	job := toJobDomain(row)
	return &job, nil
}

// TransitionStatus moves a job from one status to another only if it is
// still in from.
func (r *ImportStore) TransitionStatus(ctx context.Context, jobID string, from, to domain.JobStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.ImportJob{}).
		Where("id = ? AND status = ?", jobID, string(from)).
		Update("status", string(to))
	if res.Error != nil {
		return fmt.Errorf("transition import job: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ImportJob{}).Where("id = ?", jobID).Count(&count).Error; err != nil {
		return fmt.Errorf("check import job: %w", err)
	}
	if count == 0 {
		return domain.ErrJobNotFound
	}
	return domain.ErrStatusConflict
}

// ApplyOverride routes a READY or NEEDS_CONFIRMATION row to the chosen group.
// It reports false when no such row exists.
func (r *ImportStore) ApplyOverride(ctx context.Context, jobID string, override domain.Override) (bool, error) {
	groupID := override.GroupID
	res := r.db.WithContext(ctx).
		Model(&models.ImportRow{}).
		Where("import_id = ? AND row_index = ? AND status IN ?", jobID, override.RowIndex, []string{
			string(domain.RowStatusReady),
			string(domain.RowStatusNeedsConfirmation),
		}).
		Select("status", "matched_group_id", "overridden", "override_data", "updated_at").
		Updates(models.ImportRow{
			Status:         string(domain.RowStatusReady),
			MatchedGroupID: &groupID,
			Overridden:     true,
			OverrideData:   &models.OverrideData{GroupID: groupID},
			UpdatedAt:      time.Now(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("apply override: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *ImportStore) ListRows(ctx context.Context, jobID string, statuses ...domain.RowStatus) ([]domain.ImportRow, error) {
	q := r.db.WithContext(ctx).Where("import_id = ?", jobID)
	if len(statuses) > 0 {
		values := make([]string, 0, len(statuses))
		for _, s := range statuses {
			values = append(values, string(s))
		}
		q = q.Where("status IN ?", values)
	}

	var rows []models.ImportRow
	if err := q.Order("row_index ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list import rows: %w", err)
	}

	out := make([]domain.ImportRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, toRowDomain(row))
	}
	return out, nil
}

// SaveRowOutcomes persists status, error message and result type of the
// given rows, keyed by job and row index. Executed rows also lose their
// uploaded password.
func (r *ImportStore) SaveRowOutcomes(ctx context.Context, rows []domain.ImportRow) error {
	if len(rows) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			columns := []string{"status", "error_message", "result_type", "updated_at"}
			if row.Executed() {
				row.ClearPassword()
				columns = append(columns, "raw_data", "normalized_data")
			}

			m := toRowModel(row)
			m.UpdatedAt = time.Now()
			err := tx.Model(&models.ImportRow{}).
				Where("import_id = ? AND row_index = ?", row.ImportID, row.RowIndex).
				Select(columns).
				Updates(&m).Error
			if err != nil {
				return fmt.Errorf("save row %d outcome: %w", row.RowIndex, err)
			}
		}
		return nil
	})
}

func (r *ImportStore) IncrementProcessed(ctx context.Context, jobID string, delta int) error {
	err := r.db.WithContext(ctx).
		Model(&models.ImportJob{}).
		Where("id = ?", jobID).
		UpdateColumn("processed_count", gorm.Expr("processed_count + ?", delta)).Error
	if err != nil {
		return fmt.Errorf("increment processed count: %w", err)
	}
	return nil
}

func (r *ImportStore) FinishJob(ctx context.Context, jobID string, status domain.JobStatus, finishedAt time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&models.ImportJob{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"status":       string(status),
			"completed_at": finishedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("finish import job: %w", err)
	}
	return nil
}

func (r *ImportStore) CountRows(ctx context.Context, jobID string) (domain.RowCounts, error) {
	var grouped []struct {
		Status string
		Total  int
	}
	err := r.db.WithContext(ctx).
		Model(&models.ImportRow{}).
		Select("status, COUNT(*) AS total").
		Where("import_id = ? AND status IN ?", jobID, []string{
			string(domain.RowStatusSuccess),
			string(domain.RowStatusFailed),
		}).
		Group("status").
		Scan(&grouped).Error
	if err != nil {
		return domain.RowCounts{}, fmt.Errorf("count import rows: %w", err)
	}

	var counts domain.RowCounts
	for _, g := range grouped {
		switch domain.RowStatus(g.Status) {
		case domain.RowStatusSuccess:
			counts.Success = g.Total
		case domain.RowStatusFailed:
			counts.Failed = g.Total
		}
	}
	return counts, nil
}

func (r *ImportStore) ListJobIDsByStatus(ctx context.Context, status domain.JobStatus) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.ImportJob{}).
		Where("status = ?", string(status)).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list import jobs by status: %w", err)
	}
	return ids, nil
}

// DeleteDraftsBefore removes DRAFT jobs created before cutoff together with
// their rows and returns the deleted jobs.
func (r *ImportStore) DeleteDraftsBefore(ctx context.Context, cutoff time.Time) ([]domain.ImportJob, error) {
	var deleted []domain.ImportJob

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var jobs []models.ImportJob
		if err := tx.Where("status = ? AND created_at < ?", string(domain.JobStatusDraft), cutoff).Find(&jobs).Error; err != nil {
			return fmt.Errorf("find old drafts: %w", err)
		}
		if len(jobs) == 0 {
			return nil
		}

		ids := make([]string, 0, len(jobs))
		for _, j := range jobs {
			ids = append(ids, j.ID)
		}

		if err := tx.Where("import_id IN ?", ids).Delete(&models.ImportRow{}).Error; err != nil {
			return fmt.Errorf("delete draft rows: %w", err)
		}
		if err := tx.Where("id IN ? AND status = ?", ids, string(domain.JobStatusDraft)).Delete(&models.ImportJob{}).Error; err != nil {
			return fmt.Errorf("delete drafts: %w", err)
		}

		for _, j := range jobs {
			deleted = append(deleted, toJobDomain(j))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
