package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
)

var importRowColumns = []string{
	"id",
	"import_id",
	"row_index",
	"raw_data",
	"normalized_data",
	"status",
	"error_message",
	"result_type",
	"group_match_score",
	"matched_group_id",
	"overridden",
	"override_data",
	"created_at",
	"updated_at",
}

// DraftCopyWriter inserts a draft job and COPYs its rows in one transaction.
type DraftCopyWriter struct {
	pool *pgxpool.Pool
}

func NewDraftCopyWriter(pool *pgxpool.Pool) *DraftCopyWriter {
	return &DraftCopyWriter{pool: pool}
}

func (w *DraftCopyWriter) CreateDraft(ctx context.Context, job *domain.ImportJob, rows []domain.ImportRow) error {
	jobID, err := uuid.Parse(job.ID)
	if err != nil {
		return fmt.Errorf("parse job id: %w", err)
	}

	copyRows := make([][]any, 0, len(rows))
	now := time.Now()
	for _, row := range rows {
		rowID, err := uuid.Parse(row.ID)
		if err != nil {
			return fmt.Errorf("parse row %d id: %w", row.RowIndex, err)
		}
		m := toRowModel(row)

		var override any
		if m.OverrideData != nil {
			override = m.OverrideData
		}
		copyRows = append(copyRows, []any{
			rowID,
			jobID,
			int64(m.RowIndex),
			m.RawData,
			m.NormalizedData,
			m.Status,
			m.ErrorMessage,
			m.ResultType,
			intPtrToInt64(m.GroupMatchScore),
			m.MatchedGroupID,
			m.Overridden,
			override,
			now,
			now,
		})
	}

	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
INSERT INTO corporate_bulk_imports (id, created_by, filename, total_records, processed_count, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, jobID, job.CreatedByID, job.Filename, job.TotalRecords, job.ProcessedCount, string(job.Status), job.CreatedAt); err != nil {
		return fmt.Errorf("insert import job: %w", err)
	}

	if len(copyRows) > 0 {
		if _, err := tx.CopyFrom(
			ctx,
			pgx.Identifier{"corporate_bulk_import_rows"},
			importRowColumns,
			pgx.CopyFromRows(copyRows),
		); err != nil {
			return fmt.Errorf("copy import rows: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit draft: %w", err)
	}
	return nil
}

func intPtrToInt64(v *int) *int64 {
	if v == nil {
		return nil
	}
	n := int64(*v)
	return &n
}
