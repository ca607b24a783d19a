package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
	"github.com/mohammadpnp/candidate-import/internal/infrastructure/db/models"
	"github.com/mohammadpnp/candidate-import/internal/infrastructure/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestDraftCopyWriterIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect db: %v", err)
	}
	if err := db.AutoMigrate(&models.ImportJob{}, &models.ImportRow{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to open pool: %v", err)
	}
	defer pool.Close()

	job := draftJob(time.Now().UTC())
	rows := draftRows(job.ID)
	if err := repository.NewDraftCopyWriter(pool).CreateDraft(ctx, job, rows); err != nil {
		t.Fatalf("create draft failed: %v", err)
	}

	store := repository.NewImportStore(db)
	got, err := store.ListRows(ctx, job.ID)
	if err != nil {
		t.Fatalf("list rows failed: %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(got))
	}
	if got[1].Status != domain.RowStatusNeedsConfirmation || got[1].GroupMatchScore == nil || *got[1].GroupMatchScore != 94 {
		t.Fatalf("unexpected needs-confirmation row: %+v", got[1])
	}
	if got[0].NormalizedData.Email != "a@example.com" {
		t.Fatalf("normalized data not persisted: %+v", got[0].NormalizedData)
	}

	applied, err := store.ApplyOverride(ctx, job.ID, domain.Override{RowIndex: 2, GroupID: 4})
	if err != nil || !applied {
		t.Fatalf("override on copied row failed: applied=%v err=%v", applied, err)
	}

	if err := repository.NewDraftCopyWriter(pool).CreateDraft(ctx, &domain.ImportJob{ID: "not-a-uuid"}, nil); err == nil {
		t.Fatal("expected invalid job id error")
	}
}
