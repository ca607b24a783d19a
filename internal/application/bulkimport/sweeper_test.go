package bulkimport_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/mohammadpnp/candidate-import/internal/application/bulkimport"
	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
)

func TestSweeperDeletesOnlyOldDrafts(t *testing.T) {
	t.Parallel()

	now := fixedNow
	old := now.Add(-8 * 24 * time.Hour)
	recent := now.Add(-2 * 24 * time.Hour)

	store := newFakeStore()
	store.putJob(domain.ImportJob{ID: "old-draft", Filename: "a.csv", Status: domain.JobStatusDraft, CreatedAt: old}, domain.ImportRow{RowIndex: 1})
	store.putJob(domain.ImportJob{ID: "new-draft", Status: domain.JobStatusDraft, CreatedAt: recent})
	store.putJob(domain.ImportJob{ID: "old-queued", Status: domain.JobStatusQueued, CreatedAt: old})
	store.putJob(domain.ImportJob{ID: "old-processing", Status: domain.JobStatusProcessing, CreatedAt: old})
	store.putJob(domain.ImportJob{ID: "old-done", Status: domain.JobStatusCompleted, CreatedAt: old})

	archive := newFakeArchive()
	sweeper := app.NewSweeper(store, app.SweeperConfig{
		Archive: archive,
		Now:     func() time.Time { return now },
	})

	n, err := sweeper.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = store.GetJob(context.Background(), "old-draft")
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
	assert.Empty(t, store.rows["old-draft"])

	for _, id := range []string{"new-draft", "old-queued", "old-processing", "old-done"} {
		_, err := store.GetJob(context.Background(), id)
		assert.NoError(t, err, id)
	}
	assert.Equal(t, []string{app.ArchiveKey("old-draft", "a.csv")}, archive.removed)
}

func TestSweeperRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	sweeper := app.NewSweeper(newFakeStore(), app.SweeperConfig{Interval: time.Millisecond})

	done := make(chan error, 1)
	go func() { done <- sweeper.Run(ctx) }()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
