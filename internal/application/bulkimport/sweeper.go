package bulkimport

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
	"github.com/mohammadpnp/candidate-import/internal/logging"
	"github.com/mohammadpnp/candidate-import/internal/metrics"
	"github.com/sirupsen/logrus"
)

const (
	defaultDraftRetention = 7 * 24 * time.Hour
	defaultSweepInterval  = 24 * time.Hour
)

type draftDeleter interface {
	DeleteDraftsBefore(ctx context.Context, cutoff time.Time) ([]domain.ImportJob, error)
}

type SweeperConfig struct {
	Retention time.Duration
	Interval  time.Duration
	Archive   UploadArchive
	Logger    *logrus.Entry
	Now       func() time.Time
}

// Sweeper deletes DRAFT jobs older than the retention window, with their
// rows and archived uploads. Jobs in any other status are never touched.
type Sweeper struct {
	store  draftDeleter
	cfg    SweeperConfig
	logger *logrus.Entry
}

func NewSweeper(store draftDeleter, cfg SweeperConfig) *Sweeper {
	if cfg.Retention <= 0 {
		cfg.Retention = defaultDraftRetention
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultSweepInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Sweeper{store: store, cfg: cfg, logger: logger}
}

func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if _, err := s.RunOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			s.logger.WithError(err).Warn("bulk import: sweep tick failed")
		}
	}
}

// RunOnce performs a single sweep and reports how many drafts were removed.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	cutoff := s.cfg.Now().Add(-s.cfg.Retention)

	deleted, err := s.store.DeleteDraftsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete drafts before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	if s.cfg.Archive != nil {
		for _, job := range deleted {
			if err := s.cfg.Archive.Remove(ctx, ArchiveKey(job.ID, job.Filename)); err != nil {
				s.logger.WithError(err).WithField("job_id", job.ID).Warn("bulk import: archived upload not removed")
			}
		}
	}

	metrics.RecordDraftsSwept(len(deleted))
	if len(deleted) > 0 {
		s.logger.WithField("deleted", len(deleted)).Info("bulk import: old drafts deleted")
	}
	return len(deleted), nil
}
