package bulkimport

import (
	"context"
	"errors"
	"fmt"
	"sync"

	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
	"github.com/mohammadpnp/candidate-import/internal/logging"
	"github.com/sirupsen/logrus"
)

var ErrQueueFull = errors.New("import queue is full")

// JobRunner executes one job to completion.
type JobRunner interface {
	Run(ctx context.Context, jobID string) error
}

type JobQueueConfig struct {
	Workers  int
	Capacity int
	Logger   *logrus.Entry
}

// JobQueue is the in-process Dispatcher: a buffered channel drained by a
// fixed pool of workers. Terminal job errors are logged, never returned.
type JobQueue struct {
	jobs   chan string
	runner JobRunner
	cfg    JobQueueConfig
	logger *logrus.Entry

	once sync.Once
	wg   sync.WaitGroup
}

func NewJobQueue(runner JobRunner, cfg JobQueueConfig) *JobQueue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = 100
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	return &JobQueue{
		jobs:   make(chan string, cfg.Capacity),
		runner: runner,
		cfg:    cfg,
		logger: logger,
	}
}

func (q *JobQueue) Dispatch(ctx context.Context, jobID string) error {
	select {
	case q.jobs <- jobID:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("%w: capacity %d", ErrQueueFull, q.cfg.Capacity)
	}
}

// Start launches the workers once. They stop when ctx is done.
func (q *JobQueue) Start(ctx context.Context) {
	q.once.Do(func() {
		for i := 0; i < q.cfg.Workers; i++ {
			q.wg.Add(1)
			go q.workerLoop(ctx)
		}
	})
}

// Wait blocks until every worker has returned.
func (q *JobQueue) Wait() {
	q.wg.Wait()
}

func (q *JobQueue) workerLoop(ctx context.Context) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case jobID := <-q.jobs:
			err := q.runner.Run(ctx, jobID)
			if err == nil {
				continue
			}
			q.logger.WithError(err).WithField("job_id", jobID).Error("bulk import job failed")
			if errors.Is(err, domain.ErrLockNotAcquired) && ctx.Err() == nil {
				// The job is still QUEUED; put it back behind the others.
				if err := q.Dispatch(ctx, jobID); err != nil {
					q.logger.WithError(err).WithField("job_id", jobID).Warn("bulk import: requeue after lock failure failed")
				}
			}
		}
	}
}

type queuedJobLister interface {
	ListJobIDsByStatus(ctx context.Context, status domain.JobStatus) ([]string, error)
}

// RedispatchQueued hands jobs left QUEUED by a previous process back to the
// dispatcher. PROCESSING jobs are not touched.
func RedispatchQueued(ctx context.Context, lister queuedJobLister, dispatcher Dispatcher, logger *logrus.Entry) (int, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	ids, err := lister.ListJobIDsByStatus(ctx, domain.JobStatusQueued)
	if err != nil {
		return 0, fmt.Errorf("list queued jobs: %w", err)
	}

	dispatched := 0
	for _, id := range ids {
		if err := dispatcher.Dispatch(ctx, id); err != nil {
			logger.WithError(err).WithField("job_id", id).Warn("bulk import: redispatch failed")
			continue
		}
		dispatched++
	}
	if dispatched > 0 {
		logger.WithField("jobs", dispatched).Info("bulk import: queued jobs redispatched")
	}
	return dispatched, nil
}
