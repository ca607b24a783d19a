package bulkimport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
	"github.com/mohammadpnp/candidate-import/internal/logging"
	"github.com/mohammadpnp/candidate-import/internal/metrics"
	"github.com/sirupsen/logrus"
)

const (
	defaultRowDelay = 200 * time.Millisecond

	groupFailedReason  = "System Error: Failed to create Group"
	headerFailedReason = "System Error: Failed to create Group Assessment Header"
)

type executorStore interface {
	GetJob(ctx context.Context, jobID string) (*domain.ImportJob, error)
	TransitionStatus(ctx context.Context, jobID string, from, to domain.JobStatus) error
	ListRows(ctx context.Context, jobID string, statuses ...domain.RowStatus) ([]domain.ImportRow, error)
	SaveRowOutcomes(ctx context.Context, rows []domain.ImportRow) error
	IncrementProcessed(ctx context.Context, jobID string, delta int) error
	FinishJob(ctx context.Context, jobID string, status domain.JobStatus, finishedAt time.Time) error
}

type executorReferences interface {
	ResolveAccount(ctx context.Context, userID int64) (*domain.CorporateAccount, error)
	ListPrograms(ctx context.Context) ([]domain.Program, error)
	ListGroups(ctx context.Context, accountID int64) ([]domain.Group, error)
	CreateGroup(ctx context.Context, group domain.Group) (domain.Group, error)
	CreateAssessmentHeader(ctx context.Context, header domain.AssessmentHeader) (domain.AssessmentHeader, error)
}

type BatchExecutorConfig struct {
	RowDelay time.Duration
	Locker   AccountLocker
	// LockRetry governs retries when the locker itself fails, not when the
	// lock is merely held elsewhere.
	LockRetry *RetryPolicy
	Logger    *logrus.Entry
	Now       func() time.Time
	Password  func() (string, error)
}

// BatchExecutor runs one queued job to a terminal status. Batches and rows
// of a job are processed strictly one after another.
type BatchExecutor struct {
	store     executorStore
	refs      executorReferences
	registrar domain.CandidateRegistrar
	cfg       BatchExecutorConfig
	logger    *logrus.Entry
}

func NewBatchExecutor(store executorStore, refs executorReferences, registrar domain.CandidateRegistrar, cfg BatchExecutorConfig) *BatchExecutor {
	if cfg.RowDelay < 0 {
		cfg.RowDelay = 0
	} else if cfg.RowDelay == 0 {
		cfg.RowDelay = defaultRowDelay
	}
	if cfg.Locker == nil {
		cfg.Locker = NewLocalAccountLocker()
	}
	if cfg.LockRetry == nil {
		policy := DefaultLockRetryPolicy()
		cfg.LockRetry = &policy
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Password == nil {
		cfg.Password = GeneratePassword
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	return &BatchExecutor{
		store:     store,
		refs:      refs,
		registrar: registrar,
		cfg:       cfg,
		logger:    logger,
	}
}

type jobRun struct {
	job     domain.ImportJob
	account domain.CorporateAccount
	tables  *ReferenceTables
	logger  *logrus.Entry
	success int
	failed  int
}

// Run executes the job. Jobs that are no longer QUEUED are skipped, so a
// redelivered dispatch is harmless.
func (e *BatchExecutor) Run(ctx context.Context, jobID string) error {
	logger := e.logger.WithField("job_id", jobID)

	job, err := e.store.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			logger.Warn("bulk import: queued job no longer exists")
			return err
		}
		e.fail(ctx, jobID, logger)
		return fmt.Errorf("load job: %w", err)
	}
	if job.Status != domain.JobStatusQueued {
		logger.WithField("status", job.Status).Info("bulk import: job not queued, skipping")
		return nil
	}

	account, err := e.refs.ResolveAccount(ctx, job.CreatedByID)
	if err != nil {
		logger.WithError(err).WithField("user_id", job.CreatedByID).Error("bulk import: corporate account not resolved")
		e.fail(ctx, job.ID, logger)
		return fmt.Errorf("resolve account: %w", err)
	}
	logger = logger.WithField("account_id", account.ID)

	release, err := e.acquireLock(ctx, account.ID, logger)
	if err != nil {
		return fmt.Errorf("acquire account lock: %w", err)
	}
	defer release()

	if err := e.store.TransitionStatus(ctx, job.ID, domain.JobStatusQueued, domain.JobStatusProcessing); err != nil {
		if errors.Is(err, domain.ErrStatusConflict) {
			logger.Info("bulk import: job claimed by another worker, skipping")
			return nil
		}
		return fmt.Errorf("mark processing: %w", err)
	}
	metrics.RecordJob(string(domain.JobStatusProcessing))

	tables, err := e.loadTables(ctx, account.ID)
	if err != nil {
		logger.WithError(err).Error("bulk import: reference data not loaded")
		e.fail(ctx, job.ID, logger)
		return err
	}

	rows, err := e.store.ListRows(ctx, job.ID, domain.RowStatusReady)
	if err != nil {
		logger.WithError(err).Error("bulk import: ready rows not loaded")
		e.fail(ctx, job.ID, logger)
		return fmt.Errorf("list ready rows: %w", err)
	}

	run := &jobRun{job: *job, account: *account, tables: tables, logger: logger}
	batches := PlanBatches(rows, tables)
	logger.WithFields(logrus.Fields{
		"rows":    len(rows),
		"batches": len(batches),
	}).Info("bulk import processing started")

	for _, batch := range batches {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.runBatch(ctx, run, batch); err != nil {
			return err
		}
	}

	if err := e.store.FinishJob(ctx, job.ID, domain.JobStatusCompleted, e.cfg.Now()); err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	metrics.RecordJob(string(domain.JobStatusCompleted))
	logger.WithFields(logrus.Fields{
		"success": run.success,
		"failed":  run.failed,
	}).Info("bulk import completed")

	return nil
}

// acquireLock leaves the job QUEUED on failure. Errors wrapping
// domain.ErrLockNotAcquired tell the dispatcher to hand the job out again.
func (e *BatchExecutor) acquireLock(ctx context.Context, accountID int64, logger *logrus.Entry) (func(), error) {
	var release func()
	err := e.cfg.LockRetry.Do(ctx, func() error {
		var acquireErr error
		release, acquireErr = e.cfg.Locker.Acquire(ctx, accountID)
		return acquireErr
	}, func(err error, wait time.Duration) {
		logger.WithError(err).WithField("wait", wait.String()).Warn("bulk import: account lock unavailable, retrying")
	})
	if err != nil {
		return nil, err
	}
	return release, nil
}

func (e *BatchExecutor) loadTables(ctx context.Context, accountID int64) (*ReferenceTables, error) {
	programs, err := e.refs.ListPrograms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	groups, err := e.refs.ListGroups(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return NewReferenceTables(programs, groups, nil), nil
}

// runBatch only returns an error when processing must stop, which is
// context cancellation. Group and header failures fail the batch rows.
func (e *BatchExecutor) runBatch(ctx context.Context, run *jobRun, batch Batch) error {
	logger := run.logger.WithFields(logrus.Fields{
		"batch_key": batch.Key,
		"rows":      batch.Size(),
	})

	defer func() {
		if err := e.store.IncrementProcessed(ctx, run.job.ID, batch.Size()); err != nil {
			logger.WithError(err).Error("bulk import: progress update failed")
		}
	}()

	group, err := e.resolveGroup(ctx, run, batch)
	if err != nil {
		logger.WithError(err).Error("bulk import: group not resolved")
		e.failBatch(ctx, run, batch, groupFailedReason, logger)
		metrics.RecordBatch("group_failed")
		return nil
	}

	header, err := e.createHeader(ctx, run, batch, group)
	if err != nil {
		logger.WithError(err).Error("bulk import: assessment header not created")
		e.failBatch(ctx, run, batch, headerFailedReason, logger)
		metrics.RecordBatch("header_failed")
		return nil
	}

	for _, row := range batch.Rows {
		e.registerRow(ctx, run, row, group, header, logger)

		if !sleepWithContext(ctx, e.cfg.RowDelay) {
			return ctx.Err()
		}
	}

	metrics.RecordBatch("ok")
	return nil
}

func (e *BatchExecutor) resolveGroup(ctx context.Context, run *jobRun, batch Batch) (domain.Group, error) {
	if batch.GroupID > 0 {
		if g, ok := run.tables.Group(batch.GroupID); ok {
			return g, nil
		}
		return domain.Group{}, fmt.Errorf("%w: %d", domain.ErrGroupNotFound, batch.GroupID)
	}
	if g, ok := run.tables.GroupByName(batch.GroupName); ok {
		return g, nil
	}

	created, err := e.refs.CreateGroup(ctx, domain.Group{
		Name:               batch.GroupName,
		CorporateAccountID: run.account.ID,
		CreatedByUserID:    run.job.CreatedByID,
	})
	if err != nil {
		return domain.Group{}, err
	}
	run.tables.AddGroup(created)
	return created, nil
}

func (e *BatchExecutor) createHeader(ctx context.Context, run *jobRun, batch Batch, group domain.Group) (domain.AssessmentHeader, error) {
	if _, ok := run.tables.Program(batch.ProgramID); !ok {
		return domain.AssessmentHeader{}, fmt.Errorf("%w: %d", domain.ErrProgramNotFound, batch.ProgramID)
	}

	return e.refs.CreateAssessmentHeader(ctx, domain.AssessmentHeader{
		GroupID:            group.ID,
		ProgramID:          batch.ProgramID,
		ValidFrom:          batch.ExamStart,
		ValidTo:            batch.ExamEnd,
		TotalCandidates:    batch.Size(),
		CorporateAccountID: run.account.ID,
		CreatedByUserID:    run.job.CreatedByID,
		ImportID:           run.job.ID,
	})
}

func (e *BatchExecutor) registerRow(ctx context.Context, run *jobRun, row domain.ImportRow, group domain.Group, header domain.AssessmentHeader, logger *logrus.Entry) {
	n := row.NormalizedData
	password := n.Password
	if password == "" {
		generated, err := e.cfg.Password()
		if err != nil {
			e.finishRow(ctx, run, row, err, logger)
			return
		}
		password = generated
	}

	result, err := e.registrar.RegisterCandidate(ctx, domain.CandidateRegistration{
		FullName:           n.FullName,
		Email:              n.Email,
		Mobile:             n.Mobile,
		CountryCode:        n.CountryCode,
		Gender:             n.Gender,
		ProgramID:          header.ProgramID,
		GroupID:            group.ID,
		GroupName:          group.Name,
		GroupAssessmentID:  header.ID,
		Password:           password,
		SendEmail:          true,
		ExamStart:          header.ValidFrom,
		ExamEnd:            header.ValidTo,
		ExistingUserID:     n.ExistingUserID,
		CorporateAccountID: run.account.ID,
	}, run.job.CreatedByID)
	if err == nil && (result.ExistingUser || n.ExistingUserID != nil) {
		row.MarkSuccess(domain.ResultLinkedExisting)
		e.saveRow(ctx, run, row, logger)
		return
	}
	e.finishRow(ctx, run, row, err, logger)
}

func (e *BatchExecutor) finishRow(ctx context.Context, run *jobRun, row domain.ImportRow, err error, logger *logrus.Entry) {
	if err != nil {
		reason := truncateReason(err.Error())
		if reason == "" {
			reason = "Unknown error"
		}
		row.MarkFailed(reason, domain.ResultFailedRegistration)
		logger.WithError(err).WithField("row_index", row.RowIndex).Warn("bulk import: row registration failed")
	} else {
		row.MarkSuccess(domain.ResultCreated)
	}
	e.saveRow(ctx, run, row, logger)
}

func (e *BatchExecutor) saveRow(ctx context.Context, run *jobRun, row domain.ImportRow, logger *logrus.Entry) {
	if row.Status == domain.RowStatusSuccess {
		run.success++
	} else {
		run.failed++
	}
	metrics.RecordRow(string(row.Status))

	if err := e.store.SaveRowOutcomes(ctx, []domain.ImportRow{row}); err != nil {
		logger.WithError(err).WithField("row_index", row.RowIndex).Error("bulk import: row outcome not saved")
	}
}

func (e *BatchExecutor) failBatch(ctx context.Context, run *jobRun, batch Batch, reason string, logger *logrus.Entry) {
	rows := make([]domain.ImportRow, 0, batch.Size())
	for _, row := range batch.Rows {
		row.MarkFailed(reason, domain.ResultFailedDB)
		rows = append(rows, row)
		run.failed++
		metrics.RecordRow(string(row.Status))
	}
	if err := e.store.SaveRowOutcomes(ctx, rows); err != nil {
		logger.WithError(err).Error("bulk import: batch outcomes not saved")
	}
}

func (e *BatchExecutor) fail(ctx context.Context, jobID string, logger *logrus.Entry) {
	if err := e.store.FinishJob(ctx, jobID, domain.JobStatusFailed, e.cfg.Now()); err != nil {
		logger.WithError(err).Error("bulk import: mark failed")
		return
	}
	metrics.RecordJob(string(domain.JobStatusFailed))
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func truncateReason(reason string) string {
	const maxLen = 1000
	reason = strings.TrimSpace(reason)
	if len(reason) <= maxLen {
		return reason
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(reason[cut]) {
		cut--
	}
	return reason[:cut]
}
