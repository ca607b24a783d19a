package bulkimport

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
	"github.com/mohammadpnp/candidate-import/internal/logging"
	"github.com/mohammadpnp/candidate-import/internal/metrics"
	"github.com/sirupsen/logrus"
)

type ExecuteInput struct {
	ImportID  string
	Overrides []domain.Override
}

type ExecuteOutput struct {
	JobID            string           `json:"job_id"`
	Status           domain.JobStatus `json:"status"`
	AppliedOverrides int              `json:"applied_overrides"`
	IgnoredOverrides int              `json:"ignored_overrides"`
}

type Execute interface {
	Execute(ctx context.Context, in ExecuteInput) (ExecuteOutput, error)
}

// Dispatcher hands a queued job to whatever runs the batch executor.
type Dispatcher interface {
	Dispatch(ctx context.Context, jobID string) error
}

type executeRepo interface {
	GetJob(ctx context.Context, jobID string) (*domain.ImportJob, error)
	ApplyOverride(ctx context.Context, jobID string, override domain.Override) (bool, error)
	TransitionStatus(ctx context.Context, jobID string, from, to domain.JobStatus) error
}

type executeReferences interface {
	ResolveAccount(ctx context.Context, userID int64) (*domain.CorporateAccount, error)
	ListGroups(ctx context.Context, accountID int64) ([]domain.Group, error)
}

type execute struct {
	repo       executeRepo
	refs       executeReferences
	dispatcher Dispatcher
	logger     *logrus.Entry
}

func NewExecute(repo executeRepo, refs executeReferences, dispatcher Dispatcher, logger *logrus.Entry) Execute {
	if logger == nil {
		logger = logging.Nop()
	}
	return &execute{repo: repo, refs: refs, dispatcher: dispatcher, logger: logger}
}

func (uc *execute) Execute(ctx context.Context, in ExecuteInput) (ExecuteOutput, error) {
	importID := strings.TrimSpace(in.ImportID)
	if importID == "" {
		return ExecuteOutput{}, ErrImportNotFound
	}

	job, err := uc.repo.GetJob(ctx, importID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			return ExecuteOutput{}, ErrImportNotFound
		}
		return ExecuteOutput{}, fmt.Errorf("%w: load job: %v", ErrExecuteImport, err)
	}
	if job.Status != domain.JobStatusDraft {
		return ExecuteOutput{}, fmt.Errorf("%w: job %s is %s", ErrInvalidState, job.ID, job.Status)
	}

	out := ExecuteOutput{JobID: job.ID, Status: domain.JobStatusQueued}
	owned, err := uc.ownedGroups(ctx, job, in.Overrides)
	if err != nil {
		return ExecuteOutput{}, err
	}
	for _, override := range in.Overrides {
		if override.RowIndex <= 0 {
			out.IgnoredOverrides++
			continue
		}
		if _, ok := owned[override.GroupID]; !ok {
			out.IgnoredOverrides++
			continue
		}
		applied, err := uc.repo.ApplyOverride(ctx, job.ID, override)
		if err != nil {
			return ExecuteOutput{}, fmt.Errorf("%w: apply override for row %d: %v", ErrExecuteImport, override.RowIndex, err)
		}
		if applied {
			out.AppliedOverrides++
		} else {
			out.IgnoredOverrides++
		}
	}
	if out.IgnoredOverrides > 0 {
		uc.logger.WithFields(logrus.Fields{
			"job_id":  job.ID,
			"ignored": out.IgnoredOverrides,
		}).Warn("bulk import: overrides ignored for unknown rows or groups")
	}

	if err := uc.repo.TransitionStatus(ctx, job.ID, domain.JobStatusDraft, domain.JobStatusQueued); err != nil {
		if errors.Is(err, domain.ErrStatusConflict) {
			return ExecuteOutput{}, fmt.Errorf("%w: job %s was executed concurrently", ErrInvalidState, job.ID)
		}
		return ExecuteOutput{}, fmt.Errorf("%w: queue job: %v", ErrExecuteImport, err)
	}
	metrics.RecordJob(string(domain.JobStatusQueued))

	if err := uc.dispatcher.Dispatch(ctx, job.ID); err != nil {
		// Put the job back so the caller can retry execute.
		if rollbackErr := uc.repo.TransitionStatus(ctx, job.ID, domain.JobStatusQueued, domain.JobStatusDraft); rollbackErr != nil {
			uc.logger.WithError(rollbackErr).WithField("job_id", job.ID).Error("bulk import: revert to draft failed")
		}
		return ExecuteOutput{}, fmt.Errorf("%w: dispatch job: %v", ErrExecuteImport, err)
	}

	uc.logger.WithFields(logrus.Fields{
		"job_id":            job.ID,
		"applied_overrides": out.AppliedOverrides,
	}).Info("bulk import queued")

	return out, nil
}

// ownedGroups returns the ids of the groups an override may point at: those
// of the job owner's corporate account.
func (uc *execute) ownedGroups(ctx context.Context, job *domain.ImportJob, overrides []domain.Override) (map[int64]struct{}, error) {
	owned := make(map[int64]struct{})
	if len(overrides) == 0 {
		return owned, nil
	}

	account, err := uc.refs.ResolveAccount(ctx, job.CreatedByID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, ErrNoAccount
		}
		return nil, fmt.Errorf("%w: resolve account: %v", ErrExecuteImport, err)
	}
	groups, err := uc.refs.ListGroups(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: list groups: %v", ErrExecuteImport, err)
	}
	for _, g := range groups {
		owned[g.ID] = struct{}{}
	}
	return owned, nil
}
