package bulkimport

import (
	"context"
	"time"
)

// ImportStore owns the lifetime of ImportJob and ImportRow records.
type ImportStore interface {
	CreateDraft(ctx context.Context, job *ImportJob, rows []ImportRow) error
	GetJob(ctx context.Context, jobID string) (*ImportJob, error)
	TransitionStatus(ctx context.Context, jobID string, from, to JobStatus) error
	ApplyOverride(ctx context.Context, jobID string, override Override) (bool, error)
	ListRows(ctx context.Context, jobID string, statuses ...RowStatus) ([]ImportRow, error)
	SaveRowOutcomes(ctx context.Context, rows []ImportRow) error
	IncrementProcessed(ctx context.Context, jobID string, delta int) error
	FinishJob(ctx context.Context, jobID string, status JobStatus, finishedAt time.Time) error
	CountRows(ctx context.Context, jobID string) (RowCounts, error)
	ListJobIDsByStatus(ctx context.Context, status JobStatus) ([]string, error)
	DeleteDraftsBefore(ctx context.Context, cutoff time.Time) ([]ImportJob, error)
}

// ReferenceStore exposes programs, groups, users and accounts owned by the
// rest of the platform.
type ReferenceStore interface {
	ResolveAccount(ctx context.Context, userID int64) (*CorporateAccount, error)
	ListPrograms(ctx context.Context) ([]Program, error)
	ListGroups(ctx context.Context, accountID int64) ([]Group, error)
	FindUsersByEmailOrMobile(ctx context.Context, emails, mobiles []string) ([]ExistingUser, error)
	CreateGroup(ctx context.Context, group Group) (Group, error)
	CreateAssessmentHeader(ctx context.Context, header AssessmentHeader) (AssessmentHeader, error)
}

type CreditLedger interface {
	AvailableCredits(ctx context.Context, accountID int64) (int, error)
}

// CandidateRegistrar creates user, registration, assessment session and the
// credit debit for one candidate as a single local transaction.
type CandidateRegistrar interface {
	RegisterCandidate(ctx context.Context, candidate CandidateRegistration, corporateUserID int64) (RegistrationResult, error)
}
