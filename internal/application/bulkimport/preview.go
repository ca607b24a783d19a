package bulkimport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
	"github.com/mohammadpnp/candidate-import/internal/logging"
	"github.com/mohammadpnp/candidate-import/internal/metrics"
	"github.com/sirupsen/logrus"
)

const defaultPreviewRows = 100

type PreviewInput struct {
	File     []byte
	Filename string
	UserID   int64
}

type PreviewSummary struct {
	Total             int `json:"total"`
	Valid             int `json:"valid"`
	Invalid           int `json:"invalid"`
	NeedsConfirmation int `json:"needs_confirmation"`
}

type PreviewOutput struct {
	ImportID string         `json:"import_id"`
	Summary  PreviewSummary `json:"summary"`
	Rows     []RowOutput    `json:"rows"`
}

type Preview interface {
	Execute(ctx context.Context, in PreviewInput) (PreviewOutput, error)
}

type previewReferences interface {
	ResolveAccount(ctx context.Context, userID int64) (*domain.CorporateAccount, error)
	ListPrograms(ctx context.Context) ([]domain.Program, error)
	ListGroups(ctx context.Context, accountID int64) ([]domain.Group, error)
	FindUsersByEmailOrMobile(ctx context.Context, emails, mobiles []string) ([]domain.ExistingUser, error)
}

// DraftWriter persists a new DRAFT job with all of its rows at once.
type DraftWriter interface {
	CreateDraft(ctx context.Context, job *domain.ImportJob, rows []domain.ImportRow) error
}

// UploadArchive keeps the verbatim uploaded file next to its draft job.
type UploadArchive interface {
	Store(ctx context.Context, key string, data []byte) error
	Remove(ctx context.Context, key string) error
}

type PreviewConfig struct {
	PreviewRows int
	Validator   ValidatorConfig
	Archive     UploadArchive
	Logger      *logrus.Entry
	Now         func() time.Time
}

type preview struct {
	refs    previewReferences
	ledger  domain.CreditLedger
	drafts  DraftWriter
	cfg     PreviewConfig
	archive UploadArchive
	logger  *logrus.Entry
}

func NewPreview(refs previewReferences, ledger domain.CreditLedger, drafts DraftWriter, cfg PreviewConfig) Preview {
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = defaultPreviewRows
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Validator.Now == nil {
		cfg.Validator.Now = cfg.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	return &preview{
		refs:    refs,
		ledger:  ledger,
		drafts:  drafts,
		cfg:     cfg,
		archive: cfg.Archive,
		logger:  logger,
	}
}

func (uc *preview) Execute(ctx context.Context, in PreviewInput) (PreviewOutput, error) {
	if err := checkCSVFilename(in.Filename); err != nil {
		return PreviewOutput{}, err
	}
	if in.UserID <= 0 {
		return PreviewOutput{}, ErrInvalidUserID
	}

	account, err := uc.refs.ResolveAccount(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return PreviewOutput{}, ErrNoAccount
		}
		return PreviewOutput{}, fmt.Errorf("%w: resolve account: %v", ErrPreviewImport, err)
	}

	parsed, err := ParseCSV(bytes.NewReader(in.File), in.Filename)
	if err != nil {
		return PreviewOutput{}, err
	}

	available, err := uc.ledger.AvailableCredits(ctx, account.ID)
	if err != nil {
		return PreviewOutput{}, fmt.Errorf("%w: read credits: %v", ErrPreviewImport, err)
	}
	if len(parsed) > available {
		uc.logger.WithFields(logrus.Fields{
			"account_id": account.ID,
			"required":   len(parsed),
			"available":  available,
		}).Warn("bulk import rejected: insufficient credits")
		return PreviewOutput{}, fmt.Errorf("%w: you have %d credits but uploaded %d candidates", ErrInsufficientCredits, available, len(parsed))
	}

	tables, err := uc.loadTables(ctx, account.ID, parsed)
	if err != nil {
		return PreviewOutput{}, err
	}

	validator := NewRowValidator(tables, uc.cfg.Validator)

	jobID := uuid.NewString()
	rows := make([]domain.ImportRow, 0, len(parsed))
	var summary PreviewSummary
	for _, p := range parsed {
		row := validator.Validate(p)
		row.ID = uuid.NewString()
		row.ImportID = jobID

		switch row.Status {
		case domain.RowStatusReady:
			summary.Valid++
		case domain.RowStatusNeedsConfirmation:
			summary.NeedsConfirmation++
		default:
			summary.Invalid++
		}
		metrics.RecordRow(string(row.Status))
		rows = append(rows, row)
	}
	summary.Total = len(rows)

	job := &domain.ImportJob{
		ID:           jobID,
		CreatedByID:  in.UserID,
		Filename:     in.Filename,
		TotalRecords: len(rows),
		Status:       domain.JobStatusDraft,
		CreatedAt:    uc.cfg.Now(),
	}
	if err := uc.drafts.CreateDraft(ctx, job, rows); err != nil {
		return PreviewOutput{}, fmt.Errorf("%w: persist draft: %v", ErrPreviewImport, err)
	}
	metrics.RecordJob(string(domain.JobStatusDraft))

	if uc.archive != nil {
		if err := uc.archive.Store(ctx, ArchiveKey(jobID, in.Filename), in.File); err != nil {
			uc.logger.WithError(err).WithField("job_id", jobID).Warn("bulk import: archive upload failed")
		}
	}

	uc.logger.WithFields(logrus.Fields{
		"job_id":             jobID,
		"account_id":         account.ID,
		"total":              summary.Total,
		"valid":              summary.Valid,
		"invalid":            summary.Invalid,
		"needs_confirmation": summary.NeedsConfirmation,
	}).Info("bulk import draft created")

	previewCount := len(rows)
	if previewCount > uc.cfg.PreviewRows {
		previewCount = uc.cfg.PreviewRows
	}

	return PreviewOutput{
		ImportID: jobID,
		Summary:  summary,
		Rows:     toRowOutputs(rows[:previewCount]),
	}, nil
}

// loadTables fetches reference data once for the whole file: programs,
// account groups, and existing users through a single email/mobile lookup.
func (uc *preview) loadTables(ctx context.Context, accountID int64, parsed []ParsedRow) (*ReferenceTables, error) {
	programs, err := uc.refs.ListPrograms(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list programs: %v", ErrPreviewImport, err)
	}
	groups, err := uc.refs.ListGroups(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: list groups: %v", ErrPreviewImport, err)
	}

	emails := make([]string, 0, len(parsed))
	mobiles := make([]string, 0, len(parsed))
	for _, p := range parsed {
		fields := newRowFields(p.Fields)
		if email := domain.NormalizeEmail(fields.get(fieldEmail)); email != "" {
			emails = append(emails, email)
		}
		if mobile := domain.NormalizeMobile(fields.get(fieldMobile)); mobile != "" {
			mobiles = append(mobiles, mobile)
		}
	}

	var users []domain.ExistingUser
	if len(emails) > 0 || len(mobiles) > 0 {
		users, err = uc.refs.FindUsersByEmailOrMobile(ctx, emails, mobiles)
		if err != nil {
			return nil, fmt.Errorf("%w: find existing users: %v", ErrPreviewImport, err)
		}
	}

	return NewReferenceTables(programs, groups, users), nil
}

func ArchiveKey(jobID, filename string) string {
	return "imports/" + jobID + "/" + filepath.Base(filename)
}
