package repository

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
	"github.com/mohammadpnp/candidate-import/internal/infrastructure/db/models"
	"gorm.io/gorm"
)

const (
	headerStatusNotStarted = "NOT_STARTED"
	headerSourceBulkUpload = "BULK_UPLOAD"
)

// ReferenceStore reads accounts, programs, groups and users, and writes the
// groups and assessment headers created during execution.
type ReferenceStore struct {
	db *gorm.DB
}

func NewReferenceStore(db *gorm.DB) *ReferenceStore {
	return &ReferenceStore{db: db}
}

// ResolveAccount finds the account owned by userID, falling back to the
// account a sub-user belongs to.
func (r *ReferenceStore) ResolveAccount(ctx context.Context, userID int64) (*domain.CorporateAccount, error) {
	var account models.CorporateAccount
	err := r.db.WithContext(ctx).First(&account, "user_id = ?", userID).Error
	if err == nil {
		return toAccountDomain(account), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("get corporate account by user: %w", err)
	}

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.CorporateID == nil || *user.CorporateID == 0 {
		return nil, domain.ErrAccountNotFound
	}

	if err := r.db.WithContext(ctx).First(&account, "id = ?", *user.CorporateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get corporate account: %w", err)
	}
	return toAccountDomain(account), nil
}

func (r *ReferenceStore) AvailableCredits(ctx context.Context, accountID int64) (int, error) {
	var account models.CorporateAccount
	if err := r.db.WithContext(ctx).Select("id", "available_credits").First(&account, "id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domain.ErrAccountNotFound
		}
		return 0, fmt.Errorf("get available credits: %w", err)
	}
	return account.AvailableCredits, nil
}

func (r *ReferenceStore) ListPrograms(ctx context.Context) ([]domain.Program, error) {
	var rows []models.Program
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}

	out := make([]domain.Program, 0, len(rows))
	for _, p := range rows {
		out = append(out, domain.Program{ID: p.ID, Code: p.Code, Name: p.Name})
	}
	return out, nil
}

func (r *ReferenceStore) ListGroups(ctx context.Context, accountID int64) ([]domain.Group, error) {
	var rows []models.Group
	if err := r.db.WithContext(ctx).Where("corporate_account_id = ?", accountID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	out := make([]domain.Group, 0, len(rows))
	for _, g := range rows {
		out = append(out, toGroupDomain(g))
	}
	return out, nil
}

// FindUsersByEmailOrMobile loads every user matching any of the given emails
// (case-insensitive) or mobiles in a single query.
func (r *ReferenceStore) FindUsersByEmailOrMobile(ctx context.Context, emails, mobiles []string) ([]domain.ExistingUser, error) {
	if len(emails) == 0 && len(mobiles) == 0 {
		return nil, nil
	}

	q := r.db.WithContext(ctx).Model(&models.User{})
	switch {
	case len(emails) > 0 && len(mobiles) > 0:
		q = q.Where("LOWER(email) IN ? OR mobile IN ?", emails, mobiles)
	case len(emails) > 0:
		q = q.Where("LOWER(email) IN ?", emails)
	default:
		q = q.Where("mobile IN ?", mobiles)
	}

	var rows []models.User
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find users by email or mobile: %w", err)
	}

	out := make([]domain.ExistingUser, 0, len(rows))
	for _, u := range rows {
		out = append(out, domain.ExistingUser{ID: u.ID, Email: u.Email, Mobile: u.Mobile})
	}
	return out, nil
}

func (r *ReferenceStore) CreateGroup(ctx context.Context, group domain.Group) (domain.Group, error) {
	row := models.Group{
		Name:               group.Name,
		CorporateAccountID: group.CorporateAccountID,
		CreatedByUserID:    group.CreatedByUserID,
		IsActive:           true,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Group{}, fmt.Errorf("create group: %w", err)
	}
	return toGroupDomain(row), nil
}

func (r *ReferenceStore) CreateAssessmentHeader(ctx context.Context, header domain.AssessmentHeader) (domain.AssessmentHeader, error) {
	row := models.GroupAssessment{
		GroupID:            header.GroupID,
		ProgramID:          header.ProgramID,
		ValidFrom:          header.ValidFrom,
		ValidTo:            header.ValidTo,
		TotalCandidates:    header.TotalCandidates,
		Status:             headerStatusNotStarted,
		CorporateAccountID: header.CorporateAccountID,
		CreatedByUserID:    header.CreatedByUserID,
		Metadata: models.GroupAssessmentMetadata{
			ImportID: header.ImportID,
			Source:   headerSourceBulkUpload,
		},
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.AssessmentHeader{}, fmt.Errorf("create group assessment: %w", err)
	}

	header.ID = row.ID
	return header, nil
}

func toAccountDomain(row models.CorporateAccount) *domain.CorporateAccount {
	return &domain.CorporateAccount{
		ID:               row.ID,
		UserID:           row.UserID,
		AvailableCredits: row.AvailableCredits,
	}
}

func toGroupDomain(row models.Group) domain.Group {
	return domain.Group{
		ID:                 row.ID,
		Name:               row.Name,
		CorporateAccountID: row.CorporateAccountID,
		CreatedByUserID:    row.CreatedByUserID,
	}
}
