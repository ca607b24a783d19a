package repository_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
	"github.com/mohammadpnp/candidate-import/internal/infrastructure/db/models"
	"github.com/mohammadpnp/candidate-import/internal/infrastructure/repository"
)

func seedReferences(t *testing.T, db *gorm.DB) {
	t.Helper()

	corporateID := int64(10)
	require.NoError(t, db.Create(&models.CorporateAccount{ID: 10, UserID: 7, AvailableCredits: 40, TotalCredits: 50}).Error)
	require.NoError(t, db.Create([]models.User{
		{ID: 7, Email: "owner@corp.example", Mobile: "9000000007"},
		{ID: 8, Email: "Sub@Corp.example", Mobile: "9000000008", CorporateID: &corporateID},
		{ID: 9, Email: "loner@example.com", Mobile: "9000000009"},
	}).Error)
	require.NoError(t, db.Create([]models.Program{
		{ID: 2, Code: "CXO", Name: "CXO General"},
		{ID: 1, Code: "EMP", Name: "Employee"},
	}).Error)
	require.NoError(t, db.Create([]models.Group{
		{ID: 4, Name: "Batch A", CorporateAccountID: 10, CreatedByUserID: 7},
		{ID: 5, Name: "Other Corp", CorporateAccountID: 11, CreatedByUserID: 3},
	}).Error)
}

func TestReferenceStoreResolveAccount(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newSQLiteDB(t)
	seedReferences(t, db)
	store := repository.NewReferenceStore(db)

	owner, err := store.ResolveAccount(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(10), owner.ID)
	assert.Equal(t, 40, owner.AvailableCredits)

	sub, err := store.ResolveAccount(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(10), sub.ID)

	_, err = store.ResolveAccount(ctx, 9)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = store.ResolveAccount(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	credits, err := store.AvailableCredits(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 40, credits)

	_, err = store.AvailableCredits(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestReferenceStoreLookups(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newSQLiteDB(t)
	seedReferences(t, db)
	store := repository.NewReferenceStore(db)

	programs, err := store.ListPrograms(ctx)
	require.NoError(t, err)
	require.Len(t, programs, 2)
	assert.Equal(t, "EMP", programs[0].Code)

	groups, err := store.ListGroups(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []domain.Group{{ID: 4, Name: "Batch A", CorporateAccountID: 10, CreatedByUserID: 7}}, groups)

	users, err := store.FindUsersByEmailOrMobile(ctx, []string{"sub@corp.example"}, []string{"9000000009"})
	require.NoError(t, err)
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	assert.Equal(t, []int64{8, 9}, ids)

	onlyMobile, err := store.FindUsersByEmailOrMobile(ctx, nil, []string{"9000000007"})
	require.NoError(t, err)
	require.Len(t, onlyMobile, 1)
	assert.Equal(t, "owner@corp.example", onlyMobile[0].Email)

	none, err := store.FindUsersByEmailOrMobile(ctx, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReferenceStoreCreatesGroupAndHeader(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newSQLiteDB(t)
	seedReferences(t, db)
	store := repository.NewReferenceStore(db)

	group, err := store.CreateGroup(ctx, domain.Group{Name: "New Cohort", CorporateAccountID: 10, CreatedByUserID: 7})
	require.NoError(t, err)
	assert.NotZero(t, group.ID)
	assert.Equal(t, "New Cohort", group.Name)

	from := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	header, err := store.CreateAssessmentHeader(ctx, domain.AssessmentHeader{
		GroupID:            group.ID,
		ProgramID:          1,
		ValidFrom:          from,
		ValidTo:            from.Add(24 * time.Hour),
		TotalCandidates:    3,
		CorporateAccountID: 10,
		CreatedByUserID:    7,
		ImportID:           "job-1",
	})
	require.NoError(t, err)
	assert.NotZero(t, header.ID)

	var stored models.GroupAssessment
	require.NoError(t, db.First(&stored, "id = ?", header.ID).Error)
	assert.Equal(t, "NOT_STARTED", stored.Status)
	assert.Equal(t, 3, stored.TotalCandidates)
	assert.Equal(t, models.GroupAssessmentMetadata{ImportID: "job-1", Source: "BULK_UPLOAD"}, stored.Metadata)

	var active models.Group
	require.NoError(t, db.First(&active, "id = ?", group.ID).Error)
	assert.True(t, active.IsActive)
}
