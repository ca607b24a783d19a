package bulkimport_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
)

type fakeStore struct {
	mu   sync.Mutex
	jobs map[string]*domain.ImportJob
	rows map[string][]domain.ImportRow

	createErr     error
	transitions   []string
	finishedAt    map[string]time.Time
	increments    []int
	saveRowsCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		jobs:       make(map[string]*domain.ImportJob),
		rows:       make(map[string][]domain.ImportRow),
		finishedAt: make(map[string]time.Time),
	}
}

func (s *fakeStore) CreateDraft(ctx context.Context, job *domain.ImportJob, rows []domain.ImportRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	copied := *job
	s.jobs[job.ID] = &copied
	s.rows[job.ID] = append([]domain.ImportRow(nil), rows...)
	return nil
}

func (s *fakeStore) GetJob(ctx context.Context, jobID string) (*domain.ImportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

func (s *fakeStore) TransitionStatus(ctx context.Context, jobID string, from, to domain.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return domain.ErrJobNotFound
	}
	if job.Status != from {
		return domain.ErrStatusConflict
	}
	job.Status = to
	s.transitions = append(s.transitions, string(from)+"->"+string(to))
	return nil
}

func (s *fakeStore) ApplyOverride(ctx context.Context, jobID string, override domain.Override) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.rows[jobID]
	for i := range rows {
		if rows[i].RowIndex != override.RowIndex {
			continue
		}
		if rows[i].Status != domain.RowStatusReady && rows[i].Status != domain.RowStatusNeedsConfirmation {
			return false, nil
		}
		groupID := override.GroupID
		rows[i].Status = domain.RowStatusReady
		rows[i].MatchedGroupID = &groupID
		rows[i].Overridden = true
		rows[i].OverrideData = &domain.OverrideData{GroupID: groupID}
		return true, nil
	}
	return false, nil
}

func (s *fakeStore) ListRows(ctx context.Context, jobID string, statuses ...domain.RowStatus) ([]domain.ImportRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ImportRow, 0)
	for _, row := range s.rows[jobID] {
		if len(statuses) > 0 && !hasStatus(statuses, row.Status) {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RowIndex < out[j].RowIndex })
	return out, nil
}

func hasStatus(statuses []domain.RowStatus, status domain.RowStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (s *fakeStore) SaveRowOutcomes(ctx context.Context, rows []domain.ImportRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveRowsCalls++
	for _, updated := range rows {
		stored := s.rows[updated.ImportID]
		for i := range stored {
			if stored[i].RowIndex == updated.RowIndex {
				stored[i] = updated
			}
		}
	}
	return nil
}

func (s *fakeStore) IncrementProcessed(ctx context.Context, jobID string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return domain.ErrJobNotFound
	}
	job.ProcessedCount += delta
	s.increments = append(s.increments, delta)
	return nil
}

func (s *fakeStore) FinishJob(ctx context.Context, jobID string, status domain.JobStatus, finishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return domain.ErrJobNotFound
	}
	job.Status = status
	at := finishedAt
	job.CompletedAt = &at
	s.finishedAt[jobID] = finishedAt
	return nil
}

func (s *fakeStore) CountRows(ctx context.Context, jobID string) (domain.RowCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var counts domain.RowCounts
	for _, row := range s.rows[jobID] {
		switch row.Status {
		case domain.RowStatusSuccess:
			counts.Success++
		case domain.RowStatusFailed:
			counts.Failed++
		}
	}
	return counts, nil
}

func (s *fakeStore) ListJobIDsByStatus(ctx context.Context, status domain.JobStatus) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0)
	for id, job := range s.jobs {
		if job.Status == status {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *fakeStore) DeleteDraftsBefore(ctx context.Context, cutoff time.Time) ([]domain.ImportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := make([]domain.ImportJob, 0)
	for id, job := range s.jobs {
		if job.Status == domain.JobStatusDraft && job.CreatedAt.Before(cutoff) {
			deleted = append(deleted, *job)
			delete(s.jobs, id)
			delete(s.rows, id)
		}
	}
	return deleted, nil
}

func (s *fakeStore) job(id string) domain.ImportJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.jobs[id]
}

func (s *fakeStore) putJob(job domain.ImportJob, rows ...domain.ImportRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = &job
	for i := range rows {
		rows[i].ImportID = job.ID
	}
	s.rows[job.ID] = rows
}

type fakeRefs struct {
	mu sync.Mutex

	account    *domain.CorporateAccount
	accountErr error
	programs   []domain.Program
	groups     []domain.Group
	users      []domain.ExistingUser

	createGroupErr error
	headerErr      func(domain.AssessmentHeader) error

	createdGroups []domain.Group
	headers       []domain.AssessmentHeader
	userLookups   int
	nextID        int64
}

func defaultPrograms() []domain.Program {
	return []domain.Program{
		{ID: 1, Code: "EMP", Name: "Employee"},
		{ID: 2, Code: "CXO", Name: "CXO General"},
		{ID: 3, Code: "LEAD", Name: "Leadership"},
	}
}

func newFakeRefs() *fakeRefs {
	return &fakeRefs{
		account:  &domain.CorporateAccount{ID: 10, UserID: 7, AvailableCredits: 100},
		programs: defaultPrograms(),
		nextID:   1000,
	}
}

func (r *fakeRefs) ResolveAccount(ctx context.Context, userID int64) (*domain.CorporateAccount, error) {
	if r.accountErr != nil {
		return nil, r.accountErr
	}
	if r.account == nil {
		return nil, domain.ErrAccountNotFound
	}
	copied := *r.account
	return &copied, nil
}

func (r *fakeRefs) ListPrograms(ctx context.Context) ([]domain.Program, error) {
	return r.programs, nil
}

func (r *fakeRefs) ListGroups(ctx context.Context, accountID int64) ([]domain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Group(nil), r.groups...), nil
}

func (r *fakeRefs) FindUsersByEmailOrMobile(ctx context.Context, emails, mobiles []string) ([]domain.ExistingUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userLookups++
	return r.users, nil
}

func (r *fakeRefs) CreateGroup(ctx context.Context, group domain.Group) (domain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createGroupErr != nil {
		return domain.Group{}, r.createGroupErr
	}
	r.nextID++
	group.ID = r.nextID
	r.createdGroups = append(r.createdGroups, group)
	r.groups = append(r.groups, group)
	return group, nil
}

func (r *fakeRefs) CreateAssessmentHeader(ctx context.Context, header domain.AssessmentHeader) (domain.AssessmentHeader, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.headerErr != nil {
		if err := r.headerErr(header); err != nil {
			return domain.AssessmentHeader{}, err
		}
	}
	r.nextID++
	header.ID = r.nextID
	r.headers = append(r.headers, header)
	return header, nil
}

type fakeLedger struct {
	credits int
	err     error
}

func (l fakeLedger) AvailableCredits(ctx context.Context, accountID int64) (int, error) {
	return l.credits, l.err
}

type fakeRegistrar struct {
	mu    sync.Mutex
	calls []domain.CandidateRegistration
	fn    func(call int, c domain.CandidateRegistration) (domain.RegistrationResult, error)
}

func (r *fakeRegistrar) RegisterCandidate(ctx context.Context, c domain.CandidateRegistration, corporateUserID int64) (domain.RegistrationResult, error) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	call := len(r.calls)
	r.mu.Unlock()
	if r.fn != nil {
		return r.fn(call, c)
	}
	return domain.RegistrationResult{UserID: int64(call)}, nil
}

func (r *fakeRegistrar) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type fakeDispatcher struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, jobID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.ids = append(d.ids, jobID)
	return nil
}

type fakeArchive struct {
	mu       sync.Mutex
	stored   map[string][]byte
	removed  []string
	storeErr error
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{stored: make(map[string][]byte)}
}

func (a *fakeArchive) Store(ctx context.Context, key string, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.storeErr != nil {
		return a.storeErr
	}
	a.stored[key] = data
	return nil
}

func (a *fakeArchive) Remove(ctx context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.removed = append(a.removed, key)
	delete(a.stored, key)
	return nil
}

var errBoom = errors.New("boom")

const csvHeader = "FullName,Email,Mobile,CountryCode,Gender,ProgramId,GroupName,Password,ExamStart,ExamEnd"

// fixedNow is the clock every test validator uses; exam dates below are after it.
var fixedNow = time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC)

func csvFile(lines ...string) []byte {
	return []byte(csvHeader + "\n" + strings.Join(lines, "\n") + "\n")
}
