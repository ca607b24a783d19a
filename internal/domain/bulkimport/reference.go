package bulkimport

import "time"

type CorporateAccount struct {
	ID               int64
	UserID           int64
	AvailableCredits int
}

type Program struct {
	ID   int64
	Code string
	Name string
}

// Group is a named cohort scoped to one corporate account.
type Group struct {
	ID                 int64
	Name               string
	CorporateAccountID int64
	CreatedByUserID    int64
}

type ExistingUser struct {
	ID     int64
	Email  string
	Mobile string
}

// AssessmentHeader is the shared assessment window of one batch.
type AssessmentHeader struct {
	ID                 int64
	GroupID            int64
	ProgramID          int64
	ValidFrom          time.Time
	ValidTo            time.Time
	TotalCandidates    int
	CorporateAccountID int64
	CreatedByUserID    int64
	ImportID           string
}

// CandidateRegistration is the payload handed to the registration service
// for one validated row.
type CandidateRegistration struct {
	FullName           string
	Email              string
	Mobile             string
	CountryCode        string
	Gender             Gender
	ProgramID          int64
	GroupID            int64
	GroupName          string
	GroupAssessmentID  int64
	Password           string
	SendEmail          bool
	ExamStart          time.Time
	ExamEnd            time.Time
	ExistingUserID     *int64
	CorporateAccountID int64
}

type RegistrationResult struct {
	UserID         int64
	RegistrationID int64
	SessionID      int64
	ExistingUser   bool
}
