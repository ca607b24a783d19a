package bulkimport

import "time"

type RowStatus string

const (
	RowStatusPending           RowStatus = "PENDING"
	RowStatusReady             RowStatus = "READY"
	RowStatusNeedsConfirmation RowStatus = "NEEDS_CONFIRMATION"
	RowStatusInvalid           RowStatus = "INVALID"
	RowStatusSuccess           RowStatus = "SUCCESS"
	RowStatusFailed            RowStatus = "FAILED"
)

type ResultType string

const (
	ResultCreated            ResultType = "CREATED"
	ResultLinkedExisting     ResultType = "LINKED_EXISTING"
	ResultFailedDB           ResultType = "FAILED_DB"
	ResultFailedRegistration ResultType = "FAILED_REGISTRATION"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
	GenderOthers Gender = "OTHERS"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther, GenderOthers:
		return true
	}
	return false
}

// RawFields is the verbatim header -> value mapping of one CSV record.
type RawFields map[string]string

// NormalizedRow holds the values the validator accepted, in the shape the
// executor consumes them.
type NormalizedRow struct {
	FullName       string     `json:"full_name,omitempty"`
	Email          string     `json:"email,omitempty"`
	Mobile         string     `json:"mobile,omitempty"`
	CountryCode    string     `json:"country_code,omitempty"`
	Gender         Gender     `json:"gender,omitempty"`
	ProgramRef     string     `json:"program_ref,omitempty"`
	ProgramID      int64      `json:"program_id,omitempty"`
	GroupName      string     `json:"group_name,omitempty"`
	Password       string     `json:"password,omitempty"`
	ExamStart      *time.Time `json:"exam_start,omitempty"`
	ExamEnd        *time.Time `json:"exam_end,omitempty"`
	ExistingUserID *int64     `json:"existing_user_id,omitempty"`
}

type OverrideData struct {
	GroupID int64 `json:"group_id"`
}

type ImportRow struct {
	ID              string
	ImportID        string
	RowIndex        int
	RawData         RawFields
	NormalizedData  NormalizedRow
	Status          RowStatus
	ErrorMessage    *string
	ResultType      *ResultType
	GroupMatchScore *int
	MatchedGroupID  *int64
	Overridden      bool
	OverrideData    *OverrideData
}

func (r *ImportRow) MarkInvalid(reason string) {
	r.Status = RowStatusInvalid
	r.ErrorMessage = &reason
}

func (r *ImportRow) MarkSuccess(result ResultType) {
	r.Status = RowStatusSuccess
	r.ErrorMessage = nil
	r.ResultType = &result
}

func (r *ImportRow) MarkFailed(reason string, result ResultType) {
	r.Status = RowStatusFailed
	r.ErrorMessage = &reason
	r.ResultType = &result
}

// Executed reports whether the row went through registration.
func (r ImportRow) Executed() bool {
	return r.Status == RowStatusSuccess || r.Status == RowStatusFailed
}

// ClearPassword removes the uploaded password from both payloads. RawData is
// copied, never modified in place.
func (r *ImportRow) ClearPassword() {
	r.NormalizedData.Password = ""
	raw := make(RawFields, len(r.RawData))
	for k, v := range r.RawData {
		if NormalizeKey(k) == "password" {
			v = ""
		}
		raw[k] = v
	}
	r.RawData = raw
}

// Override is a caller decision for one row: route it to GroupID.
type Override struct {
	RowIndex int
	GroupID  int64
}
