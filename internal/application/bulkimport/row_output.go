package bulkimport

import (
	"time"

	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
)

type RowOutput struct {
	RowIndex        int                  `json:"row_index"`
	Status          string               `json:"status"`
	ErrorMessage    *string              `json:"error_message"`
	ResultType      *string              `json:"result_type"`
	MatchedGroupID  *int64               `json:"matched_group_id"`
	GroupMatchScore *int                 `json:"group_match_score"`
	Overridden      bool                 `json:"overridden"`
	OverrideData    *domain.OverrideData `json:"override_data,omitempty"`
	RawData         domain.RawFields     `json:"raw_data"`
	NormalizedData  NormalizedOutput     `json:"normalized_data"`
}

// NormalizedOutput drops the password from what callers get back.
type NormalizedOutput struct {
	FullName       string `json:"full_name,omitempty"`
	Email          string `json:"email,omitempty"`
	Mobile         string `json:"mobile,omitempty"`
	CountryCode    string `json:"country_code,omitempty"`
	Gender         string `json:"gender,omitempty"`
	ProgramID      int64  `json:"program_id,omitempty"`
	GroupName      string `json:"group_name,omitempty"`
	ExamStart      string `json:"exam_start,omitempty"`
	ExamEnd        string `json:"exam_end,omitempty"`
	ExistingUserID *int64 `json:"existing_user_id,omitempty"`
}

func toRowOutput(row domain.ImportRow) RowOutput {
	out := RowOutput{
		RowIndex:        row.RowIndex,
		Status:          string(row.Status),
		ErrorMessage:    row.ErrorMessage,
		MatchedGroupID:  row.MatchedGroupID,
		GroupMatchScore: row.GroupMatchScore,
		Overridden:      row.Overridden,
		OverrideData:    row.OverrideData,
		RawData:         redactRaw(row.RawData),
	}
	if row.ResultType != nil {
		rt := string(*row.ResultType)
		out.ResultType = &rt
	}

	n := row.NormalizedData
	out.NormalizedData = NormalizedOutput{
		FullName:       n.FullName,
		Email:          n.Email,
		Mobile:         n.Mobile,
		CountryCode:    n.CountryCode,
		Gender:         string(n.Gender),
		ProgramID:      n.ProgramID,
		GroupName:      n.GroupName,
		ExistingUserID: n.ExistingUserID,
	}
	if n.ExamStart != nil {
		out.NormalizedData.ExamStart = n.ExamStart.Format(time.RFC3339)
	}
	if n.ExamEnd != nil {
		out.NormalizedData.ExamEnd = n.ExamEnd.Format(time.RFC3339)
	}
	return out
}

func toRowOutputs(rows []domain.ImportRow) []RowOutput {
	out := make([]RowOutput, 0, len(rows))
	for _, row := range rows {
		out = append(out, toRowOutput(row))
	}
	return out
}

func redactRaw(raw domain.RawFields) domain.RawFields {
	redacted := make(domain.RawFields, len(raw))
	for k, v := range raw {
		if domain.NormalizeKey(k) == "password" && v != "" {
			v = "********"
		}
		redacted[k] = v
	}
	return redacted
}
