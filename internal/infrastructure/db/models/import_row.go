package models

import "time"

// NormalizedData is the jsonb payload of validated row values.
type NormalizedData struct {
	FullName       string     `json:"full_name,omitempty"`
	Email          string     `json:"email,omitempty"`
	Mobile         string     `json:"mobile,omitempty"`
	CountryCode    string     `json:"country_code,omitempty"`
	Gender         string     `json:"gender,omitempty"`
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
	ID              string            `gorm:"type:uuid;primaryKey"`
	ImportID        string            `gorm:"type:uuid;not null;uniqueIndex:idx_bulk_import_rows_import_row,priority:1"`
	RowIndex        int               `gorm:"not null;uniqueIndex:idx_bulk_import_rows_import_row,priority:2"`
	RawData         map[string]string `gorm:"type:jsonb;serializer:json;not null"`
	NormalizedData  NormalizedData    `gorm:"type:jsonb;serializer:json;not null"`
	Status          string            `gorm:"type:text;not null;index"`
	ErrorMessage    *string           `gorm:"type:text"`
	ResultType      *string           `gorm:"type:text"`
	GroupMatchScore *int
	MatchedGroupID  *int64
	Overridden      bool          `gorm:"not null;default:false"`
	OverrideData    *OverrideData `gorm:"type:jsonb;serializer:json"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (ImportRow) TableName() string {
	return "corporate_bulk_import_rows"
}
