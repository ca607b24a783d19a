package models

import "time"

// The tables below belong to the wider platform; this service reads them
// and writes groups and group assessments only.

type CorporateAccount struct {
	ID               int64 `gorm:"primaryKey"`
	UserID           int64 `gorm:"index"`
	AvailableCredits int   `gorm:"not null;default:0"`
	TotalCredits     int   `gorm:"not null;default:0"`
}

func (CorporateAccount) TableName() string {
	return "corporate_accounts"
}

type User struct {
	ID          int64  `gorm:"primaryKey"`
	Email       string `gorm:"size:320;index"`
	Mobile      string `gorm:"size:32;index"`
	CorporateID *int64
}

func (User) TableName() string {
	return "users"
}

type Program struct {
	ID   int64  `gorm:"primaryKey"`
	Code string `gorm:"size:64"`
	Name string `gorm:"size:255;not null"`
}

func (Program) TableName() string {
	return "programs"
}

type Group struct {
	ID                 int64  `gorm:"primaryKey"`
	Name               string `gorm:"size:255;not null"`
	CorporateAccountID int64  `gorm:"not null;index"`
	CreatedByUserID    int64
	IsActive           bool `gorm:"not null;default:true"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (Group) TableName() string {
	return "groups"
}

type GroupAssessmentMetadata struct {
	ImportID string `json:"importId"`
	Source   string `json:"source"`
}

type GroupAssessment struct {
	ID                 int64 `gorm:"primaryKey"`
	GroupID            int64 `gorm:"not null;index"`
	ProgramID          int64 `gorm:"not null"`
	ValidFrom          time.Time
	ValidTo            time.Time
	TotalCandidates    int    `gorm:"not null;default:0"`
	Status             string `gorm:"type:text;not null"`
	CorporateAccountID int64  `gorm:"not null;index"`
	CreatedByUserID    int64
	Metadata           GroupAssessmentMetadata `gorm:"type:jsonb;serializer:json"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (GroupAssessment) TableName() string {
	return "group_assessments"
}
