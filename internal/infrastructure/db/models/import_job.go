package models

import "time"

type ImportJob struct {
	ID             string    `gorm:"type:uuid;primaryKey"`
	CreatedBy      int64     `gorm:"not null;index"`
	Filename       string    `gorm:"type:text;not null"`
	TotalRecords   int       `gorm:"not null;default:0"`
	ProcessedCount int       `gorm:"not null;default:0"`
	Status         string    `gorm:"type:text;not null;index:idx_bulk_imports_status_created,priority:1"`
	CreatedAt      time.Time `gorm:"index:idx_bulk_imports_status_created,priority:2"`
	CompletedAt    *time.Time
}

func (ImportJob) TableName() string {
	return "corporate_bulk_imports"
}
