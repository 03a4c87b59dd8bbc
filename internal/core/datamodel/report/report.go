package report

import "time"

type Report struct {
	ID              int64      `gorm:"primaryKey"`
	DepartmentID    int64      `gorm:"column:department_id;index;not null"`
	Category        string     `gorm:"column:category;index;not null"`
	Title           string     `gorm:"column:title;not null"`
	Notes           string     `gorm:"column:notes"`
	Value           *float64   `gorm:"column:value"`
	Unit            string     `gorm:"column:unit"`
	PeriodDate      time.Time  `gorm:"column:period_date;not null"`
	Status          string     `gorm:"column:status;index;not null"`
	SubmittedBy     int64      `gorm:"column:submitted_by;not null"`
	ReviewedBy      *int64     `gorm:"column:reviewed_by"`
	RejectionReason *string    `gorm:"column:rejection_reason"`
	SubmittedAt     time.Time  `gorm:"column:submitted_at;not null"`
	ProcessedAt     *time.Time `gorm:"column:processed_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Report) TableName() string {
	return "reports"
}
