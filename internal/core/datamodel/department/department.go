package department

import "time"

type Department struct {
	ID        int64     `gorm:"primaryKey"`
	Code      string    `gorm:"column:code;uniqueIndex;not null"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Department) TableName() string {
	return "departments"
}
