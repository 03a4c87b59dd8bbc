package category

import "time"

type DataCategory struct {
	ID          int64     `gorm:"primaryKey"`
	Key         string    `gorm:"column:key;uniqueIndex;not null"`
	Label       string    `gorm:"column:label;not null"`
	Description string    `gorm:"column:description"`
	IsActive    bool      `gorm:"column:is_active;not null"`
	SortOrder   int       `gorm:"column:sort_order;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (DataCategory) TableName() string {
	return "data_categories"
}
