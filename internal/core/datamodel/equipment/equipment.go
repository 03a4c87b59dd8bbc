package equipment

import "time"

type Category struct {
	ID        int64     `gorm:"primaryKey"`
	Code      string    `gorm:"column:code;uniqueIndex;not null"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Category) TableName() string {
	return "equipment_categories"
}

type Status struct {
	ID        int64  `gorm:"primaryKey"`
	Code      string `gorm:"column:code;uniqueIndex;not null"`
	Name      string `gorm:"column:name;not null"`
	SortOrder int    `gorm:"column:sort_order;not null"`
}

func (Status) TableName() string {
	return "equipment_statuses"
}

type Equipment struct {
	ID               int64      `gorm:"primaryKey"`
	Code             string     `gorm:"column:code;uniqueIndex;not null"`
	Name             string     `gorm:"column:name;not null"`
	CategoryID       *int64     `gorm:"column:category_id;index"`
	CurrentStatusID  int64      `gorm:"column:current_status_id;not null"`
	LastStatusChange *time.Time `gorm:"column:last_status_change"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	Category      *Category `gorm:"foreignKey:CategoryID"`
	CurrentStatus *Status   `gorm:"foreignKey:CurrentStatusID"`
}

func (Equipment) TableName() string {
	return "equipment"
}

type EquipmentDepartment struct {
	EquipmentID  int64 `gorm:"column:equipment_id;primaryKey"`
	DepartmentID int64 `gorm:"column:department_id;primaryKey"`
}

func (EquipmentDepartment) TableName() string {
	return "equipment_departments"
}

type StatusChange struct {
	ID           int64     `gorm:"primaryKey"`
	EquipmentID  int64     `gorm:"column:equipment_id;index;not null"`
	FromStatusID *int64    `gorm:"column:from_status_id"`
	ToStatusID   int64     `gorm:"column:to_status_id;not null"`
	ChangedBy    *int64    `gorm:"column:changed_by"`
	Note         string    `gorm:"column:note"`
	ChangedAt    time.Time `gorm:"column:changed_at;not null"`
}

func (StatusChange) TableName() string {
	return "equipment_status_changes"
}
