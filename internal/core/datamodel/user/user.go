package user

import "time"

type User struct {
	ID           int64     `gorm:"primaryKey"`
	Username     string    `gorm:"column:username;uniqueIndex;not null"`
	Name         string    `gorm:"column:name;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Role         string    `gorm:"column:role;not null"`
	DepartmentID *int64    `gorm:"column:department_id;index"`
	IsActive     bool      `gorm:"column:is_active;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// Profile is a user row joined with its department name.
type Profile struct {
	ID             int64   `gorm:"column:id"`
	Username       string  `gorm:"column:username"`
	Name           string  `gorm:"column:name"`
	Role           string  `gorm:"column:role"`
	DepartmentID   *int64  `gorm:"column:department_id"`
	DepartmentName *string `gorm:"column:department_name"`
	IsActive       bool    `gorm:"column:is_active"`
}
