package user

import (
	"time"

	userDatamodel "github.com/frahmantamala/plant-dashboard/internal/core/datamodel/user"
	"github.com/frahmantamala/plant-dashboard/internal/core/identity"
)

type User struct {
	ID             int64         `json:"id" db:"id"`
	Username       string        `json:"username" db:"username"`
	Name           string        `json:"name" db:"name"`
	PasswordHash   string        `json:"-" db:"password_hash"`
	Role           identity.Role `json:"role" db:"role"`
	DepartmentID   *int64        `json:"departmentId,omitempty" db:"department_id"`
	DepartmentName *string       `json:"departmentName,omitempty" db:"department_name"`
	IsActive       bool          `json:"is_active" db:"is_active"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

func (u *User) IsActiveUser() bool {
	return u.IsActive
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		DepartmentID: u.DepartmentID,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         identity.ParseRole(u.Role),
		DepartmentID: u.DepartmentID,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
