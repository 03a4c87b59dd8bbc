package user

import (
	"time"

	"github.com/frahmantamala/plant-dashboard/internal/core/identity"
)

// CreateUserDTO is used by the seeder and admin tooling.
type CreateUserDTO struct {
	Username     string `json:"username" validate:"required,min=3,max=64"`
	Name         string `json:"name" validate:"required,max=120"`
	Password     string `json:"password" validate:"required,min=8,max=128"`
	Role         string `json:"role" validate:"required,oneof=ADMIN PLANNER TECHNICIAN WORKER"`
	DepartmentID *int64 `json:"department_id,omitempty"`
}

// ProfileResponse is returned by GET /api/v1/users/me
type ProfileResponse struct {
	ID             int64         `json:"id"`
	Username       string        `json:"username"`
	Name           string        `json:"name"`
	Role           identity.Role `json:"role"`
	DepartmentID   *int64        `json:"departmentId,omitempty"`
	DepartmentName *string       `json:"departmentName,omitempty"`
	SessionExpires time.Time     `json:"sessionExpiresAt"`
}
