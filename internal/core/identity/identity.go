package identity

import (
	"strings"
	"time"
)

// Role is the closed set of roles a signed-in user can carry.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RolePlanner    Role = "PLANNER"
	RoleTechnician Role = "TECHNICIAN"
	RoleWorker     Role = "WORKER"
)

var knownRoles = []Role{RoleAdmin, RolePlanner, RoleTechnician, RoleWorker}

// Roles returns every known role in a stable order.
func Roles() []Role {
	out := make([]Role, len(knownRoles))
	copy(out, knownRoles)
	return out
}

// ParseRole maps unknown values to the zero Role.
func ParseRole(s string) Role {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, k := range knownRoles {
		if r == k {
			return r
		}
	}
	return ""
}

func (r Role) Valid() bool {
	return ParseRole(string(r)) != ""
}

func (r Role) String() string {
	return string(r)
}

// Identity is the minimal shape an authentication provider hands back.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Session is the authenticated principal for one request.
// A nil *Session means the caller is not signed in.
type Session struct {
	Identity
	Name           string    `json:"name,omitempty"`
	Role           Role      `json:"role"`
	DepartmentID   *int64    `json:"departmentId,omitempty"`
	DepartmentName *string   `json:"departmentName,omitempty"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

func (s *Session) HasRole(roles ...Role) bool {
	if s == nil {
		return false
	}
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

// BelongsTo reports whether the session is attached to the given department.
func (s *Session) BelongsTo(departmentID int64) bool {
	return s != nil && s.DepartmentID != nil && *s.DepartmentID == departmentID
}
