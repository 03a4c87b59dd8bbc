package access

import (
	"sort"

	"github.com/frahmantamala/plant-dashboard/internal/core/identity"
)

// RoleSet is an allow-list of roles. The zero value allows nobody.
type RoleSet map[identity.Role]struct{}

func NewRoleSet(roles ...identity.Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		if r.Valid() {
			set[r] = struct{}{}
		}
	}
	return set
}

func AllRoles() RoleSet {
	return NewRoleSet(identity.Roles()...)
}

func (s RoleSet) Contains(r identity.Role) bool {
	if r == "" {
		return false
	}
	_, ok := s[r]
	return ok
}

// Slice returns the roles sorted by name.
func (s RoleSet) Slice() []identity.Role {
	out := make([]identity.Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Resource names a page or an action that is guarded by role.
type Resource string

const (
	PageApprovals   Resource = "page:approvals"
	PageDashboard   Resource = "page:dashboard"
	PageDepartment  Resource = "page:department"
	PageMtcEngBurau Resource = "page:mtceng-burau"

	ActionReportApprove   Resource = "action:report.approve"
	ActionReportExport    Resource = "action:report.export"
	ActionEquipmentStatus Resource = "action:equipment.status"
)

// Policy maps each resource to the roles allowed to reach it.
// Resources missing from the table are denied to every role.
type Policy map[Resource]RoleSet

func DefaultPolicy() Policy {
	return Policy{
		PageApprovals:   NewRoleSet(identity.RoleAdmin, identity.RolePlanner),
		PageDashboard:   AllRoles(),
		PageDepartment:  AllRoles(),
		PageMtcEngBurau: AllRoles(),

		ActionReportApprove:   NewRoleSet(identity.RoleAdmin, identity.RolePlanner),
		ActionReportExport:    NewRoleSet(identity.RoleAdmin, identity.RolePlanner),
		ActionEquipmentStatus: NewRoleSet(identity.RoleAdmin, identity.RolePlanner, identity.RoleTechnician),
	}
}

func (p Policy) RolesFor(res Resource) RoleSet {
	if set, ok := p[res]; ok {
		return set
	}
	return RoleSet{}
}

func (p Policy) Allows(role identity.Role, res Resource) bool {
	return p.RolesFor(res).Contains(role)
}

// SessionAllows is Allows for a possibly nil session.
func (p Policy) SessionAllows(s *identity.Session, res Resource) bool {
	return s != nil && p.Allows(s.Role, res)
}
