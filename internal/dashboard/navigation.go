package dashboard

import (
	"github.com/frahmantamala/plant-dashboard/internal/access"
	"github.com/frahmantamala/plant-dashboard/internal/core/identity"
	"github.com/frahmantamala/plant-dashboard/internal/department"
)

// Navigation lists the pages the role may open. Departments keep their
// given order; the dedicated mtceng-burau page replaces its generic entry.
func Navigation(policy access.Policy, role identity.Role, departments []*department.Department, activePath string) []NavItem {
	type candidate struct {
		item     NavItem
		resource access.Resource
	}

	candidates := []candidate{{NavItem{Label: "Overview", Path: "/dashboard"}, access.PageDashboard}}
	for _, d := range departments {
		res := access.PageDepartment
		if d.Code == department.MtcEngBurau {
			res = access.PageMtcEngBurau
		}
		candidates = append(candidates, candidate{NavItem{Label: d.Name, Path: "/dashboard/" + d.Code}, res})
	}
	candidates = append(candidates, candidate{NavItem{Label: "Approvals", Path: "/approvals"}, access.PageApprovals})

	items := make([]NavItem, 0, len(candidates))
	for _, c := range candidates {
		if !policy.Allows(role, c.resource) {
			continue
		}
		c.item.Active = c.item.Path == activePath
		items = append(items, c.item)
	}
	return items
}
