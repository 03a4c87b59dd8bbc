package dashboard

import (
	"fmt"
	"time"

	"github.com/frahmantamala/plant-dashboard/internal/category"
	"github.com/frahmantamala/plant-dashboard/internal/core/identity"
	"github.com/frahmantamala/plant-dashboard/internal/department"
	"github.com/frahmantamala/plant-dashboard/internal/equipment"
	"github.com/frahmantamala/plant-dashboard/internal/report"
)

const (
	LayoutDashboard  = "dashboard"
	LayoutDepartment = "department-detail"
	LayoutApprovals  = "approvals"
)

type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// DepartmentMetadata is the metadata of the /dashboard/{department} layout.
func DepartmentMetadata(d *department.Department) Metadata {
	return Metadata{
		Title:       fmt.Sprintf("%s | Department Dashboard", d.Name),
		Description: fmt.Sprintf("Operational reports, maintenance, safety and energy metrics for %s", d.Name),
	}
}

var (
	OverviewMetadata = Metadata{
		Title:       "Dashboard",
		Description: "Plant overview of department equipment status and pending reports",
	}
	MtcEngBurauMetadata = Metadata{
		Title:       "MTC ENG BURAU | Dashboard",
		Description: "Maintenance engineering bureau equipment, reports and energy metrics",
	}
	ApprovalsMetadata = Metadata{
		Title:       "Approvals",
		Description: "Department reports waiting for review",
	}
)

type NavItem struct {
	Label  string `json:"label"`
	Path   string `json:"path"`
	Active bool   `json:"active,omitempty"`
}

type Viewer struct {
	ID             int64         `json:"id"`
	Username       string        `json:"username"`
	Name           string        `json:"name,omitempty"`
	Role           identity.Role `json:"role"`
	DepartmentID   *int64        `json:"departmentId,omitempty"`
	DepartmentName *string       `json:"departmentName,omitempty"`
}

func viewerFrom(s *identity.Session) *Viewer {
	if s == nil {
		return nil
	}
	return &Viewer{
		ID:             s.ID,
		Username:       s.Username,
		Name:           s.Name,
		Role:           s.Role,
		DepartmentID:   s.DepartmentID,
		DepartmentName: s.DepartmentName,
	}
}

// Layout is the shell every page payload is wrapped in.
type Layout struct {
	Name       string                 `json:"name"`
	Metadata   Metadata               `json:"metadata"`
	Department *department.Department `json:"department,omitempty"`
	Navigation []NavItem              `json:"navigation"`
	Viewer     *Viewer                `json:"viewer,omitempty"`
}

type Page struct {
	Layout  Layout      `json:"layout"`
	Content interface{} `json:"content"`
}

type CategoryCounts struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

func (c *CategoryCounts) Add(status string, n int) {
	switch status {
	case report.StatusPendingApproval:
		c.Pending += n
	case report.StatusApproved:
		c.Approved += n
	case report.StatusRejected:
		c.Rejected += n
	}
}

type LatestReport struct {
	ReportID    int64      `json:"reportId" db:"id"`
	Category    string     `json:"-" db:"category"`
	Title       string     `json:"title" db:"title"`
	Value       *float64   `json:"value,omitempty" db:"value"`
	Unit        *string    `json:"unit,omitempty" db:"unit"`
	PeriodDate  time.Time  `json:"periodDate" db:"period_date"`
	ProcessedAt *time.Time `json:"processedAt,omitempty" db:"processed_at"`
}

type CategorySummary struct {
	Key    category.DataCategory `json:"key"`
	Name   string                `json:"name"`
	Counts CategoryCounts        `json:"counts"`
	Latest *LatestReport         `json:"latest,omitempty"`
}

// DepartmentSummary is the cached content of a department page.
type DepartmentSummary struct {
	DepartmentID    int64                  `json:"departmentId"`
	EquipmentStatus equipment.StatusCounts `json:"equipmentStatus"`
	Categories      []CategorySummary      `json:"categories"`
	GeneratedAt     time.Time              `json:"generatedAt"`
}

type DepartmentOverview struct {
	Department      *department.Department `json:"department"`
	EquipmentStatus equipment.StatusCounts `json:"equipmentStatus"`
	PendingReports  int                    `json:"pendingReports"`
}

type OverviewContent struct {
	Departments []DepartmentOverview `json:"departments"`
}

type MtcEngBurauContent struct {
	*DepartmentSummary
	Equipment []*equipment.Equipment `json:"equipment"`
}

type ApprovalsContent struct {
	Pending []*report.Report `json:"pending"`
	Count   int              `json:"count"`
}
