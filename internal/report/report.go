package report

import (
	"time"

	"github.com/frahmantamala/plant-dashboard/internal/category"
	reportDatamodel "github.com/frahmantamala/plant-dashboard/internal/core/datamodel/report"
)

const (
	StatusPendingApproval = "pending_approval"
	StatusApproved        = "approved"
	StatusRejected        = "rejected"
)

// PeriodLayout is the wire format of PeriodDate.
const PeriodLayout = "2006-01-02"

// Report is a department metric report for one data category and period.
type Report struct {
	ID              int64                 `json:"id"`
	DepartmentID    int64                 `json:"departmentId"`
	Category        category.DataCategory `json:"category"`
	Title           string                `json:"title"`
	Notes           string                `json:"notes,omitempty"`
	Value           *float64              `json:"value,omitempty"`
	Unit            string                `json:"unit,omitempty"`
	PeriodDate      time.Time             `json:"periodDate"`
	Status          string                `json:"status"`
	SubmittedBy     int64                 `json:"submittedBy"`
	ReviewedBy      *int64                `json:"reviewedBy,omitempty"`
	RejectionReason *string               `json:"rejectionReason,omitempty"`
	SubmittedAt     time.Time             `json:"submittedAt"`
	ProcessedAt     *time.Time            `json:"processedAt,omitempty"`
}

func (r *Report) IsPending() bool {
	return r.Status == StatusPendingApproval
}

func ToDataModel(r *Report) *reportDatamodel.Report {
	return &reportDatamodel.Report{
		ID:              r.ID,
		DepartmentID:    r.DepartmentID,
		Category:        string(r.Category),
		Title:           r.Title,
		Notes:           r.Notes,
		Value:           r.Value,
		Unit:            r.Unit,
		PeriodDate:      r.PeriodDate,
		Status:          r.Status,
		SubmittedBy:     r.SubmittedBy,
		ReviewedBy:      r.ReviewedBy,
		RejectionReason: r.RejectionReason,
		SubmittedAt:     r.SubmittedAt,
		ProcessedAt:     r.ProcessedAt,
	}
}

func FromDataModel(r *reportDatamodel.Report) *Report {
	return &Report{
		ID:              r.ID,
		DepartmentID:    r.DepartmentID,
		Category:        category.DataCategory(r.Category),
		Title:           r.Title,
		Notes:           r.Notes,
		Value:           r.Value,
		Unit:            r.Unit,
		PeriodDate:      r.PeriodDate,
		Status:          r.Status,
		SubmittedBy:     r.SubmittedBy,
		ReviewedBy:      r.ReviewedBy,
		RejectionReason: r.RejectionReason,
		SubmittedAt:     r.SubmittedAt,
		ProcessedAt:     r.ProcessedAt,
	}
}
