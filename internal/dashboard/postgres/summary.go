package postgres

import (
	"context"

	"github.com/frahmantamala/plant-dashboard/internal/category"
	"github.com/frahmantamala/plant-dashboard/internal/dashboard"
	"github.com/frahmantamala/plant-dashboard/internal/equipment"
	"github.com/frahmantamala/plant-dashboard/internal/report"
	"github.com/jmoiron/sqlx"
)

// SummaryRepository runs the dashboard aggregates as plain SQL.
type SummaryRepository struct {
	db *sqlx.DB
}

func NewSummaryRepository(db *sqlx.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

var _ dashboard.SummaryRepository = (*SummaryRepository)(nil)

const equipmentStatusQuery = `
SELECT ed.department_id AS department_id, s.code AS status, COUNT(*) AS n
FROM equipment e
JOIN equipment_departments ed ON ed.equipment_id = e.id
JOIN equipment_statuses s ON s.id = e.current_status_id
GROUP BY ed.department_id, s.code`

func (r *SummaryRepository) EquipmentStatusCounts(ctx context.Context) (map[int64]equipment.StatusCounts, error) {
	var rows []struct {
		DepartmentID int64  `db:"department_id"`
		Status       string `db:"status"`
		N            int    `db:"n"`
	}
	if err := r.db.SelectContext(ctx, &rows, equipmentStatusQuery); err != nil {
		return nil, err
	}

	out := make(map[int64]equipment.StatusCounts)
	for _, row := range rows {
		counts, ok := out[row.DepartmentID]
		if !ok {
			counts = equipment.StatusCounts{}
			out[row.DepartmentID] = counts
		}
		counts[equipment.StatusCode(row.Status)] += row.N
	}
	return out, nil
}

func (r *SummaryRepository) PendingReportCounts(ctx context.Context) (map[int64]int, error) {
	var rows []struct {
		DepartmentID int64 `db:"department_id"`
		N            int   `db:"n"`
	}
	query := r.db.Rebind(`SELECT department_id, COUNT(*) AS n FROM reports WHERE status = ? GROUP BY department_id`)
	if err := r.db.SelectContext(ctx, &rows, query, report.StatusPendingApproval); err != nil {
		return nil, err
	}

	out := make(map[int64]int, len(rows))
	for _, row := range rows {
		out[row.DepartmentID] = row.N
	}
	return out, nil
}

func (r *SummaryRepository) ReportCounts(ctx context.Context, departmentID int64) (map[category.DataCategory]*dashboard.CategoryCounts, error) {
	var rows []struct {
		Category string `db:"category"`
		Status   string `db:"status"`
		N        int    `db:"n"`
	}
	query := r.db.Rebind(`SELECT category, status, COUNT(*) AS n FROM reports WHERE department_id = ? GROUP BY category, status`)
	if err := r.db.SelectContext(ctx, &rows, query, departmentID); err != nil {
		return nil, err
	}

	out := make(map[category.DataCategory]*dashboard.CategoryCounts)
	for _, row := range rows {
		key := category.DataCategory(row.Category)
		if out[key] == nil {
			out[key] = &dashboard.CategoryCounts{}
		}
		out[key].Add(row.Status, row.N)
	}
	return out, nil
}

const latestApprovedQuery = `
SELECT r.id, r.category, r.title, r.value, r.unit, r.period_date, r.processed_at
FROM reports r
WHERE r.department_id = ? AND r.status = ?
  AND r.id = (
    SELECT r2.id FROM reports r2
    WHERE r2.department_id = r.department_id AND r2.category = r.category AND r2.status = r.status
    ORDER BY r2.period_date DESC, r2.id DESC
    LIMIT 1
  )`

func (r *SummaryRepository) LatestApproved(ctx context.Context, departmentID int64) (map[category.DataCategory]*dashboard.LatestReport, error) {
	var rows []*dashboard.LatestReport
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(latestApprovedQuery), departmentID, report.StatusApproved); err != nil {
		return nil, err
	}

	out := make(map[category.DataCategory]*dashboard.LatestReport, len(rows))
	for _, row := range rows {
		out[category.DataCategory(row.Category)] = row
	}
	return out, nil
}
