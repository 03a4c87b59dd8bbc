package postgres

import (
	"context"
	"errors"

	reportDatamodel "github.com/frahmantamala/plant-dashboard/internal/core/datamodel/report"
	"github.com/frahmantamala/plant-dashboard/internal/report"
	"gorm.io/gorm"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

var _ report.Repository = (*ReportRepository)(nil)

func (r *ReportRepository) Create(ctx context.Context, rep *report.Report) error {
	row := report.ToDataModel(rep)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	rep.ID = row.ID
	return nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id int64) (*report.Report, error) {
	var row reportDatamodel.Report
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return report.FromDataModel(&row), nil
}

func (r *ReportRepository) List(ctx context.Context, filter report.Filter) ([]*report.Report, error) {
	q := r.db.WithContext(ctx).Model(&reportDatamodel.Report{})
	if filter.DepartmentID != nil {
		q = q.Where("department_id = ?", *filter.DepartmentID)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	// pending queues read oldest first, history newest first
	if filter.Status == report.StatusPendingApproval {
		q = q.Order("submitted_at ASC").Order("id ASC")
	} else {
		q = q.Order("period_date DESC").Order("id DESC")
	}

	var rows []*reportDatamodel.Report
	if err := q.Limit(filter.Limit).Offset(filter.Offset).Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*report.Report, 0, len(rows))
	for _, row := range rows {
		out = append(out, report.FromDataModel(row))
	}
	return out, nil
}

func (r *ReportRepository) Transition(ctx context.Context, id int64, fromStatus string, rep *report.Report) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&reportDatamodel.Report{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(map[string]interface{}{
			"status":           rep.Status,
			"reviewed_by":      rep.ReviewedBy,
			"rejection_reason": rep.RejectionReason,
			"processed_at":     rep.ProcessedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
