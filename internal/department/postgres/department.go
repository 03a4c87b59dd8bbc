package postgres

import (
	"context"
	"errors"

	departmentDatamodel "github.com/frahmantamala/plant-dashboard/internal/core/datamodel/department"
	"github.com/frahmantamala/plant-dashboard/internal/department"
	"gorm.io/gorm"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) department.RepositoryAPI {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) List(ctx context.Context) ([]*departmentDatamodel.Department, error) {
	var rows []*departmentDatamodel.Department
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *DepartmentRepository) GetByCode(ctx context.Context, code string) (*departmentDatamodel.Department, error) {
	return r.first(ctx, "code = ?", code)
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*departmentDatamodel.Department, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *DepartmentRepository) Create(ctx context.Context, d *departmentDatamodel.Department) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DepartmentRepository) first(ctx context.Context, query string, arg interface{}) (*departmentDatamodel.Department, error) {
	var row departmentDatamodel.Department
	if err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}
