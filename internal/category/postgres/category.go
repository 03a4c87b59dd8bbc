package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/plant-dashboard/internal/category"
	categoryDatamodel "github.com/frahmantamala/plant-dashboard/internal/core/datamodel/category"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) category.RepositoryAPI {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) GetAll(ctx context.Context) ([]*categoryDatamodel.DataCategory, error) {
	var categories []*categoryDatamodel.DataCategory
	err := r.db.WithContext(ctx).Order("sort_order ASC, key ASC").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) GetByKey(ctx context.Context, key string) (*categoryDatamodel.DataCategory, error) {
	var cat categoryDatamodel.DataCategory
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepository) Create(ctx context.Context, cat *categoryDatamodel.DataCategory) error {
	return r.db.WithContext(ctx).Create(cat).Error
}

func (r *CategoryRepository) Update(ctx context.Context, cat *categoryDatamodel.DataCategory) error {
	return r.db.WithContext(ctx).Save(cat).Error
}
