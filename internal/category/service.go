package category

import (
	"context"
	"log/slog"

	categoryDatamodel "github.com/frahmantamala/plant-dashboard/internal/core/datamodel/category"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*categoryDatamodel.DataCategory, error)
	GetByKey(ctx context.Context, key string) (*categoryDatamodel.DataCategory, error)
	Create(ctx context.Context, category *categoryDatamodel.DataCategory) error
	Update(ctx context.Context, category *categoryDatamodel.DataCategory) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetAllCategories(ctx context.Context) ([]CategoryResponse, error) {
	dataCategories, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to get categories from repository", "error", err)
		return nil, err
	}

	responses := make([]CategoryResponse, 0, len(dataCategories))
	for _, dataCategory := range dataCategories {
		domainCategory := FromDataModel(dataCategory)
		if domainCategory.IsActiveCategory() {
			responses = append(responses, domainCategory.ToResponse())
		}
	}

	s.logger.Debug("retrieved categories", "count", len(responses))
	return responses, nil
}

// GetCategoryByKey returns nil when the key is unknown or its row is inactive.
func (s *Service) GetCategoryByKey(ctx context.Context, key DataCategory) (*CategoryResponse, error) {
	if !key.Valid() {
		return nil, nil
	}

	dataCategory, err := s.repo.GetByKey(ctx, string(key))
	if err != nil {
		s.logger.Error("failed to get category from repository", "key", key, "error", err)
		return nil, err
	}
	if dataCategory == nil {
		return nil, nil
	}

	domainCategory := FromDataModel(dataCategory)
	if !domainCategory.IsActiveCategory() {
		return nil, nil
	}
	response := domainCategory.ToResponse()
	return &response, nil
}

func (s *Service) IsValidCategory(ctx context.Context, key DataCategory) bool {
	category, err := s.GetCategoryByKey(ctx, key)
	if err != nil {
		s.logger.Warn("error checking category validity", "key", key, "error", err)
		return false
	}
	return category != nil
}

// SetActive toggles a catalogue row without touching the constant set.
func (s *Service) SetActive(ctx context.Context, key DataCategory, active bool) error {
	dataCategory, err := s.repo.GetByKey(ctx, string(key))
	if err != nil {
		return err
	}
	if dataCategory == nil {
		return nil
	}
	domainCategory := FromDataModel(dataCategory)
	if active {
		domainCategory.Activate()
	} else {
		domainCategory.Deactivate()
	}
	return s.repo.Update(ctx, ToDataModel(domainCategory))
}

// EnsureDefaults inserts a catalogue row for every constant that has none.
func (s *Service) EnsureDefaults(ctx context.Context) (int, error) {
	created := 0
	for _, c := range Defaults() {
		existing, err := s.repo.GetByKey(ctx, string(c.Key))
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}
		if err := s.repo.Create(ctx, ToDataModel(c)); err != nil {
			return created, err
		}
		created++
	}
	if created > 0 {
		s.logger.Info("seeded data categories", "created", created)
	}
	return created, nil
}
