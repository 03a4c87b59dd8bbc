package department

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frahmantamala/plant-dashboard/internal"
	departmentDatamodel "github.com/frahmantamala/plant-dashboard/internal/core/datamodel/department"
)

type RepositoryAPI interface {
	List(ctx context.Context) ([]*departmentDatamodel.Department, error)
	GetByCode(ctx context.Context, code string) (*departmentDatamodel.Department, error)
	GetByID(ctx context.Context, id int64) (*departmentDatamodel.Department, error)
	Create(ctx context.Context, d *departmentDatamodel.Department) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]*Department, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list departments", err)
	}
	out := make([]*Department, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (*Department, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil, internal.ErrDepartmentNotFound
	}
	row, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, internal.NewInternalError("failed to load department", err)
	}
	if row == nil {
		return nil, internal.ErrDepartmentNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Department, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load department", err)
	}
	if row == nil {
		return nil, internal.ErrDepartmentNotFound
	}
	return FromDataModel(row), nil
}

// Exists is used by report submission to validate target departments.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return row != nil, nil
}

func (s *Service) Names(ctx context.Context) (map[int64]string, error) {
	departments, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(departments))
	for _, d := range departments {
		names[d.ID] = d.Name
	}
	return names, nil
}

// EnsureDefaults creates any missing default department.
func (s *Service) EnsureDefaults(ctx context.Context) (int, error) {
	created := 0
	for _, d := range Defaults() {
		existing, err := s.repo.GetByCode(ctx, d.Code)
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}
		if err := s.repo.Create(ctx, ToDataModel(d)); err != nil {
			return created, err
		}
		created++
	}
	if created > 0 {
		s.logger.Info("seeded departments", "created", created)
	}
	return created, nil
}
