package equipment

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/plant-dashboard/internal"
	"github.com/frahmantamala/plant-dashboard/internal/core/events"
	"github.com/frahmantamala/plant-dashboard/internal/core/identity"
	"github.com/frahmantamala/plant-dashboard/internal/department"
	"github.com/go-playground/validator/v10"
)

// RepositoryAPI returns (nil, nil) for missing rows.
type RepositoryAPI interface {
	List(ctx context.Context, departmentID *int64) ([]*Equipment, error)
	Get(ctx context.Context, id int64) (*Equipment, error)
	GetStatusByCode(ctx context.Context, code StatusCode) (*Status, error)
	History(ctx context.Context, equipmentID int64) ([]*StatusChange, error)
	ApplyStatus(ctx context.Context, update StatusUpdate) error
}

type DepartmentLookup interface {
	GetByCode(ctx context.Context, code string) (*department.Department, error)
}

type Service struct {
	repo        RepositoryAPI
	departments DepartmentLookup
	publisher   events.Publisher
	validate    *validator.Validate
	logger      *slog.Logger
	now         func() time.Time
}

func NewService(repo RepositoryAPI, departments DepartmentLookup, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		departments: departments,
		publisher:   publisher,
		validate:    validator.New(),
		logger:      logger,
		now:         time.Now,
	}
}

// ListByDepartment lists equipment assigned to the department with the given
// code, or all equipment when code is empty.
func (s *Service) ListByDepartment(ctx context.Context, code string) ([]*Equipment, error) {
	var deptID *int64
	if code != "" {
		dept, err := s.departments.GetByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		deptID = &dept.ID
	}

	items, err := s.repo.List(ctx, deptID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list equipment", err)
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Equipment, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load equipment", err)
	}
	if e == nil {
		return nil, internal.ErrEquipmentNotFound
	}
	return e, nil
}

func (s *Service) History(ctx context.Context, id int64) ([]*StatusChange, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	changes, err := s.repo.History(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load status history", err)
	}
	return changes, nil
}

// UpdateStatus replaces the current status and records the transition.
func (s *Service) UpdateStatus(ctx context.Context, actor *identity.Session, id int64, dto UpdateStatusDTO) (*Equipment, error) {
	if actor == nil {
		return nil, internal.ErrInvalidToken
	}
	if err := s.validate.Struct(dto); err != nil {
		return nil, internal.NewValidationFieldError("status", err.Error(), internal.ErrCodeInvalidEquipmentStatus)
	}

	code, ok := ParseStatus(dto.Status)
	if !ok {
		return nil, internal.ErrInvalidEquipmentStatus
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.CurrentStatus.Code == code {
		return nil, internal.ErrStatusUnchanged
	}

	target, err := s.repo.GetStatusByCode(ctx, code)
	if err != nil {
		return nil, internal.NewInternalError("failed to load status", err)
	}
	if target == nil {
		return nil, internal.ErrInvalidEquipmentStatus
	}

	update := StatusUpdate{
		EquipmentID:  id,
		FromStatusID: current.CurrentStatus.ID,
		ToStatusID:   target.ID,
		ChangedBy:    actor.ID,
		Note:         dto.Note,
		ChangedAt:    s.now().UTC(),
	}
	if err := s.repo.ApplyStatus(ctx, update); err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		return nil, internal.NewInternalError("failed to update equipment status", err)
	}

	s.logger.InfoContext(ctx, "equipment status changed",
		"equipment_id", id,
		"from", current.CurrentStatus.Code,
		"to", code,
		"user_id", actor.ID)

	if s.publisher != nil {
		evt := events.NewEquipmentStatusChangedEvent(id, string(current.CurrentStatus.Code), string(code), actor.ID, current.DepartmentIDs())
		if err := s.publisher.Publish(ctx, evt); err != nil {
			s.logger.WarnContext(ctx, "failed to publish status change", "equipment_id", id, "error", err)
		}
	}

	return s.Get(ctx, id)
}

// CountByStatus tallies the current status of the given equipment.
func CountByStatus(items []*Equipment) StatusCounts {
	counts := StatusCounts{}
	for _, e := range items {
		counts[e.CurrentStatus.Code]++
	}
	return counts.Filled()
}
