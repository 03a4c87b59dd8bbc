package report

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/plant-dashboard/internal"
	"github.com/frahmantamala/plant-dashboard/internal/access"
	"github.com/frahmantamala/plant-dashboard/internal/category"
	"github.com/frahmantamala/plant-dashboard/internal/core/common/validation"
	"github.com/frahmantamala/plant-dashboard/internal/core/events"
	"github.com/frahmantamala/plant-dashboard/internal/core/identity"
	"github.com/microcosm-cc/bluemonday"
)

const (
	maxNotesLength = 2000
	maxUnitLength  = 32
	defaultLimit   = 50
	maxLimit       = 500
)

// Repository returns (nil, nil) for missing reports.
type Repository interface {
	Create(ctx context.Context, r *Report) error
	GetByID(ctx context.Context, id int64) (*Report, error)
	List(ctx context.Context, filter Filter) ([]*Report, error)
	// Transition moves a report out of fromStatus; it reports false when the
	// report was no longer in fromStatus.
	Transition(ctx context.Context, id int64, fromStatus string, r *Report) (bool, error)
}

type CategoryValidator interface {
	IsValidCategory(ctx context.Context, key category.DataCategory) bool
}

type DepartmentExists interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo        Repository
	categories  CategoryValidator
	departments DepartmentExists
	policy      access.Policy
	publisher   events.Publisher
	sanitizer   *bluemonday.Policy
	logger      *slog.Logger
	now         func() time.Time
}

func NewService(repo Repository, categories CategoryValidator, departments DepartmentExists, policy access.Policy, publisher events.Publisher, logger *slog.Logger) *Service {
	if policy == nil {
		policy = access.DefaultPolicy()
	}
	return &Service{
		repo:        repo,
		categories:  categories,
		departments: departments,
		policy:      policy,
		publisher:   publisher,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger,
		now:         time.Now,
	}
}

// Submit records a new report awaiting approval.
func (s *Service) Submit(ctx context.Context, actor *identity.Session, dto SubmitReportDTO) (*Report, error) {
	if actor == nil {
		return nil, internal.ErrInvalidToken
	}

	now := s.now()
	period, perr := time.Parse(PeriodLayout, strings.TrimSpace(dto.PeriodDate))
	if perr != nil {
		return nil, internal.NewValidationFieldError("period_date", "period_date must be formatted as YYYY-MM-DD", internal.ErrCodeInvalidDate)
	}

	v := validation.NewValidator()
	v.Field("title", strings.TrimSpace(dto.Title)).Required().MaxLengthCode(200, internal.ErrCodeInvalidTitle)
	v.Field("period_date", period).Required().NotFuture(now)
	v.Field("unit", dto.Unit).MaxLengthCode(maxUnitLength, internal.ErrCodeInvalidUnit)
	v.Field("notes", dto.Notes).MaxLength(maxNotesLength)
	v.Field("value", dto.Value).MinFloat(0, internal.ErrCodeValidationFailed)
	if err := v.Validate(); err != nil {
		return nil, err
	}

	key, ok := category.Parse(dto.Category)
	if !ok || !s.categories.IsValidCategory(ctx, key) {
		return nil, internal.ErrInvalidCategory
	}

	deptID, err := s.resolveDepartment(ctx, actor, dto.DepartmentID)
	if err != nil {
		return nil, err
	}

	r := &Report{
		DepartmentID: deptID,
		Category:     key,
		Title:        strings.TrimSpace(dto.Title),
		Notes:        s.sanitizer.Sanitize(dto.Notes),
		Value:        dto.Value,
		Unit:         strings.TrimSpace(dto.Unit),
		PeriodDate:   period,
		Status:       StatusPendingApproval,
		SubmittedBy:  actor.ID,
		SubmittedAt:  now.UTC(),
	}
	if err := s.repo.Create(ctx, r); err != nil {
		s.logger.ErrorContext(ctx, "failed to create report", "error", err, "user_id", actor.ID)
		return nil, internal.NewInternalError("failed to create report", err)
	}

	s.logger.InfoContext(ctx, "report submitted",
		"report_id", r.ID,
		"department_id", r.DepartmentID,
		"category", r.Category,
		"user_id", actor.ID)

	s.publish(ctx, events.NewReportEvent(events.EventTypeReportSubmitted, r.ID, r.DepartmentID, string(r.Category), actor.ID, ""))
	return r, nil
}

func (s *Service) resolveDepartment(ctx context.Context, actor *identity.Session, requested *int64) (int64, error) {
	crossDepartment := actor.HasRole(identity.RoleAdmin, identity.RolePlanner)

	var deptID int64
	switch {
	case requested != nil:
		deptID = *requested
	case actor.DepartmentID != nil:
		deptID = *actor.DepartmentID
	default:
		return 0, internal.NewValidationFieldError("departmentId", "departmentId is required", internal.ErrCodeValidationFailed)
	}

	if !crossDepartment && !actor.BelongsTo(deptID) {
		return 0, internal.ErrForbiddenDepartment
	}

	exists, err := s.departments.Exists(ctx, deptID)
	if err != nil {
		return 0, internal.NewInternalError("failed to check department", err)
	}
	if !exists {
		return 0, internal.ErrDepartmentNotFound
	}
	return deptID, nil
}

// ListPending returns reports awaiting approval, oldest first.
func (s *Service) ListPending(ctx context.Context, limit, offset int) ([]*Report, error) {
	return s.List(ctx, Filter{Status: StatusPendingApproval, Limit: limit, Offset: offset})
}

func (s *Service) ListByDepartment(ctx context.Context, departmentID int64, key category.DataCategory) ([]*Report, error) {
	if key != "" && !key.Valid() {
		return nil, internal.ErrInvalidCategory
	}
	return s.List(ctx, Filter{DepartmentID: &departmentID, Category: string(key)})
}

// ListVisible scopes the listing to the actor's department unless the actor
// may work across departments.
func (s *Service) ListVisible(ctx context.Context, actor *identity.Session, filter Filter) ([]*Report, error) {
	if actor == nil {
		return nil, internal.ErrInvalidToken
	}
	if filter.Category != "" {
		if _, ok := category.Parse(filter.Category); !ok {
			return nil, internal.ErrInvalidCategory
		}
	}
	if !actor.HasRole(identity.RoleAdmin, identity.RolePlanner) {
		if actor.DepartmentID == nil {
			return []*Report{}, nil
		}
		if filter.DepartmentID != nil && !actor.BelongsTo(*filter.DepartmentID) {
			return nil, internal.ErrForbiddenDepartment
		}
		own := *actor.DepartmentID
		filter.DepartmentID = &own
	}
	return s.List(ctx, filter)
}

func (s *Service) List(ctx context.Context, filter Filter) ([]*Report, error) {
	filter = normalizeFilter(filter)
	reports, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to list reports", err)
	}
	return reports, nil
}

func (s *Service) Approve(ctx context.Context, actor *identity.Session, id int64) (*Report, error) {
	return s.process(ctx, actor, id, StatusApproved, "")
}

func (s *Service) Reject(ctx context.Context, actor *identity.Session, id int64, reason string) (*Report, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, internal.NewValidationFieldError("reason", "reason is required when rejecting a report", internal.ErrCodeReasonRequired)
	}
	return s.process(ctx, actor, id, StatusRejected, s.sanitizer.Sanitize(reason))
}

func (s *Service) process(ctx context.Context, actor *identity.Session, id int64, status, reason string) (*Report, error) {
	if actor == nil {
		return nil, internal.ErrInvalidToken
	}
	if !s.policy.Allows(actor.Role, access.ActionReportApprove) {
		s.logger.WarnContext(ctx, "report review denied", "report_id", id, "user_id", actor.ID, "role", actor.Role)
		return nil, internal.ErrForbiddenRole
	}

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load report", err)
	}
	if r == nil {
		return nil, internal.ErrReportNotFound
	}
	if !r.IsPending() {
		s.logger.WarnContext(ctx, "cannot review report in current status", "report_id", id, "status", r.Status)
		return nil, internal.ErrInvalidReportStatus
	}

	processedAt := s.now().UTC()
	reviewer := actor.ID
	r.Status = status
	r.ReviewedBy = &reviewer
	r.ProcessedAt = &processedAt
	if reason != "" {
		r.RejectionReason = &reason
	}

	ok, err := s.repo.Transition(ctx, id, StatusPendingApproval, r)
	if err != nil {
		return nil, internal.NewInternalError("failed to update report", err)
	}
	if !ok {
		return nil, internal.ErrInvalidReportStatus
	}

	eventType := events.EventTypeReportApproved
	if status == StatusRejected {
		eventType = events.EventTypeReportRejected
	}
	s.logger.InfoContext(ctx, "report reviewed", "report_id", id, "status", status, "reviewer_id", actor.ID)
	s.publish(ctx, events.NewReportEvent(eventType, r.ID, r.DepartmentID, string(r.Category), actor.ID, reason))
	return r, nil
}

// Export writes the reports matching filter as an xlsx workbook.
func (s *Service) Export(ctx context.Context, w io.Writer, filter Filter, departmentNames map[int64]string) error {
	filter.Limit = maxLimit
	reports, err := s.List(ctx, filter)
	if err != nil {
		return err
	}
	return WriteWorkbook(w, reports, departmentNames)
}

func (s *Service) publish(ctx context.Context, evt events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "event_type", evt.EventType(), "error", err)
	}
}

func normalizeFilter(f Filter) Filter {
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
