package dashboard

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/plant-dashboard/internal"
	"github.com/frahmantamala/plant-dashboard/internal/access"
	"github.com/frahmantamala/plant-dashboard/internal/cache"
	"github.com/frahmantamala/plant-dashboard/internal/category"
	"github.com/frahmantamala/plant-dashboard/internal/core/events"
	"github.com/frahmantamala/plant-dashboard/internal/core/identity"
	"github.com/frahmantamala/plant-dashboard/internal/department"
	"github.com/frahmantamala/plant-dashboard/internal/equipment"
	"github.com/frahmantamala/plant-dashboard/internal/report"
)

const (
	summaryKeyPrefix   = "dashboard:department:"
	approvalsPageLimit = 100
)

type SummaryRepository interface {
	EquipmentStatusCounts(ctx context.Context) (map[int64]equipment.StatusCounts, error)
	PendingReportCounts(ctx context.Context) (map[int64]int, error)
	ReportCounts(ctx context.Context, departmentID int64) (map[category.DataCategory]*CategoryCounts, error)
	LatestApproved(ctx context.Context, departmentID int64) (map[category.DataCategory]*LatestReport, error)
}

type DepartmentLookup interface {
	List(ctx context.Context) ([]*department.Department, error)
	GetByCode(ctx context.Context, code string) (*department.Department, error)
}

type EquipmentLister interface {
	ListByDepartment(ctx context.Context, code string) ([]*equipment.Equipment, error)
}

type PendingReports interface {
	ListPending(ctx context.Context, limit, offset int) ([]*report.Report, error)
}

type CacheRecorder interface {
	RecordCacheLookup(hit bool)
}

type Service struct {
	summaries   SummaryRepository
	departments DepartmentLookup
	equipment   EquipmentLister
	reports     PendingReports
	policy      access.Policy
	cache       cache.Cache
	ttl         time.Duration
	recorder    CacheRecorder
	logger      *slog.Logger
	now         func() time.Time
}

type Option func(*Service)

// WithCache enables summary caching; a nil cache or zero ttl keeps it off.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		if c != nil && ttl > 0 {
			s.cache, s.ttl = c, ttl
		}
	}
}

func WithCacheRecorder(r CacheRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

func NewService(summaries SummaryRepository, departments DepartmentLookup, equipmentLister EquipmentLister, reports PendingReports, policy access.Policy, logger *slog.Logger, opts ...Option) *Service {
	if policy == nil {
		policy = access.DefaultPolicy()
	}
	s := &Service{
		summaries:   summaries,
		departments: departments,
		equipment:   equipmentLister,
		reports:     reports,
		policy:      policy,
		cache:       cache.Noop{},
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) layout(ctx context.Context, name, activePath string, meta Metadata, viewer *identity.Session, dept *department.Department) (Layout, error) {
	departments, err := s.departments.List(ctx)
	if err != nil {
		return Layout{}, err
	}
	var role identity.Role
	if viewer != nil {
		role = viewer.Role
	}
	return Layout{
		Name:       name,
		Metadata:   meta,
		Department: dept,
		Navigation: Navigation(s.policy, role, departments, activePath),
		Viewer:     viewerFrom(viewer),
	}, nil
}

// Overview builds the /dashboard page.
func (s *Service) Overview(ctx context.Context, viewer *identity.Session) (*Page, error) {
	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, err
	}
	statusCounts, err := s.summaries.EquipmentStatusCounts(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to count equipment", err)
	}
	pending, err := s.summaries.PendingReportCounts(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to count pending reports", err)
	}

	content := OverviewContent{Departments: make([]DepartmentOverview, 0, len(departments))}
	for _, d := range departments {
		content.Departments = append(content.Departments, DepartmentOverview{
			Department:      d,
			EquipmentStatus: statusCounts[d.ID].Filled(),
			PendingReports:  pending[d.ID],
		})
	}

	layout, err := s.layout(ctx, LayoutDashboard, "/dashboard", OverviewMetadata, viewer, nil)
	if err != nil {
		return nil, err
	}
	return &Page{Layout: layout, Content: content}, nil
}

// DepartmentPage wraps the department summary in the detail layout.
func (s *Service) DepartmentPage(ctx context.Context, viewer *identity.Session, code string) (*Page, error) {
	dept, err := s.departments.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	summary, err := s.Summary(ctx, dept)
	if err != nil {
		return nil, err
	}

	layout, err := s.layout(ctx, LayoutDepartment, "/dashboard/"+dept.Code, DepartmentMetadata(dept), viewer, dept)
	if err != nil {
		return nil, err
	}
	return &Page{Layout: layout, Content: summary}, nil
}

func (s *Service) MtcEngBurauPage(ctx context.Context, viewer *identity.Session) (*Page, error) {
	dept, err := s.departments.GetByCode(ctx, department.MtcEngBurau)
	if err != nil {
		return nil, err
	}
	summary, err := s.Summary(ctx, dept)
	if err != nil {
		return nil, err
	}
	items, err := s.equipment.ListByDepartment(ctx, dept.Code)
	if err != nil {
		return nil, err
	}

	layout, err := s.layout(ctx, LayoutDepartment, "/dashboard/"+dept.Code, MtcEngBurauMetadata, viewer, dept)
	if err != nil {
		return nil, err
	}
	return &Page{Layout: layout, Content: MtcEngBurauContent{DepartmentSummary: summary, Equipment: items}}, nil
}

func (s *Service) ApprovalsPage(ctx context.Context, viewer *identity.Session) (*Page, error) {
	pending, err := s.reports.ListPending(ctx, approvalsPageLimit, 0)
	if err != nil {
		return nil, err
	}
	layout, err := s.layout(ctx, LayoutApprovals, "/approvals", ApprovalsMetadata, viewer, nil)
	if err != nil {
		return nil, err
	}
	return &Page{Layout: layout, Content: ApprovalsContent{Pending: pending, Count: len(pending)}}, nil
}

// Summary returns the department aggregates, from cache when possible.
func (s *Service) Summary(ctx context.Context, dept *department.Department) (*DepartmentSummary, error) {
	key := summaryKey(dept.ID)

	var cached DepartmentSummary
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.WarnContext(ctx, "dashboard cache read failed", "key", key, "error", err)
	}
	if s.recorder != nil {
		s.recorder.RecordCacheLookup(hit)
	}
	if hit {
		return &cached, nil
	}

	summary, err := s.buildSummary(ctx, dept.ID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, summary, s.ttl); err != nil {
		s.logger.WarnContext(ctx, "dashboard cache write failed", "key", key, "error", err)
	}
	return summary, nil
}

func (s *Service) buildSummary(ctx context.Context, departmentID int64) (*DepartmentSummary, error) {
	statusCounts, err := s.summaries.EquipmentStatusCounts(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to count equipment", err)
	}
	counts, err := s.summaries.ReportCounts(ctx, departmentID)
	if err != nil {
		return nil, internal.NewInternalError("failed to count reports", err)
	}
	latest, err := s.summaries.LatestApproved(ctx, departmentID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load latest reports", err)
	}

	entries := category.All()
	categories := make([]CategorySummary, 0, len(entries))
	for _, e := range entries {
		cs := CategorySummary{Key: e.Key, Name: e.Name, Latest: latest[e.Key]}
		if c := counts[e.Key]; c != nil {
			cs.Counts = *c
		}
		categories = append(categories, cs)
	}

	return &DepartmentSummary{
		DepartmentID:    departmentID,
		EquipmentStatus: statusCounts[departmentID].Filled(),
		Categories:      categories,
		GeneratedAt:     s.now().UTC(),
	}, nil
}

// Invalidate drops cached summaries of the given departments.
func (s *Service) Invalidate(ctx context.Context, departmentIDs ...int64) {
	if len(departmentIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(departmentIDs))
	for _, id := range departmentIDs {
		keys = append(keys, summaryKey(id))
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.logger.WarnContext(ctx, "dashboard cache invalidation failed", "keys", strings.Join(keys, ","), "error", err)
	}
}

// Subscribe invalidates cached summaries whenever an event touches a department.
func (s *Service) Subscribe(bus *events.EventBus) {
	handler := func(ctx context.Context, e events.Event) error {
		if scoped, ok := e.(events.DepartmentScoped); ok {
			s.Invalidate(ctx, scoped.DepartmentIDs()...)
		}
		return nil
	}
	for _, t := range events.Types() {
		bus.Subscribe(t, handler)
	}
}

func summaryKey(departmentID int64) string {
	return summaryKeyPrefix + strconv.FormatInt(departmentID, 10)
}
