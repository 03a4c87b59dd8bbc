package report

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/plant-dashboard/internal"
	"github.com/frahmantamala/plant-dashboard/internal/core/identity"
	"github.com/frahmantamala/plant-dashboard/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Submit(ctx context.Context, actor *identity.Session, dto SubmitReportDTO) (*Report, error)
	ListVisible(ctx context.Context, actor *identity.Session, filter Filter) ([]*Report, error)
	ListPending(ctx context.Context, limit, offset int) ([]*Report, error)
	Approve(ctx context.Context, actor *identity.Session, id int64) (*Report, error)
	Reject(ctx context.Context, actor *identity.Session, id int64, reason string) (*Report, error)
	Export(ctx context.Context, w io.Writer, filter Filter, departmentNames map[int64]string) error
}

type DepartmentNames interface {
	Names(ctx context.Context) (map[int64]string, error)
}

type Handler struct {
	*transport.BaseHandler
	Service     ServiceAPI
	Departments DepartmentNames
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, departments DepartmentNames) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Departments: departments,
	}
}

// SubmitReport handles POST /reports
func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	var dto SubmitReportDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.Service.Submit(r.Context(), internal.SessionFromContext(r.Context()), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, report)
}

// ListReports handles GET /reports?departmentId=&category=&status=&limit=&offset=
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}
	reports, err := h.Service.ListVisible(r.Context(), internal.SessionFromContext(r.Context()), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ListResponse{Reports: reports})
}

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}
	reports, err := h.Service.ListPending(r.Context(), filter.Limit, filter.Offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ListResponse{Reports: reports})
}

// ExportReports handles GET /reports/export and streams an xlsx workbook.
func (h *Handler) ExportReports(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	names, err := h.Departments.Names(r.Context())
	if err != nil {
		h.Logger.Error("ExportReports: failed to load department names", "error", err)
		names = map[int64]string{}
	}

	filename := fmt.Sprintf("reports-%s.xlsx", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.Service.Export(r.Context(), w, filter, names); err != nil {
		w.Header().Del("Content-Disposition")
		h.HandleServiceError(w, err)
	}
}

// ApproveReport handles PATCH /reports/{id}/approve
func (h *Handler) ApproveReport(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reportID(w, r)
	if !ok {
		return
	}
	report, err := h.Service.Approve(r.Context(), internal.SessionFromContext(r.Context()), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}

// RejectReport handles PATCH /reports/{id}/reject
func (h *Handler) RejectReport(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reportID(w, r)
	if !ok {
		return
	}

	var dto RejectReportDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.Service.Reject(r.Context(), internal.SessionFromContext(r.Context()), id, dto.Reason)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) reportID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid report id")
		return 0, false
	}
	return id, true
}

func (h *Handler) parseFilter(w http.ResponseWriter, r *http.Request) (Filter, bool) {
	q := r.URL.Query()
	filter := Filter{
		Category: q.Get("category"),
		Status:   q.Get("status"),
	}

	if raw := q.Get("departmentId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid departmentId")
			return filter, false
		}
		filter.DepartmentID = &id
	}

	switch filter.Status {
	case "", StatusPendingApproval, StatusApproved, StatusRejected:
	default:
		h.WriteError(w, http.StatusBadRequest, "invalid status")
		return filter, false
	}

	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.WriteError(w, http.StatusBadRequest, "invalid "+name)
			return filter, false
		}
		*dst = n
	}
	return filter, true
}
