package dashboard

import (
	"context"
	"net/http"

	"github.com/frahmantamala/plant-dashboard/internal"
	"github.com/frahmantamala/plant-dashboard/internal/core/identity"
	"github.com/frahmantamala/plant-dashboard/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Overview(ctx context.Context, viewer *identity.Session) (*Page, error)
	DepartmentPage(ctx context.Context, viewer *identity.Session, code string) (*Page, error)
	MtcEngBurauPage(ctx context.Context, viewer *identity.Session) (*Page, error)
	ApprovalsPage(ctx context.Context, viewer *identity.Session) (*Page, error)
}

// Handler serves page payloads. Every route sits behind the access gate,
// so a session is always present in the request context.
type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: service}
}

// Overview handles GET /dashboard
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, func(ctx context.Context, viewer *identity.Session) (*Page, error) {
		return h.Service.Overview(ctx, viewer)
	})
}

// DepartmentDetail handles GET /dashboard/{department}
func (h *Handler) DepartmentDetail(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "department")
	h.render(w, r, func(ctx context.Context, viewer *identity.Session) (*Page, error) {
		return h.Service.DepartmentPage(ctx, viewer, code)
	})
}

// MtcEngBurau handles GET /dashboard/mtceng-burau
func (h *Handler) MtcEngBurau(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.Service.MtcEngBurauPage)
}

// Approvals handles GET /approvals
func (h *Handler) Approvals(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.Service.ApprovalsPage)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, build func(context.Context, *identity.Session) (*Page, error)) {
	page, err := build(r.Context(), internal.SessionFromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, page)
}
