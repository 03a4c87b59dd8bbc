package department

import (
	"context"
	"net/http"

	"github.com/frahmantamala/plant-dashboard/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context) ([]*Department, error)
	GetByCode(ctx context.Context, code string) (*Department, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: service}
}

type DepartmentsResponse struct {
	Departments []*Department `json:"departments"`
}

func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, DepartmentsResponse{Departments: departments})
}

func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	dept, err := h.Service.GetByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dept)
}
