package equipment

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/plant-dashboard/internal"
	"github.com/frahmantamala/plant-dashboard/internal/core/identity"
	"github.com/frahmantamala/plant-dashboard/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListByDepartment(ctx context.Context, code string) ([]*Equipment, error)
	Get(ctx context.Context, id int64) (*Equipment, error)
	History(ctx context.Context, id int64) ([]*StatusChange, error)
	UpdateStatus(ctx context.Context, actor *identity.Session, id int64, dto UpdateStatusDTO) (*Equipment, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: service}
}

// ListEquipment handles GET /equipment?department=
func (h *Handler) ListEquipment(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListByDepartment(r.Context(), r.URL.Query().Get("department"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ListResponse{Equipment: items})
}

func (h *Handler) GetEquipment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.equipmentID(w, r)
	if !ok {
		return
	}
	e, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.equipmentID(w, r)
	if !ok {
		return
	}
	changes, err := h.Service.History(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, HistoryResponse{EquipmentID: id, Changes: changes})
}

// UpdateStatus handles PATCH /equipment/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.equipmentID(w, r)
	if !ok {
		return
	}

	var dto UpdateStatusDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e, err := h.Service.UpdateStatus(r.Context(), internal.SessionFromContext(r.Context()), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) equipmentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid equipment id")
		return 0, false
	}
	return id, true
}
