package category

import (
	"context"
	"net/http"

	"github.com/frahmantamala/plant-dashboard/internal"
	"github.com/frahmantamala/plant-dashboard/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	GetAllCategories(ctx context.Context) ([]CategoryResponse, error)
	GetCategoryByKey(ctx context.Context, key DataCategory) (*CategoryResponse, error)
	IsValidCategory(ctx context.Context, key DataCategory) bool
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: service}
}

// GetCategories handles GET /api/v1/categories; only active categories are listed.
func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.GetAllCategories(r.Context())
	if err != nil {
		h.HandleServiceError(w, internal.NewInternalError("failed to get categories", err))
		return
	}
	h.WriteJSON(w, http.StatusOK, CategoriesResponse{Categories: categories})
}

// GetCategory handles GET /api/v1/categories/{key}.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	key, ok := Parse(chi.URLParam(r, "key"))
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidCategory)
		return
	}
	c, err := h.Service.GetCategoryByKey(r.Context(), key)
	if err != nil {
		h.HandleServiceError(w, internal.NewInternalError("failed to get category", err))
		return
	}
	if c == nil {
		h.WriteError(w, http.StatusNotFound, "category not found or inactive")
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}
