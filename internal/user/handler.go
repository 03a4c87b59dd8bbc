package user

import (
	"context"
	"net/http"

	"github.com/frahmantamala/plant-dashboard/internal"
	"github.com/frahmantamala/plant-dashboard/internal/transport"
)

type ServiceAPI interface {
	GetByID(ctx context.Context, userID int64) (*User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// GetCurrentUser handles GET /users/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	session := internal.SessionFromContext(r.Context())
	if session == nil {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return
	}

	u, err := h.Service.GetByID(r.Context(), session.ID)
	if err != nil {
		h.Logger.Error("GetCurrentUser: service GetByID failed", "user_id", session.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ProfileResponse{
		ID:             u.ID,
		Username:       u.Username,
		Name:           u.Name,
		Role:           u.Role,
		DepartmentID:   u.DepartmentID,
		DepartmentName: u.DepartmentName,
		SessionExpires: session.ExpiresAt,
	})
}
