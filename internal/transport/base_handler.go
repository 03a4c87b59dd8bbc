package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/frahmantamala/plant-dashboard/internal"
	"github.com/frahmantamala/plant-dashboard/pkg/logger"
)

// BaseHandler is embedded by every feature handler and by the access gate.
type BaseHandler struct {
	Logger *slog.Logger
}

func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &BaseHandler{Logger: lg}
}

func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteAppError writes the {"error": {...}} envelope used by every API error.
func WriteAppError(w http.ResponseWriter, appErr *internal.AppError) error {
	status, body := appErr.ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}

// WriteError answers with the error envelope for a handler-level failure
// such as a malformed path parameter or body.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	appErr := errorForStatus(status, message)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("http error", "status", status, "message", message)
	} else {
		h.Logger.Debug("http error", "status", status, "message", message)
	}
	if err := WriteAppError(w, appErr); err != nil {
		h.Logger.Error("failed to encode error response", "error", err)
	}
}

func errorForStatus(status int, message string) *internal.AppError {
	var appErr *internal.AppError
	switch status {
	case http.StatusUnauthorized:
		appErr = internal.NewUnauthorizedError(message, internal.ErrCodeInvalidToken)
	case http.StatusForbidden:
		appErr = internal.NewForbiddenError(message, internal.ErrCodeUnauthorizedAccess)
	case http.StatusNotFound:
		appErr = internal.NewNotFoundError(message, "NOT_FOUND")
	case http.StatusConflict:
		appErr = internal.NewConflictError(message, "CONFLICT")
	case http.StatusTooManyRequests:
		appErr = internal.NewTooManyRequestsError(message)
	default:
		if status >= http.StatusInternalServerError {
			appErr = internal.NewInternalError(message, nil)
		} else {
			appErr = internal.NewValidationError(message, internal.ErrCodeValidationFailed)
		}
	}
	appErr.StatusCode = status
	return appErr
}

// ExtractTokenFromHeader returns the bearer token, or "" when absent.
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[7:])
}

// HandleServiceError maps *internal.AppError values to their status and envelope;
// anything else becomes a 500 without leaking the cause.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		h.Logger.Error("unhandled service error", "error", err)
		appErr = internal.NewInternalError("internal server error", err)
	} else if appErr.StatusCode >= http.StatusInternalServerError {
		h.Logger.Error("service error", "code", appErr.Code, "error", err)
	} else {
		h.Logger.Debug("request rejected", "code", appErr.Code, "reason", appErr.GetDetailedMessage())
	}
	if err := WriteAppError(w, appErr); err != nil {
		h.Logger.Error("failed to encode error response", "error", err)
	}
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
