package middleware

import (
	"context"
	"net/http"

	"github.com/frahmantamala/plant-dashboard/pkg/logger"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(RequestIDHeader)
		if reqID == "" || len(reqID) > 64 {
			reqID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		ctx = logger.With(ctx, "request_id", reqID)

		w.Header().Set(RequestIDHeader, reqID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
