package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/frahmantamala/plant-dashboard/internal"
	"github.com/frahmantamala/plant-dashboard/internal/transport"
)

// RecoveryMiddleware turns a handler panic into a 500 error envelope. The
// panic value is logged with the stack and never sent to the client.
// http.ErrAbortHandler is re-raised so net/http can abort the response.
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.ErrorContext(r.Context(), "panic recovered",
					"panic", fmt.Sprint(rec),
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()))

				_ = transport.WriteAppError(w, internal.NewInternalError("internal server error", fmt.Errorf("panic: %v", rec)))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
