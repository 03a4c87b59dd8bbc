package middleware

import (
	"net/http"

	"github.com/frahmantamala/plant-dashboard/internal"
	"github.com/frahmantamala/plant-dashboard/pkg/logger"
)

// SessionContext adds the resolved user to the request logger. It must run
// after the access gate has stored the session.
func SessionContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := internal.SessionFromContext(r.Context())
		if s == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := logger.With(r.Context(), "user_id", s.ID, "role", string(s.Role))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
