package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/frahmantamala/plant-dashboard/internal/core/identity"
)

// Resolver finds the session for a request from the session cookie or a
// bearer token.
type Resolver struct {
	service    ServiceAPI
	cookieName string
	logger     *slog.Logger
}

func NewResolver(service ServiceAPI, cookieName string, lg *slog.Logger) *Resolver {
	if lg == nil {
		lg = slog.Default()
	}
	return &Resolver{service: service, cookieName: cookieName, logger: lg}
}

// Resolve returns (nil, nil) for anonymous callers and bad tokens. Only
// repository failures are returned as errors.
func (res *Resolver) Resolve(r *http.Request) (*identity.Session, error) {
	token := res.tokenFrom(r)
	if token == "" {
		return nil, nil
	}

	claims, err := res.service.ValidateAccessToken(token)
	if err != nil {
		res.logger.DebugContext(r.Context(), "ignoring invalid session token", "error", err)
		return nil, nil
	}

	return res.service.SessionForClaims(r.Context(), claims)
}

func (res *Resolver) tokenFrom(r *http.Request) string {
	if c, err := r.Cookie(res.cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
