package internal

import (
	"context"
	"time"

	"github.com/frahmantamala/plant-dashboard/internal/core/identity"
)

type ctxKey string

const ContextSessionKey ctxKey = "session"

// SessionFromContext returns the session stored by the access gate, or nil.
func SessionFromContext(ctx context.Context) *identity.Session {
	if ctx == nil {
		return nil
	}
	if s, ok := ctx.Value(ContextSessionKey).(*identity.Session); ok {
		return s
	}
	return nil
}

func ContextWithSession(ctx context.Context, s *identity.Session) context.Context {
	return context.WithValue(ctx, ContextSessionKey, s)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
