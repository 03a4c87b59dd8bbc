package access

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/frahmantamala/plant-dashboard/internal"
	"github.com/frahmantamala/plant-dashboard/internal/core/identity"
	"github.com/frahmantamala/plant-dashboard/internal/transport"
)

// SessionResolver loads the session for a request.
// It returns (nil, nil) when the caller is not signed in; a non-nil error
// means the lookup itself failed.
type SessionResolver interface {
	Resolve(r *http.Request) (*identity.Session, error)
}

type SessionResolverFunc func(r *http.Request) (*identity.Session, error)

func (f SessionResolverFunc) Resolve(r *http.Request) (*identity.Session, error) {
	return f(r)
}

// DecisionRecorder observes every gate decision.
type DecisionRecorder interface {
	RecordDecision(resource string, outcome string)
}

type Gate struct {
	*transport.BaseHandler
	resolver SessionResolver
	policy   Policy
	paths    Paths
	recorder DecisionRecorder
}

type Option func(*Gate)

func WithPaths(p Paths) Option {
	return func(g *Gate) {
		if p.SignIn != "" {
			g.paths.SignIn = p.SignIn
		}
		if p.Fallback != "" {
			g.paths.Fallback = p.Fallback
		}
	}
}

func WithRecorder(rec DecisionRecorder) Option {
	return func(g *Gate) { g.recorder = rec }
}

func NewGate(resolver SessionResolver, policy Policy, lg *slog.Logger, opts ...Option) *Gate {
	if policy == nil {
		policy = DefaultPolicy()
	}
	g := &Gate{
		BaseHandler: transport.NewBaseHandler(lg),
		resolver:    resolver,
		policy:      policy,
		paths:       DefaultPaths(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gate) Policy() Policy {
	return g.policy
}

// Protect guards a page. Denied requests get a 302 and the wrapped handler
// is never called.
func (g *Gate) Protect(res Resource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := g.resolve(w, r)
			if !ok {
				return
			}

			decision := g.paths.Decide(session, g.policy.RolesFor(res))
			if decision.Outcome == RedirectFallback && samePath(r.URL.Path, decision.Location) {
				// the fallback page itself refuses this role
				decision = Decision{Outcome: RedirectSignIn, Location: g.paths.SignIn}
			}
			g.record(res, decision)

			if !decision.Allowed() {
				g.Logger.InfoContext(r.Context(), "page access denied",
					"resource", res,
					"outcome", decision.Outcome.String(),
					"path", r.URL.Path)
				http.Redirect(w, r, decision.Location, http.StatusFound)
				return
			}

			next.ServeHTTP(w, r.WithContext(internal.ContextWithSession(r.Context(), session)))
		})
	}
}

// Require guards an API route, answering 401 or 403 instead of redirecting.
func (g *Gate) Require(res Resource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := g.resolve(w, r)
			if !ok {
				return
			}

			decision := g.paths.Decide(session, g.policy.RolesFor(res))
			g.record(res, decision)

			switch decision.Outcome {
			case RedirectSignIn:
				g.HandleServiceError(w, internal.NewUnauthorizedError("authentication required", internal.ErrCodeUnauthorizedAccess))
				return
			case RedirectFallback:
				g.Logger.WarnContext(r.Context(), "access denied: role not allowed",
					"user_id", session.ID,
					"role", session.Role,
					"resource", res)
				g.HandleServiceError(w, internal.ErrForbiddenRole)
				return
			}

			next.ServeHTTP(w, r.WithContext(internal.ContextWithSession(r.Context(), session)))
		})
	}
}

// Authenticate stores the session in the context when there is one and
// never rejects the request.
func (g *Gate) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := g.resolve(w, r)
		if !ok {
			return
		}
		if session != nil {
			r = r.WithContext(internal.ContextWithSession(r.Context(), session))
		}
		next.ServeHTTP(w, r)
	})
}

// resolve reuses a session stored by an outer gate so nested route groups
// hit the resolver once per request.
func (g *Gate) resolve(w http.ResponseWriter, r *http.Request) (*identity.Session, bool) {
	if s := internal.SessionFromContext(r.Context()); s != nil {
		return s, true
	}
	session, err := g.resolver.Resolve(r)
	if err != nil {
		g.Logger.ErrorContext(r.Context(), "session resolution failed", "error", err, "path", r.URL.Path)
		g.HandleServiceError(w, internal.NewInternalError("failed to resolve session", err))
		return nil, false
	}
	return session, true
}

func (g *Gate) record(res Resource, d Decision) {
	if g.recorder != nil {
		g.recorder.RecordDecision(string(res), d.Outcome.String())
	}
}

func samePath(a, b string) bool {
	return strings.TrimSuffix(a, "/") == strings.TrimSuffix(b, "/")
}
