package access

import "github.com/frahmantamala/plant-dashboard/internal/core/identity"

type Outcome int

const (
	Allow Outcome = iota
	RedirectSignIn
	RedirectFallback
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case RedirectSignIn:
		return "redirect_sign_in"
	case RedirectFallback:
		return "redirect_fallback"
	default:
		return "unknown"
	}
}

// Decision is the result of checking a session against an allow-list.
// Location is empty when Outcome is Allow.
type Decision struct {
	Outcome  Outcome
	Location string
}

func (d Decision) Allowed() bool {
	return d.Outcome == Allow
}

const (
	SignInPath   = "/auth/signin"
	FallbackPath = "/dashboard"
)

// Paths are the redirect targets used for denied requests.
type Paths struct {
	SignIn   string
	Fallback string
}

func DefaultPaths() Paths {
	return Paths{SignIn: SignInPath, Fallback: FallbackPath}
}

// Decide checks a session against the default redirect paths.
func Decide(session *identity.Session, allowed RoleSet) Decision {
	return DefaultPaths().Decide(session, allowed)
}

func (p Paths) Decide(session *identity.Session, allowed RoleSet) Decision {
	if session == nil {
		return Decision{Outcome: RedirectSignIn, Location: p.SignIn}
	}
	if !allowed.Contains(session.Role) {
		return Decision{Outcome: RedirectFallback, Location: p.Fallback}
	}
	return Decision{Outcome: Allow}
}
