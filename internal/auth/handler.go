package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/plant-dashboard/internal"
	"github.com/frahmantamala/plant-dashboard/internal/transport"
)

type CookieConfig struct {
	Name   string
	Secure bool
}

type Handler struct {
	*transport.BaseHandler
	Service      ServiceAPI
	Cookie       CookieConfig
	AfterSignIn  string
	AfterSignOut string
	// SignInAction is where the sign-in form posts.
	SignInAction string
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI, cookie CookieConfig) *Handler {
	if cookie.Name == "" {
		cookie.Name = internal.DefaultSessionCookieName
	}
	return &Handler{
		BaseHandler:  baseHandler,
		Service:      svc,
		Cookie:       cookie,
		AfterSignIn:  internal.DefaultFallbackPath,
		AfterSignOut: internal.DefaultSignInPath,
		SignInAction: internal.DefaultSignInPath,
	}
}

// Login handles POST /api/v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("authentication failed", "username", dto.Username, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// RefreshToken handles POST /api/v1/auth/refresh
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	tokens, err := h.Service.RefreshTokens(r.Context(), dto.RefreshToken)
	if err != nil {
		h.Logger.Warn("token refresh failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// Logout handles POST /api/v1/auth/logout. Tokens are stateless, so this
// only checks the caller holds a valid one.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return
	}

	if _, err := h.Service.ValidateAccessToken(token); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type SignInPage struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Action      string `json:"action"`
	Error       string `json:"error,omitempty"`
}

// SignInPage handles GET /auth/signin
func (h *Handler) SignInPage(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, SignInPage{
		Title:       "Sign In | Plant Dashboard",
		Description: "Sign in to access the department dashboards",
		Action:      h.SignInAction,
	})
}

// SignIn handles POST /auth/signin with a form or JSON body and sets the
// session cookie on success.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	dto, err := h.readCredentials(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("sign in failed", "username", dto.Username, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.Cookie.Name,
		Value:    tokens.AccessToken,
		Path:     "/",
		Expires:  tokens.ExpiresAt,
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.AfterSignIn, http.StatusSeeOther)
}

// SignOut handles POST /auth/signout
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.Cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.AfterSignOut, http.StatusSeeOther)
}

func (h *Handler) readCredentials(r *http.Request) (LoginDTO, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			return LoginDTO{}, err
		}
		return LoginDTO{
			Username: r.PostFormValue("username"),
			Password: r.PostFormValue("password"),
		}, nil
	}

	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		return LoginDTO{}, errors.New("invalid json body")
	}
	return dto, nil
}
