package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/frahmantamala/plant-dashboard/internal/transport"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = ginkgo.Describe("Sign in flow", func() {
	var (
		mockRepo *mockUserRepository
		service  *Service
		handler  *Handler
		resolver *Resolver
	)

	ginkgo.BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		mockRepo = newMockUserRepository()
		tokenGen := NewJWTTokenGenerator("test-access-secret-0123456789abcdef", "test-refresh-secret-0123456789abcdef", 15*time.Minute, time.Hour)
		service = NewService(mockRepo, tokenGen, bcrypt.MinCost, lg)
		handler = NewHandler(transport.NewBaseHandler(lg), service, CookieConfig{Name: "session_token"})
		resolver = NewResolver(service, "session_token", lg)
	})

	signIn := func(username, password string) *httptest.ResponseRecorder {
		form := url.Values{"username": {username}, "password": {password}}
		req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		handler.SignIn(w, req)
		return w
	}

	ginkgo.It("sets an HttpOnly cookie and redirects to the dashboard", func() {
		w := signIn("worker", "correct_password")
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusSeeOther))
		gomega.Expect(w.Header().Get("Location")).To(gomega.Equal("/dashboard"))

		cookies := w.Result().Cookies()
		gomega.Expect(cookies).To(gomega.HaveLen(1))
		gomega.Expect(cookies[0].Name).To(gomega.Equal("session_token"))
		gomega.Expect(cookies[0].HttpOnly).To(gomega.BeTrue())

		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(cookies[0])
		session, err := resolver.Resolve(req)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(session.Username).To(gomega.Equal("worker"))
	})

	ginkgo.It("answers 401 on bad credentials without a cookie", func() {
		w := signIn("worker", "wrong")
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(w.Result().Cookies()).To(gomega.BeEmpty())
	})

	ginkgo.It("accepts JSON sign in bodies", func() {
		req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(`{"username":"admin","password":"correct_password"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		handler.SignIn(w, req)
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusSeeOther))
	})

	ginkgo.It("points the sign in form at the configured path", func() {
		w := httptest.NewRecorder()
		handler.SignInPage(w, httptest.NewRequest(http.MethodGet, "/auth/signin", nil))
		gomega.Expect(w.Body.String()).To(gomega.ContainSubstring(`"action":"/auth/signin"`))

		handler.SignInAction = "/login"
		w = httptest.NewRecorder()
		handler.SignInPage(w, httptest.NewRequest(http.MethodGet, "/login", nil))
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(w.Body.String()).To(gomega.ContainSubstring(`"action":"/login"`))
	})

	ginkgo.It("clears the cookie on sign out", func() {
		w := httptest.NewRecorder()
		handler.SignOut(w, httptest.NewRequest(http.MethodPost, "/auth/signout", nil))
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusSeeOther))
		gomega.Expect(w.Header().Get("Location")).To(gomega.Equal("/auth/signin"))
		gomega.Expect(w.Result().Cookies()[0].MaxAge).To(gomega.BeNumerically("<", 0))
	})

	ginkgo.Describe("Resolver", func() {
		ginkgo.It("returns no session without a token", func() {
			session, err := resolver.Resolve(httptest.NewRequest(http.MethodGet, "/", nil))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(session).To(gomega.BeNil())
		})

		ginkgo.It("returns no session for garbage tokens", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer not-a-jwt")
			session, err := resolver.Resolve(req)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(session).To(gomega.BeNil())
		})

		ginkgo.It("propagates repository failures", func() {
			tokens, err := service.Authenticate(context.Background(), LoginDTO{Username: "admin", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			mockRepo.setError(errors.New("database down"))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
			_, err = resolver.Resolve(req)
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("API", func() {
		ginkgo.It("logs in with JSON", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"admin","password":"correct_password"}`))
			w := httptest.NewRecorder()
			handler.Login(w, req)
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(w.Body.String()).To(gomega.ContainSubstring("access_token"))
		})

		ginkgo.It("rejects logout without a token", func() {
			w := httptest.NewRecorder()
			handler.Logout(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})
})
