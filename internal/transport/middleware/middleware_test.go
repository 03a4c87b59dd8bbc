package middleware_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/frahmantamala/plant-dashboard/internal/transport/middleware"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

type observation struct {
	method, route string
	status        int
}

type fakeRecorder struct {
	observations []observation
	throttled    int
}

func (f *fakeRecorder) RecordHTTPRequest(method, route string, statusCode int, d time.Duration) {
	f.observations = append(f.observations, observation{method, route, statusCode})
}

func (f *fakeRecorder) RecordThrottled() { f.throttled++ }

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true}`))
})

var _ = Describe("Middleware", func() {
	var (
		buf *bytes.Buffer
		lg  *slog.Logger
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		lg = slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	})

	Describe("RequestID", func() {
		It("keeps a caller supplied id and generates one otherwise", func() {
			var seen string
			h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = middleware.GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(middleware.RequestIDHeader, "abc-123")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			Expect(seen).To(Equal("abc-123"))
			Expect(rec.Header().Get(middleware.RequestIDHeader)).To(Equal("abc-123"))

			rec = httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			Expect(seen).To(HaveLen(36))
		})
	})

	Describe("RecoveryMiddleware", func() {
		It("turns a panic into a 500 error envelope", func() {
			h := middleware.RecoveryMiddleware(lg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic("kaboom")
			}))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			Expect(rec.Body.String()).To(ContainSubstring(`"error"`))
			Expect(rec.Body.String()).NotTo(ContainSubstring("kaboom"))
			Expect(buf.String()).To(ContainSubstring("panic recovered"))
		})
	})

	Describe("LoggingMiddleware", func() {
		It("reports the matched route pattern and filters secrets", func() {
			rec := &fakeRecorder{}
			r := chi.NewRouter()
			r.Use(middleware.LoggingMiddleware(lg, rec))
			r.Post("/reports/{id}", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":{"code":"X"}}`))
			})

			req := httptest.NewRequest(http.MethodPost, "/reports/42", strings.NewReader(`{"password":"hunter2","title":"t"}`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer secret-token")
			r.ServeHTTP(httptest.NewRecorder(), req)

			Expect(rec.observations).To(Equal([]observation{{http.MethodPost, "/reports/{id}", http.StatusBadRequest}}))
			Expect(buf.String()).NotTo(ContainSubstring("hunter2"))
			Expect(buf.String()).NotTo(ContainSubstring("secret-token"))
			Expect(buf.String()).To(ContainSubstring("[FILTERED]"))
		})

		It("redacts sign-in form fields and keeps the body readable", func() {
			var got string
			r := chi.NewRouter()
			r.Use(middleware.LoggingMiddleware(lg, nil))
			r.Post("/auth/signin", func(w http.ResponseWriter, r *http.Request) {
				Expect(r.ParseForm()).To(Succeed())
				got = r.PostForm.Get("password")
				http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			})

			req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader("username=admin&password=hunter2"))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			r.ServeHTTP(httptest.NewRecorder(), req)

			Expect(got).To(Equal("hunter2"))
			Expect(buf.String()).NotTo(ContainSubstring("hunter2"))
			Expect(buf.String()).To(ContainSubstring("username=admin"))
			Expect(buf.String()).To(ContainSubstring(`"location":"/dashboard"`))
		})
	})

	Describe("CORS", func() {
		It("echoes listed origins and answers preflight", func() {
			h := middleware.CORS("https://plant.example.com")(ok)

			req := httptest.NewRequest(http.MethodOptions, "/api/v1/reports", nil)
			req.Header.Set("Origin", "https://plant.example.com")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://plant.example.com"))
			Expect(rec.Header().Get("Access-Control-Allow-Credentials")).To(Equal("true"))
		})

		It("does not allow unknown origins", func() {
			h := middleware.CORS("https://plant.example.com")(ok)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", "https://evil.example.com")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
			Expect(rec.Code).To(Equal(http.StatusOK))
		})
	})

	Describe("RateLimiter", func() {
		It("limits per client and reports throttling", func() {
			rec := &fakeRecorder{}
			rl := middleware.NewRateLimiter(60, 2, rec, slog.New(slog.NewTextHandler(io.Discard, nil)))
			defer rl.Stop()
			h := rl.Middleware(ok)

			hit := func(addr string) *httptest.ResponseRecorder {
				req := httptest.NewRequest(http.MethodPost, "/auth/signin", nil)
				req.RemoteAddr = addr
				w := httptest.NewRecorder()
				h.ServeHTTP(w, req)
				return w
			}

			Expect(hit("10.0.0.1:1").Code).To(Equal(http.StatusOK))
			Expect(hit("10.0.0.1:2").Code).To(Equal(http.StatusOK))
			throttled := hit("10.0.0.1:3")
			Expect(throttled.Code).To(Equal(http.StatusTooManyRequests))
			Expect(throttled.Header().Get("Retry-After")).To(Equal("1"))
			Expect(throttled.Body.String()).To(ContainSubstring("TOO_MANY_REQUESTS"))

			Expect(hit("10.0.0.2:1").Code).To(Equal(http.StatusOK))
			Expect(rl.Len()).To(Equal(2))
			Expect(rec.throttled).To(Equal(1))
		})
	})

	Describe("SecurityHeaders", func() {
		It("sets the security headers", func() {
			rec := httptest.NewRecorder()
			middleware.SecurityHeaders(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			Expect(rec.Header().Get("X-Content-Type-Options")).To(Equal("nosniff"))
			Expect(rec.Header().Get("X-Frame-Options")).To(Equal("DENY"))
		})
	})
})
