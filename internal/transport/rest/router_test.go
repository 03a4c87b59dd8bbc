package rest_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/frahmantamala/plant-dashboard/internal/access"
	"github.com/frahmantamala/plant-dashboard/internal/auth"
	"github.com/frahmantamala/plant-dashboard/internal/category"
	"github.com/frahmantamala/plant-dashboard/internal/core/identity"
	"github.com/frahmantamala/plant-dashboard/internal/dashboard"
	"github.com/frahmantamala/plant-dashboard/internal/department"
	"github.com/frahmantamala/plant-dashboard/internal/equipment"
	"github.com/frahmantamala/plant-dashboard/internal/report"
	"github.com/frahmantamala/plant-dashboard/internal/transport"
	"github.com/frahmantamala/plant-dashboard/internal/transport/middleware"
	"github.com/frahmantamala/plant-dashboard/internal/transport/rest"
	"github.com/frahmantamala/plant-dashboard/internal/user"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "REST Router Suite")
}

// stubPages records which page builder ran.
type stubPages struct {
	mu    sync.Mutex
	calls []string
}

func (s *stubPages) called(name string) (*dashboard.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, name)
	return &dashboard.Page{Layout: dashboard.Layout{Name: name}, Content: map[string]string{"page": name}}, nil
}

func (s *stubPages) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *stubPages) Overview(ctx context.Context, viewer *identity.Session) (*dashboard.Page, error) {
	return s.called("overview")
}

func (s *stubPages) DepartmentPage(ctx context.Context, viewer *identity.Session, code string) (*dashboard.Page, error) {
	return s.called("department:" + code)
}

func (s *stubPages) MtcEngBurauPage(ctx context.Context, viewer *identity.Session) (*dashboard.Page, error) {
	return s.called("mtceng-burau")
}

func (s *stubPages) ApprovalsPage(ctx context.Context, viewer *identity.Session) (*dashboard.Page, error) {
	return s.called("approvals")
}

type decisionLog struct {
	mu      sync.Mutex
	entries []string
}

func (d *decisionLog) RecordDecision(resource, outcome string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = append(d.entries, resource+"="+outcome)
}

// headerResolver takes the role from X-Test-Role; "boom" simulates a
// failing session store.
var headerResolver = access.SessionResolverFunc(func(r *http.Request) (*identity.Session, error) {
	role := r.Header.Get("X-Test-Role")
	switch role {
	case "":
		return nil, nil
	case "boom":
		return nil, errors.New("session store unavailable")
	}
	return &identity.Session{Identity: identity.Identity{ID: 7, Username: "tester"}, Role: identity.Role(role)}, nil
})

var _ = Describe("Router", func() {
	var (
		router    *chi.Mux
		pages     *stubPages
		decisions *decisionLog
		limiter   *middleware.RateLimiter
		opts      rest.Options
		handlers  rest.Handlers
	)

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		base := transport.NewBaseHandler(lg)
		pages = &stubPages{}
		decisions = &decisionLog{}
		limiter = middleware.NewRateLimiter(60, 1, nil, lg)
		DeferCleanup(limiter.Stop)

		gate := access.NewGate(headerResolver, access.DefaultPolicy(), lg, access.WithRecorder(decisions))

		handlers = rest.Handlers{
			Auth:       auth.NewHandler(base, nil, auth.CookieConfig{}),
			User:       user.NewHandler(base, nil),
			Category:   category.NewHandler(base, nil),
			Department: department.NewHandler(base, nil),
			Equipment:  equipment.NewHandler(base, nil),
			Report:     report.NewHandler(base, nil, nil),
			Dashboard:  dashboard.NewHandler(base, pages),
			Health: rest.NewHealthHandler(map[string]rest.Check{
				"postgres": func(ctx context.Context) error { return nil },
			}),
		}
		opts = rest.Options{
			Gate:           gate,
			AllowedOrigins: "*",
			SignInLimiter:  limiter,
			MetricsPath:    "/metrics",
			Metrics:        http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("# metrics")) }),
			Logger:         lg,
		}
		router = rest.NewRouter(handlers, opts)
	})

	do := func(method, path, role string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if role != "" {
			req.Header.Set("X-Test-Role", role)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	Describe("/approvals", func() {
		It("redirects anonymous visitors to sign in without rendering", func() {
			rec := do(http.MethodGet, "/approvals", "")
			Expect(rec.Code).To(Equal(http.StatusFound))
			Expect(rec.Header().Get("Location")).To(Equal("/auth/signin"))
			Expect(pages.Calls()).To(BeEmpty())
		})

		DescribeTable("redirects roles outside the allow-list to the dashboard",
			func(role string) {
				rec := do(http.MethodGet, "/approvals", role)
				Expect(rec.Code).To(Equal(http.StatusFound))
				Expect(rec.Header().Get("Location")).To(Equal("/dashboard"))
				Expect(pages.Calls()).To(BeEmpty())
			},
			Entry("technician", "TECHNICIAN"),
			Entry("worker", "WORKER"),
			Entry("unknown role", "GUEST"),
		)

		DescribeTable("renders for admins and planners",
			func(role string) {
				rec := do(http.MethodGet, "/approvals", role)
				Expect(rec.Code).To(Equal(http.StatusOK))
				Expect(rec.Header().Get("Location")).To(BeEmpty())
				Expect(pages.Calls()).To(Equal([]string{"approvals"}))
			},
			Entry("admin", "ADMIN"),
			Entry("planner", "PLANNER"),
		)

		It("records each decision", func() {
			do(http.MethodGet, "/approvals", "WORKER")
			Expect(decisions.entries).To(Equal([]string{"page:approvals=redirect_fallback"}))
		})

		It("surfaces session store failures as 500", func() {
			rec := do(http.MethodGet, "/approvals", "boom")
			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			Expect(rec.Header().Get("Location")).To(BeEmpty())
		})
	})

	Describe("/dashboard", func() {
		It("requires a session for every dashboard page", func() {
			for _, path := range []string{"/dashboard", "/dashboard/production", "/dashboard/mtceng-burau"} {
				rec := do(http.MethodGet, path, "")
				Expect(rec.Code).To(Equal(http.StatusFound), path)
				Expect(rec.Header().Get("Location")).To(Equal("/auth/signin"))
			}
		})

		It("serves the overview and department pages to any role", func() {
			Expect(do(http.MethodGet, "/dashboard", "WORKER").Code).To(Equal(http.StatusOK))
			Expect(do(http.MethodGet, "/dashboard/production", "TECHNICIAN").Code).To(Equal(http.StatusOK))
			Expect(pages.Calls()).To(Equal([]string{"overview", "department:production"}))
		})

		It("routes mtceng-burau to its dedicated page", func() {
			Expect(do(http.MethodGet, "/dashboard/mtceng-burau", "WORKER").Code).To(Equal(http.StatusOK))
			Expect(pages.Calls()).To(Equal([]string{"mtceng-burau"}))
		})

		It("ends the redirect chain at sign in for an unknown role", func() {
			for _, start := range []string{"/approvals", "/dashboard/production", "/dashboard"} {
				path, hops := start, 0
				for ; hops < 5; hops++ {
					rec := do(http.MethodGet, path, "GUEST")
					if rec.Code != http.StatusFound {
						Expect(rec.Code).To(Equal(http.StatusOK), start)
						break
					}
					path = rec.Header().Get("Location")
				}
				Expect(hops).To(BeNumerically("<", 5), start)
				Expect(path).To(Equal("/auth/signin"), start)
			}
			Expect(pages.Calls()).To(BeEmpty())
		})

		It("redirects the root to the dashboard", func() {
			rec := do(http.MethodGet, "/", "")
			Expect(rec.Code).To(Equal(http.StatusFound))
			Expect(rec.Header().Get("Location")).To(Equal("/dashboard"))
		})
	})

	Describe("API", func() {
		It("answers 401 and 403 instead of redirecting", func() {
			rec := do(http.MethodGet, "/api/v1/reports/pending", "")
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(rec.Body.String()).To(ContainSubstring("UNAUTHORIZED_ACCESS"))

			rec = do(http.MethodPatch, "/api/v1/reports/1/approve", "WORKER")
			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(rec.Body.String()).To(ContainSubstring("FORBIDDEN_ROLE"))

			rec = do(http.MethodPatch, "/api/v1/equipment/1/status", "WORKER")
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("serves health, docs and metrics", func() {
			Expect(do(http.MethodGet, "/api/v1/ping", "").Code).To(Equal(http.StatusOK))
			Expect(do(http.MethodGet, "/api/v1/health", "").Code).To(Equal(http.StatusOK))
			Expect(do(http.MethodGet, "/openapi.yml", "").Body.String()).To(ContainSubstring("openapi: 3.0.3"))
			Expect(do(http.MethodGet, "/metrics", "").Body.String()).To(Equal("# metrics"))
		})

		It("tags every response with a request id", func() {
			Expect(do(http.MethodGet, "/api/v1/ping", "").Header().Get(middleware.RequestIDHeader)).NotTo(BeEmpty())
		})

		It("throttles repeated sign-in attempts", func() {
			post := func() int {
				req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader("not json"))
				req.RemoteAddr = "10.0.0.1:5555"
				rec := httptest.NewRecorder()
				router.ServeHTTP(rec, req)
				return rec.Code
			}
			Expect(post()).To(Equal(http.StatusBadRequest))
			Expect(post()).To(Equal(http.StatusTooManyRequests))
		})

		It("ignores forwarded addresses unless the proxy is trusted", func() {
			post := func(forwarded string) int {
				req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader("not json"))
				req.RemoteAddr = "10.0.0.2:5555"
				req.Header.Set("X-Forwarded-For", forwarded)
				rec := httptest.NewRecorder()
				router.ServeHTTP(rec, req)
				return rec.Code
			}
			Expect(post("203.0.113.1")).To(Equal(http.StatusBadRequest))
			Expect(post("203.0.113.2")).To(Equal(http.StatusTooManyRequests))

			opts.TrustProxy = true
			router = rest.NewRouter(handlers, opts)
			Expect(post("203.0.113.3")).To(Equal(http.StatusBadRequest))
			Expect(post("203.0.113.4")).To(Equal(http.StatusBadRequest))
		})

		It("mounts sign in at the configured path", func() {
			opts.SignInPath = "/login"
			opts.Gate = access.NewGate(headerResolver, access.DefaultPolicy(), opts.Logger,
				access.WithPaths(access.Paths{SignIn: "/login"}))
			router = rest.NewRouter(handlers, opts)

			rec := do(http.MethodGet, "/approvals", "")
			Expect(rec.Header().Get("Location")).To(Equal("/login"))
			Expect(do(http.MethodGet, "/login", "").Code).To(Equal(http.StatusOK))
			Expect(do(http.MethodGet, "/auth/signin", "").Code).To(Equal(http.StatusNotFound))
		})
	})
})
