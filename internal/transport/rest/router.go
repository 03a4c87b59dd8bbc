package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/plant-dashboard/api"
	"github.com/frahmantamala/plant-dashboard/internal/access"
	"github.com/frahmantamala/plant-dashboard/internal/auth"
	"github.com/frahmantamala/plant-dashboard/internal/category"
	"github.com/frahmantamala/plant-dashboard/internal/dashboard"
	"github.com/frahmantamala/plant-dashboard/internal/department"
	"github.com/frahmantamala/plant-dashboard/internal/equipment"
	"github.com/frahmantamala/plant-dashboard/internal/report"
	"github.com/frahmantamala/plant-dashboard/internal/transport/middleware"
	"github.com/frahmantamala/plant-dashboard/internal/transport/swagger"
	"github.com/frahmantamala/plant-dashboard/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

type Handlers struct {
	Auth       *auth.Handler
	User       *user.Handler
	Category   *category.Handler
	Department *department.Handler
	Equipment  *equipment.Handler
	Report     *report.Handler
	Dashboard  *dashboard.Handler
	Health     *HealthHandler
}

type Options struct {
	Gate           *access.Gate
	AllowedOrigins string
	TrustProxy     bool
	SignInPath     string
	SignInLimiter  *middleware.RateLimiter
	HTTPRecorder   middleware.HTTPRecorder
	MetricsPath    string
	Metrics        http.Handler
	Logger         *slog.Logger
}

func NewRouter(h Handlers, opts Options) *chi.Mux {
	router := chi.NewRouter()
	RegisterAllRoutes(router, h, opts)
	return router
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options) {
	gate := opts.Gate

	// Apply global middleware
	if opts.TrustProxy {
		router.Use(chiMiddleware.RealIP)
	}
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(opts.Logger))
	router.Use(middleware.SecurityHeaders)
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware(opts.Logger, opts.HTTPRecorder))

	router.Get(swagger.SpecPath, swagger.SpecHandler(api.OpenAPISpec))
	router.Handle("/swagger/*", swagger.Handler())

	if opts.Metrics != nil && opts.MetricsPath != "" {
		router.Handle(opts.MetricsPath, opts.Metrics)
	}

	signInLimit := func(next http.Handler) http.Handler { return next }
	if opts.SignInLimiter != nil {
		signInLimit = opts.SignInLimiter.Middleware
	}

	// Page routes answer with redirects, never with error bodies.
	router.Get("/", http.RedirectHandler("/dashboard", http.StatusFound).ServeHTTP)
	signInPath := opts.SignInPath
	if signInPath == "" {
		signInPath = access.SignInPath
	}
	router.Get(signInPath, h.Auth.SignInPage)
	router.With(signInLimit).Post(signInPath, h.Auth.SignIn)
	router.Post("/auth/signout", h.Auth.SignOut)

	router.Route("/dashboard", func(dr chi.Router) {
		// shared layout gate: any signed-in role
		dr.Use(gate.Protect(access.PageDashboard))
		dr.Use(middleware.SessionContext)

		dr.Get("/", h.Dashboard.Overview)
		dr.With(gate.Protect(access.PageMtcEngBurau)).Get("/"+department.MtcEngBurau, h.Dashboard.MtcEngBurau)
		dr.With(gate.Protect(access.PageDepartment)).Get("/{department}", h.Dashboard.DepartmentDetail)
	})

	router.With(gate.Protect(access.PageApprovals), middleware.SessionContext).Get("/approvals", h.Dashboard.Approvals)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health.Health)
		r.Get("/ping", h.Health.Ping)

		r.Route("/auth", func(sr chi.Router) {
			sr.With(signInLimit).Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		r.Get("/categories", h.Category.GetCategories)
		r.Get("/categories/{key}", h.Category.GetCategory)

		// any signed-in role
		r.Group(func(pr chi.Router) {
			pr.Use(gate.Require(access.PageDashboard))
			pr.Use(middleware.SessionContext)

			pr.Get("/users/me", h.User.GetCurrentUser)

			pr.Get("/departments", h.Department.ListDepartments)
			pr.Get("/departments/{code}", h.Department.GetDepartment)

			pr.Route("/equipment", func(er chi.Router) {
				er.Get("/", h.Equipment.ListEquipment)
				er.Get("/{id}", h.Equipment.GetEquipment)
				er.Get("/{id}/history", h.Equipment.GetHistory)
				er.With(gate.Require(access.ActionEquipmentStatus)).Patch("/{id}/status", h.Equipment.UpdateStatus)
			})

			pr.Route("/reports", func(rr chi.Router) {
				rr.Post("/", h.Report.SubmitReport)
				rr.Get("/", h.Report.ListReports)
				rr.With(gate.Require(access.PageApprovals)).Get("/pending", h.Report.ListPending)
				rr.With(gate.Require(access.ActionReportExport)).Get("/export", h.Report.ExportReports)

				rr.Group(func(mr chi.Router) {
					mr.Use(gate.Require(access.ActionReportApprove))
					mr.Patch("/{id}/approve", h.Report.ApproveReport)
					mr.Patch("/{id}/reject", h.Report.RejectReport)
				})
			})
		})
	})
}
