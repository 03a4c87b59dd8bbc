package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/plant-dashboard/internal"
	"github.com/frahmantamala/plant-dashboard/internal/access"
	"github.com/frahmantamala/plant-dashboard/internal/auth"
	authPostgres "github.com/frahmantamala/plant-dashboard/internal/auth/postgres"
	"github.com/frahmantamala/plant-dashboard/internal/cache"
	"github.com/frahmantamala/plant-dashboard/internal/category"
	categoryPostgres "github.com/frahmantamala/plant-dashboard/internal/category/postgres"
	"github.com/frahmantamala/plant-dashboard/internal/core/events"
	"github.com/frahmantamala/plant-dashboard/internal/dashboard"
	dashboardPostgres "github.com/frahmantamala/plant-dashboard/internal/dashboard/postgres"
	"github.com/frahmantamala/plant-dashboard/internal/department"
	departmentPostgres "github.com/frahmantamala/plant-dashboard/internal/department/postgres"
	"github.com/frahmantamala/plant-dashboard/internal/equipment"
	equipmentPostgres "github.com/frahmantamala/plant-dashboard/internal/equipment/postgres"
	"github.com/frahmantamala/plant-dashboard/internal/metrics"
	"github.com/frahmantamala/plant-dashboard/internal/report"
	reportPostgres "github.com/frahmantamala/plant-dashboard/internal/report/postgres"
	"github.com/frahmantamala/plant-dashboard/internal/telemetry"
	"github.com/frahmantamala/plant-dashboard/internal/transport"
	"github.com/frahmantamala/plant-dashboard/internal/transport/middleware"
	"github.com/frahmantamala/plant-dashboard/internal/transport/rest"
	"github.com/frahmantamala/plant-dashboard/internal/user"
	userPostgres "github.com/frahmantamala/plant-dashboard/internal/user/postgres"
	"github.com/frahmantamala/plant-dashboard/pkg/logger"

	"github.com/go-redis/redis/v8"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server serving dashboard pages and the REST API`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer(cmd.Context())
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	Redis    *redis.Client
	Bus      *events.EventBus
	Limiter  *middleware.RateLimiter
	Handler  http.Handler
	Tracing  telemetry.ShutdownFunc
	Logger   *slog.Logger
	Registry *prometheus.Registry
}

func startHTTPServer(parent context.Context) {
	if parent == nil {
		parent = context.Background()
	}
	deps, err := initializeDependencies(parent)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Handler,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.close(ctx)
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			deps.close(context.Background())
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

// close releases everything in reverse order of construction. Pending event
// handlers are drained before the database goes away.
func (d *Dependencies) close(ctx context.Context) {
	if d.Limiter != nil {
		d.Limiter.Stop()
	}
	if d.Bus != nil {
		d.Bus.Wait()
	}
	if d.Tracing != nil {
		if err := d.Tracing(ctx); err != nil {
			d.Logger.Error("Tracer shutdown error", "error", err)
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("Redis close error", "error", err)
		}
	}
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			d.Logger.Error("Database close error", "error", err)
		}
	}
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Format, config.Observability.Logging.Level)
	lg := logger.L()

	deps := &Dependencies{Config: config, Logger: lg}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.DB = db

	gormDB, err := initGorm(db)
	if err != nil {
		deps.close(ctx)
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}
	deps.Gorm = gormDB

	var summaryCache cache.Cache = cache.Noop{}
	if config.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, config.Redis.Address, config.Redis.Password, config.Redis.DB)
		if err != nil {
			deps.close(ctx)
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		deps.Redis = client
		summaryCache = cache.NewRedisCache(client, "plant-dashboard")
	}

	tracingShutdown, err := telemetry.Setup(ctx, config.Observability.Tracing, lg)
	if err != nil {
		deps.close(ctx)
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}
	deps.Tracing = tracingShutdown

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	deps.Registry = registry
	collector := metrics.NewCollector(registry)

	bus := events.NewEventBus(lg)
	deps.Bus = bus
	collector.CountEvents(bus)

	policy := access.DefaultPolicy()

	// repositories
	userRepo := userPostgres.NewRepository(db)
	authRepo := authPostgres.NewRepository(gormDB)
	categoryRepo := categoryPostgres.NewCategoryRepository(gormDB)
	departmentRepo := departmentPostgres.NewDepartmentRepository(gormDB)
	equipmentRepo := equipmentPostgres.NewEquipmentRepository(gormDB)
	reportRepo := reportPostgres.NewReportRepository(gormDB)
	summaryRepo := dashboardPostgres.NewSummaryRepository(db)

	// services
	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokenGen, config.Security.BCryptCost, lg)
	userService := user.NewService(userRepo, authService.HashPassword)
	categoryService := category.NewService(categoryRepo, lg)
	departmentService := department.NewService(departmentRepo, lg)
	equipmentService := equipment.NewService(equipmentRepo, departmentService, bus, lg)
	reportService := report.NewService(reportRepo, categoryService, departmentService, policy, bus, lg)
	dashboardService := dashboard.NewService(
		summaryRepo, departmentService, equipmentService, reportService, policy, lg,
		dashboard.WithCache(summaryCache, config.Redis.DashboardTTL),
		dashboard.WithCacheRecorder(collector),
	)
	dashboardService.Subscribe(bus)

	// handlers
	base := transport.NewBaseHandler(lg)
	authHandler := auth.NewHandler(base, authService, auth.CookieConfig{
		Name:   config.Security.SessionCookieName,
		Secure: config.Security.SecureCookies,
	})
	authHandler.AfterSignIn = config.Access.FallbackPath
	authHandler.AfterSignOut = config.Access.SignInPath
	authHandler.SignInAction = config.Access.SignInPath

	checks := map[string]rest.Check{
		"postgres": func(ctx context.Context) error { return db.PingContext(ctx) },
	}
	if deps.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return deps.Redis.Ping(ctx).Err() }
	}

	handlers := rest.Handlers{
		Auth:       authHandler,
		User:       user.NewHandler(base, userService),
		Category:   category.NewHandler(base, categoryService),
		Department: department.NewHandler(base, departmentService),
		Equipment:  equipment.NewHandler(base, equipmentService),
		Report:     report.NewHandler(base, reportService, departmentService),
		Dashboard:  dashboard.NewHandler(base, dashboardService),
		Health:     rest.NewHealthHandler(checks),
	}

	gate := access.NewGate(
		auth.NewResolver(authService, config.Security.SessionCookieName, lg),
		policy,
		lg,
		access.WithPaths(access.Paths{SignIn: config.Access.SignInPath, Fallback: config.Access.FallbackPath}),
		access.WithRecorder(collector),
	)

	limiter := middleware.NewRateLimiter(config.RateLimit.SignInPerMinute, config.RateLimit.SignInBurst, collector, lg)
	deps.Limiter = limiter

	opts := rest.Options{
		Gate:           gate,
		AllowedOrigins: config.Server.AllowedOrigins,
		TrustProxy:     config.Server.TrustProxy,
		SignInPath:     config.Access.SignInPath,
		SignInLimiter:  limiter,
		HTTPRecorder:   collector,
		Logger:         lg,
	}
	if config.Observability.Metrics.Enabled {
		opts.MetricsPath = config.Observability.Metrics.Path
		opts.Metrics = metrics.Handler(registry)
	}

	var handler http.Handler = rest.NewRouter(handlers, opts)
	if config.Observability.Tracing.Enabled {
		handler = telemetry.WrapHandler(handler, config.Observability.Tracing.ServiceName)
	}
	deps.Handler = handler

	return deps, nil
}

// initDB opens the pgx-backed pool shared by sqlx and gorm.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
}
