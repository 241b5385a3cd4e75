package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/servicedesk/servicedesk/internal/app"
	"github.com/servicedesk/servicedesk/internal/auth"
	"github.com/servicedesk/servicedesk/internal/complaints"
	"github.com/servicedesk/servicedesk/internal/dashboard"
	"github.com/servicedesk/servicedesk/internal/employees"
	"github.com/servicedesk/servicedesk/internal/grc"
	"github.com/servicedesk/servicedesk/internal/observability"
	"github.com/servicedesk/servicedesk/internal/platform/cache"
	"github.com/servicedesk/servicedesk/internal/platform/db"
	"github.com/servicedesk/servicedesk/internal/rbac"
	"github.com/servicedesk/servicedesk/internal/shared"
	"github.com/servicedesk/servicedesk/internal/stock"
	"github.com/servicedesk/servicedesk/jobs"
	"github.com/servicedesk/servicedesk/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.Postgres("api"))
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.Redis())
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionName, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	metrics := observability.NewMetrics()

	auditLogger := shared.NewAuditLogger(dbpool)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)

	rbacService := rbac.NewService(rbac.NewPGRoleSource(dbpool), rbac.DefaultRoleScopes())
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}

	authService := auth.NewService(auth.NewRepository(dbpool))
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	dashboardCache := dashboard.NewCache(redisClient, cfg.DashboardCacheTTL)
	dashboardService := dashboard.NewService(dashboard.NewRepository(dbpool), dashboardCache, logger)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService, rbacMiddleware)

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(reportClient, logger)

	grcService := grc.NewService(grc.NewRepository(dbpool, cfg.GRCCompany), auditLogger, dashboardService, reportClient, logger)
	grcService.ObserveUploads(metrics)
	grcHandler := grc.NewHandler(logger, grcService, rbacMiddleware, cfg.UploadMaxBytes)

	stockService := stock.NewService(stock.NewRepository(dbpool), auditLogger, idempotencyStore, dashboardService, logger)
	stockHandler := stock.NewHandler(logger, stockService, rbacMiddleware)

	complaintsService := complaints.NewService(complaints.NewRepository(dbpool), logger)
	complaintsHandler := complaints.NewHandler(logger, complaintsService, rbacMiddleware)

	employeesService := employees.NewService(employees.NewRepository(dbpool), auditLogger, logger)
	employeesHandler := employees.NewHandler(logger, employeesService, rbacMiddleware)

	inspector := asynq.NewInspector(cfg.Redis().AsynqOpt())
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Metrics:        metrics,
		Readiness: map[string]app.Pinger{
			"postgres":  dbpool,
			"redis":     cache.Pinger{Client: redisClient},
			"gotenberg": reportClient,
		},
		AuthHandler:        authHandler,
		DashboardHandler:   dashboardHandler,
		GRCHandler:         grcHandler,
		StockHandler:       stockHandler,
		ComplaintsHandler:  complaintsHandler,
		EmployeesHandler:   employeesHandler,
		PermissionsHandler: rbac.NewPermissionsHandler(logger, rbacMiddleware),
		ReportHandler:      reportHandler,
		JobHandler:         jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := dashboardService.Warm(warmCtx); err != nil {
			logger.Warn("initial dashboard warmup", slog.Any("error", err))
		}
	}()

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
