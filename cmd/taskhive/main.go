package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/taskhive/taskhive/internal/app"
	"github.com/taskhive/taskhive/internal/auth"
	"github.com/taskhive/taskhive/internal/calendar"
	"github.com/taskhive/taskhive/internal/export"
	"github.com/taskhive/taskhive/internal/observability"
	"github.com/taskhive/taskhive/internal/platform/cache"
	"github.com/taskhive/taskhive/internal/platform/db"
	"github.com/taskhive/taskhive/internal/projects"
	"github.com/taskhive/taskhive/internal/rbac"
	"github.com/taskhive/taskhive/internal/shared"
	"github.com/taskhive/taskhive/internal/tasks"
	"github.com/taskhive/taskhive/internal/users"
	"github.com/taskhive/taskhive/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokenIssuer := auth.NewTokenIssuer(cfg.AuthSecret, cfg.AccessTokenTTL)
	sessionStore := auth.NewSessionStore(redisClient, cfg.RefreshTokenTTL)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokenIssuer, sessionStore)
	authHandler := auth.NewHandler(logger, authService)

	auditLogger := shared.NewAuditLogger(pool)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, auditLogger)

	rbacMiddleware := rbac.Middleware{Roles: usersRepo, Logger: logger}
	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware)
	permissionsHandler := rbac.NewPermissionsHandler(rbacMiddleware, usersRepo)

	projectsRepo := projects.NewRepository(pool)
	projectsService := projects.NewService(projectsRepo, auditLogger)
	projectsHandler := projects.NewHandler(logger, projectsService, rbacMiddleware)

	tasksRepo := tasks.NewRepository(pool)
	tasksService := tasks.NewService(tasksRepo, auditLogger)
	tasksHandler := tasks.NewHandler(logger, tasksService, rbacMiddleware)

	calendarRepo := calendar.NewRepository(pool)
	calendarService := calendar.NewService(calendarRepo)
	calendarHandler := calendar.NewHandler(logger, calendarService, rbacMiddleware)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	exportRepo := export.NewRepository(pool)
	exportService := export.NewService(exportRepo, jobsClient, auditLogger, cfg.ExportDir)
	exportHandler := export.NewHandler(logger, exportService, rbacMiddleware, cfg.ExportPollInterval)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		TokenIssuer:        tokenIssuer,
		AuthHandler:        authHandler,
		UsersHandler:       usersHandler,
		TasksHandler:       tasksHandler,
		ProjectsHandler:    projectsHandler,
		CalendarHandler:    calendarHandler,
		ExportHandler:      exportHandler,
		PermissionsHandler: permissionsHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
