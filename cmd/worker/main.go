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
	"golang.org/x/sync/errgroup"

	"github.com/taskhive/taskhive/internal/app"
	"github.com/taskhive/taskhive/internal/export"
	"github.com/taskhive/taskhive/internal/observability"
	"github.com/taskhive/taskhive/internal/platform/db"
	"github.com/taskhive/taskhive/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := os.MkdirAll(cfg.ExportDir, 0o755); err != nil {
		logger.Error("create export dir", slog.String("dir", cfg.ExportDir), slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	exportRepo := export.NewRepository(pool)
	processor := jobs.NewExportProcessor(exportRepo, pool, cfg.ExportDir, cfg.ExportRetention, logger, metrics)
	purger := jobs.NewExportPurger(exportRepo, cfg.ExportDir, logger)
	reminder := jobs.NewEventReminder(pool, logger)

	purgeTask, err := jobs.NewExportPurgeTask(time.Now().UTC())
	if err != nil {
		logger.Error("build purge task", slog.Any("error", err))
		os.Exit(1)
	}
	reminderTask, err := jobs.NewEventReminderTask(time.Now().UTC(), time.Hour)
	if err != nil {
		logger.Error("build reminder task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskExportGenerate, Handler: processor.Handle},
			{Type: jobs.TaskExportPurge, Handler: purger.Handle},
			{Type: jobs.TaskEventReminder, Handler: reminder.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 * * * *", Task: purgeTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "*/15 * * * *", Task: reminderTask, Options: []asynq.Option{asynq.MaxRetry(1)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	health := &http.Server{Addr: cfg.WorkerHealthAddr, Handler: healthMux(metrics)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("starting worker health server", slog.String("addr", cfg.WorkerHealthAddr))
		if err := health.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return health.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

func healthMux(metrics *observability.Metrics) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("/metrics", metrics.Handler())
	return mux
}
