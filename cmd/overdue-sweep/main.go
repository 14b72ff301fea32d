package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-registrar-api/internal/repository"
	"github.com/noah-isme/campus-registrar-api/internal/service"
	"github.com/noah-isme/campus-registrar-api/pkg/cache"
	"github.com/noah-isme/campus-registrar-api/pkg/config"
	"github.com/noah-isme/campus-registrar-api/pkg/database"
	"github.com/noah-isme/campus-registrar-api/pkg/jobs"
	"github.com/noah-isme/campus-registrar-api/pkg/logger"
	"github.com/noah-isme/campus-registrar-api/pkg/observability"
)

// overdue-sweep flips every past-due loan to overdue once and exits. Intended for cron.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	flush, err := observability.InitSentry(cfg.Sentry, cfg.Env)
	if err != nil {
		logr.Warn("sentry disabled", zap.Error(err))
	}
	defer flush()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	borrows := service.NewBorrowService(
		repository.NewBorrowRepository(db),
		repository.NewStudentRepository(db),
		repository.NewBookRepository(db),
		database.NewTransactor(db),
		nil, logr, cfg.Paging, cfg.Library,
	)

	sweep := service.NewOverdueSweep(borrows, nil, cfg.Jobs.LockTTL, logr)
	if cfg.Redis.Enabled {
		locker, err := cache.Connect(context.Background(), cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, sweeping without a lock", zap.Error(err))
		} else {
			defer locker.Close() //nolint:errcheck
			sweep = service.NewOverdueSweep(borrows, locker, cfg.Jobs.LockTTL, logr)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	runner := jobs.NewRunner(jobs.RunnerConfig{MaxRetries: 2, RetryDelay: 5 * time.Second, Logger: logr})
	if err := runner.RunOnce(ctx, "overdue_sweep", sweep.Run); err != nil {
		observability.CaptureErr(err)
		logr.Error("overdue sweep failed", zap.Error(err))
		flush()
		_ = logr.Sync()
		os.Exit(1)
	}
}
