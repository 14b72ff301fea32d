package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/noah-isme/campus-registrar-api/api/swagger"
	"github.com/noah-isme/campus-registrar-api/internal/handler"
	"github.com/noah-isme/campus-registrar-api/internal/repository"
	"github.com/noah-isme/campus-registrar-api/internal/service"
	"github.com/noah-isme/campus-registrar-api/internal/web"
	"github.com/noah-isme/campus-registrar-api/pkg/cache"
	"github.com/noah-isme/campus-registrar-api/pkg/config"
	"github.com/noah-isme/campus-registrar-api/pkg/database"
	"github.com/noah-isme/campus-registrar-api/pkg/export"
	"github.com/noah-isme/campus-registrar-api/pkg/jobs"
	"github.com/noah-isme/campus-registrar-api/pkg/logger"
	"github.com/noah-isme/campus-registrar-api/pkg/observability"
)

// @title Campus Registrar API
// @version 1.0.0
// @description Student records, course enrollment and library lending for campus administrators
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.AutoMigrate {
		if err := database.Migrate(db.DB); err != nil {
			logr.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	metrics := service.NewMetricsService()
	validate := service.NewValidator()
	tx := database.NewTransactor(db)

	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	bookRepo := repository.NewBookRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	borrowRepo := repository.NewBorrowRepository(db)

	students := service.NewStudentService(studentRepo, tx, validate, logr, cfg.Paging)
	courses := service.NewCourseService(courseRepo, tx, validate, logr, cfg.Paging)
	books := service.NewBookService(bookRepo, tx, validate, logr, cfg.Paging)
	enrollments := service.NewEnrollmentService(enrollmentRepo, studentRepo, courseRepo, tx, validate, logr, cfg.Paging).WithMetrics(metrics)
	borrows := service.NewBorrowService(borrowRepo, studentRepo, bookRepo, tx, validate, logr, cfg.Paging, cfg.Library).WithMetrics(metrics)
	dashboard := service.NewDashboardService(service.DashboardServiceParams{
		Repo:   repository.NewDashboardRepository(db),
		Logger: logr,
	})
	exports := service.NewExportService(service.ExportServiceParams{
		Students:    students,
		Courses:     courses,
		Books:       books,
		Enrollments: enrollments,
		Borrows:     borrows,
		Renderer:    export.NewRenderer(),
		Logger:      logr,
	})
	auth := service.NewAuthService(validate, logr, service.AuthConfig{
		AdminEmail:        cfg.Auth.AdminEmail,
		AdminPasswordHash: cfg.Auth.AdminPasswordHash,
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
	})

	sweep := service.NewOverdueSweep(borrows, nil, cfg.Jobs.LockTTL, logr)
	if cfg.Redis.Enabled {
		locker, err := cache.Connect(context.Background(), cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, overdue sweep runs without a lock", zap.Error(err))
		} else {
			defer locker.Close() //nolint:errcheck
			sweep = service.NewOverdueSweep(borrows, locker, cfg.Jobs.LockTTL, logr)
		}
	}
	sweep.WithMetrics(metrics)

	runner := jobs.NewRunner(jobs.RunnerConfig{
		MaxRetries: 2,
		RetryDelay: 5 * time.Second,
		Logger:     logr,
		Registerer: metrics.Registry(),
	})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runner.Start(ctx)
	defer runner.Stop()
	if cfg.Jobs.OverdueInterval > 0 {
		if err := runner.Every(cfg.Jobs.OverdueInterval, "overdue_sweep", sweep.Run); err != nil {
			logr.Fatal("failed to schedule overdue sweep", zap.Error(err))
		}
	}

	templates, err := web.Templates()
	if err != nil {
		logr.Fatal("failed to parse templates", zap.Error(err))
	}

	router := handler.NewRouter(handler.RouterParams{
		Config:      cfg,
		Logger:      logr,
		Templates:   templates,
		Observer:    metrics,
		Auth:        auth,
		Students:    handler.NewStudentHandler(students),
		Courses:     handler.NewCourseHandler(courses),
		Books:       handler.NewBookHandler(books),
		Enrollments: handler.NewEnrollmentHandler(enrollments),
		Borrows:     handler.NewBorrowHandler(borrows),
		Dashboard:   handler.NewDashboardHandler(dashboard),
		Exports:     handler.NewExportHandler(exports),
		Login:       handler.NewAuthHandler(auth),
		Metrics:     handler.NewMetricsHandler(metrics.Handler(), db),
		Pages:       handler.NewPageHandler(exports, dashboard, cfg.APIPrefix),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "auth", cfg.Auth.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
