package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/acadlab/timetable-api/api/swagger"
	"github.com/acadlab/timetable-api/internal/catalog"
	"github.com/acadlab/timetable-api/internal/handler"
	"github.com/acadlab/timetable-api/internal/middleware"
	"github.com/acadlab/timetable-api/internal/models"
	"github.com/acadlab/timetable-api/internal/repository"
	"github.com/acadlab/timetable-api/internal/service"
	"github.com/acadlab/timetable-api/pkg/cache"
	"github.com/acadlab/timetable-api/pkg/config"
	"github.com/acadlab/timetable-api/pkg/database"
	"github.com/acadlab/timetable-api/pkg/jobs"
	"github.com/acadlab/timetable-api/pkg/logger"
	corsmiddleware "github.com/acadlab/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/acadlab/timetable-api/pkg/middleware/requestid"
	"github.com/acadlab/timetable-api/pkg/storage"
)

// @title Timetable API
// @version 1.0.0
// @description Section timetable generation and lab report extraction
// @BasePath /api/v1
// @schemes http

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	catalogStore := catalog.NewStore()
	catalogLoader := catalog.NewLoader(cfg.Timetable.MaxCatalogRows)
	generatorSvc := service.NewGeneratorService(logr)

	authSvc := service.NewAuthService(validate, logr, service.AuthConfig{
		JWTSecret:         cfg.Auth.JWTSecret,
		TokenExpiration:   cfg.Auth.TokenExpiration,
		AdminEmail:        cfg.Auth.AdminEmail,
		AdminPasswordHash: cfg.Auth.AdminPasswordHash,
	})

	var db *sqlx.DB
	var runs service.RunArchiver
	var runRepo *repository.RunRepository
	if cfg.Database.Enabled {
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
		}
		defer db.Close() //nolint:errcheck
		runRepo = repository.NewRunRepository(db)
		runs = runRepo
	}

	var labCache service.LabReportCache
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		cacheRepo := repository.NewCacheRepository(client, logr)
		defer cacheRepo.Close() //nolint:errcheck
		labCache = cacheRepo
	}

	timetableSvc := service.NewTimetableService(
		catalogStore,
		generatorSvc,
		runs,
		labCache,
		metricsSvc,
		validate,
		logr,
		service.TimetableServiceConfig{
			Sections:     cfg.Timetable.Sections,
			LabDays:      labDaysFromConfig(cfg.Timetable.LabDays),
			LabReportTTL: cfg.Timetable.LabReportTTL,
		},
	)

	authHandler := handler.NewAuthHandler(authSvc)
	catalogHandler := handler.NewCatalogHandler(catalogLoader, catalogStore, logr)
	timetableHandler := handler.NewTimetableHandler(timetableSvc, nil)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("", middleware.JWT(authSvc))
	protected.POST("/catalog", catalogHandler.Upload)
	protected.GET("/catalog/summary", catalogHandler.Summary)
	protected.POST("/timetables/generate", timetableHandler.Generate)
	protected.GET("/timetables/:section", timetableHandler.Get)
	protected.GET("/timetables/:section/lab-report", timetableHandler.LabReport)
	protected.GET("/timetables/:section/lab-report.csv", timetableHandler.LabReportCSV)

	if runRepo != nil {
		runHandler := handler.NewRunHandler(runRepo)
		protected.GET("/timetables/:section/runs", runHandler.List)
		protected.GET("/timetables/:section/runs/:runID", runHandler.Get)
	}

	if cfg.Exports.Enabled {
		if db == nil {
			logr.Sugar().Fatalw("exports require persistence", "hint", "set ENABLE_PERSISTENCE=true")
		}

		queue, reportSvc, err := wireExports(ctx, cfg, logr, validate, timetableSvc, repository.NewReportRepository(db))
		if err != nil {
			logr.Sugar().Fatalw("failed to wire exports", "error", err)
		}
		defer queue.Stop()

		reportHandler := handler.NewReportHandler(reportSvc)
		protected.POST("/reports", reportHandler.Create)
		protected.GET("/reports/:id", reportHandler.Status)
		api.GET("/export/:token", reportHandler.Download)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("server shutdown failed", "error", err)
	}
}

func wireExports(
	ctx context.Context,
	cfg *config.Config,
	logr *zap.Logger,
	validate *validator.Validate,
	timetableSvc *service.TimetableService,
	jobRepo *repository.ReportRepository,
) (*jobs.Queue, *service.ReportService, error) {
	store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return nil, nil, err
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	exportSvc := service.NewExportService(timetableSvc, store, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr, nil, nil)

	worker := service.NewReportWorker(jobRepo, exportSvc, cfg.Exports.WorkerRetries, logr)
	queue := jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr,
	})
	queue.Start(ctx)

	reportSvc := service.NewReportService(jobRepo, queue, exportSvc, validate, logr, service.ReportServiceConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
		MaxRetries:      cfg.Exports.WorkerRetries,
	})
	reportSvc.RecoverPendingJobs(ctx)
	reportSvc.StartCleanup(ctx)

	return queue, reportSvc, nil
}

func labDaysFromConfig(raw map[string][]string) map[string][]models.Day {
	result := make(map[string][]models.Day, len(raw))
	for section, names := range raw {
		days := make([]models.Day, 0, len(names))
		for _, name := range names {
			days = append(days, models.Day(name))
		}
		result[section] = days
	}
	return result
}
