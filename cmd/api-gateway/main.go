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

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-timetable-api/api/swagger"
	"github.com/noah-isme/sma-timetable-api/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/repository"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
	"github.com/noah-isme/sma-timetable-api/pkg/cache"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
	"github.com/noah-isme/sma-timetable-api/pkg/database"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/requestid"
)

// @title SMA Timetable API
// @version 1.0.0
// @description Weekly timetable generation with lunch-aware lab blocks and teacher conflict repair
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Scheduler.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, display cache disabled", zap.Error(err))
			redisClient = nil
		}
	}

	metricsSvc := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Scheduler.DisplayCacheTTL, logr, redisClient != nil)
	tokenSvc := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Expiration)
	exportSvc := service.NewExportService(export.NewCSVExporter(), export.NewPDFExporter(), logr)

	workers := cfg.Scheduler.Workers
	if !cfg.Scheduler.Enabled {
		workers = 0
	}
	timetableSvc := service.NewTimetableService(
		service.TimetableRepositories{
			Timetables: repository.NewTimetableRepository(db),
			Slots:      repository.NewTimetableSlotRepository(db),
			Classes:    repository.NewClassRepository(db),
			Bindings:   repository.NewClassSubjectRepository(db),
			Subjects:   repository.NewSubjectRepository(db),
			Teachers:   repository.NewTeacherRepository(db),
		},
		db,
		cacheSvc,
		exportSvc,
		metricsSvc,
		validator.New(),
		logr,
		service.TimetableServiceConfig{
			Generator: timetable.Options{
				MaxAttempts:      cfg.Scheduler.MaxAttempts,
				LabLoadTolerance: cfg.Scheduler.LabLoadTolerance,
				AttemptFactor:    cfg.Scheduler.AttemptFactor,
				MaxPerDay:        cfg.Scheduler.MaxPerDay,
			},
			ProposalTTL:     cfg.Scheduler.ProposalTTL,
			DisplayCacheTTL: cfg.Scheduler.DisplayCacheTTL,
			Workers:         workers,
			JobRetries:      cfg.Scheduler.JobRetries,
		},
	)
	timetableSvc.Start(ctx)
	defer timetableSvc.Stop()

	metricsHandler := handler.NewMetricsHandler(metricsSvc, map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
		"redis":    cacheSvc.Ping,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(tokenSvc))
	if cfg.Scheduler.Enabled {
		handler.NewTimetableHandler(timetableSvc).Register(api,
			internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "scheduler", cfg.Scheduler.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Errorw("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
