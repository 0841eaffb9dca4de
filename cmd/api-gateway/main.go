package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/bimbel-adp-api/api/swagger"
	"github.com/noah-isme/bimbel-adp-api/internal/handler"
	"github.com/noah-isme/bimbel-adp-api/internal/middleware"
	"github.com/noah-isme/bimbel-adp-api/internal/repository"
	"github.com/noah-isme/bimbel-adp-api/internal/service"
	"github.com/noah-isme/bimbel-adp-api/pkg/cache"
	"github.com/noah-isme/bimbel-adp-api/pkg/config"
	"github.com/noah-isme/bimbel-adp-api/pkg/database"
	"github.com/noah-isme/bimbel-adp-api/pkg/export"
	"github.com/noah-isme/bimbel-adp-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/bimbel-adp-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/bimbel-adp-api/pkg/middleware/requestid"
	"github.com/noah-isme/bimbel-adp-api/pkg/signal"
	"github.com/noah-isme/bimbel-adp-api/pkg/storage"
)

// @title Bimbel Calendar & Scheduling API
// @version 1.0.0
// @description Schedule materialization, conflict checking, planner boards and calendar exports for coaching batches.
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, view caching and cross-instance signals disabled", "error", err)
			redisClient = nil
		}
	}

	validate := validator.New()

	// Repositories.
	batchRepo := repository.NewBatchRepository(db)
	ruleRepo := repository.NewScheduleRuleRepository(db)
	overrideRepo := repository.NewOverrideRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	blockRepo := repository.NewTimeBlockRepository(db)
	holidayRepo := repository.NewHolidayRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Read side: materializer, conflict checks, cached views and capacity.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Calendar.ViewCacheTTL, logr, redisClient != nil)
	materializer := service.NewMaterializerService(calendarRepo, logr)
	conflictSvc := service.NewConflictService(materializer, metricsSvc, logr)
	calendarSvc := service.NewCalendarService(materializer, cacheSvc, cfg.Calendar.ViewCacheTTL, logr)
	capacitySvc := service.NewCapacityService(batchRepo, cacheSvc, cfg.Calendar.CapacityCacheTTL, logr)

	availabilitySvc := service.NewAvailabilityService(service.AvailabilityServiceParams{
		Snapshots: materializer,
		Batches:   batchRepo,
		Rules:     ruleRepo,
		Overrides: overrideRepo,
		Holidays:  holidayRepo,
		Config: service.AvailabilityConfig{
			WorkdayStart: cfg.Calendar.WorkdayStart,
			WorkdayEnd:   cfg.Calendar.WorkdayEnd,
		},
		Logger: logr,
	})
	rescheduleSvc := service.NewRescheduleService(batchRepo, materializer, holidayRepo, service.RescheduleConfig{
		HorizonWeeks:  cfg.Suggestions.HorizonWeeks,
		MaxCandidates: cfg.Suggestions.MaxCandidates,
		SnapGridMin:   cfg.Planner.SnapGridMin,
		WorkdayStart:  cfg.Calendar.WorkdayStart,
		WorkdayEnd:    cfg.Calendar.WorkdayEnd,
	}, logr)

	// Exports: rendered grids stored locally behind signed links.
	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "dir", cfg.Exports.StorageDir, "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(materializer, exportStore, signer, service.ExportConfig{
		APIPrefix:    cfg.APIPrefix,
		WorkdayStart: cfg.Calendar.WorkdayStart,
		WorkdayEnd:   cfg.Calendar.WorkdayEnd,
		SlotMin:      cfg.Planner.SnapGridMin,
		ResultTTL:    cfg.Exports.SignedURLTTL,
	}, logr, export.NewCSVExporter(), export.NewPDFExporter())

	// Write side: planner boards over the gesture engine, plus CRUD services
	// that invalidate cached views on every mutation.
	hub := signal.NewHub(redisClient, logr)
	hub.Start(context.Background())

	boardSvc := service.NewBoardService(service.BoardServiceParams{
		Materializer: materializer,
		Validator:    conflictSvc,
		Batches:      batchRepo,
		Overrides:    overrideRepo,
		Sessions:     sessionRepo,
		Blocks:       blockRepo,
		Cache:        cacheSvc,
		Signals:      hub,
		Metrics:      metricsSvc,
		Config: service.BoardConfig{
			SnapGridMin:      cfg.Planner.SnapGridMin,
			ValidateDebounce: cfg.Planner.ValidateDebounce,
		},
		Logger: logr,
	})
	plannerSvc := service.NewPlannerService(boardSvc, hub, service.PlannerServiceConfig{
		SessionTTL:      cfg.Planner.SessionTTL,
		RefreshInterval: cfg.Planner.RefreshInterval,
	}, logr)
	plannerSvc.Start()

	batchSvc := service.NewBatchService(service.BatchServiceParams{
		Repo:     batchRepo,
		Teachers: teacherRepo,
		Capacity: capacitySvc,
		Views:    calendarSvc,
		Validate: validate,
		Logger:   logr,
	})
	ruleSvc := service.NewScheduleRuleService(service.ScheduleRuleServiceParams{
		Repo:     ruleRepo,
		Batches:  batchRepo,
		Views:    calendarSvc,
		Validate: validate,
		Logger:   logr,
	})
	overrideSvc := service.NewOverrideService(service.OverrideServiceParams{
		Repo:     overrideRepo,
		Batches:  batchRepo,
		Views:    calendarSvc,
		Validate: validate,
		Logger:   logr,
	})
	sessionSvc := service.NewSessionService(service.SessionServiceParams{
		Repo:     sessionRepo,
		Batches:  batchRepo,
		Views:    calendarSvc,
		Validate: validate,
		Logger:   logr,
	})
	blockSvc := service.NewBlockService(service.BlockServiceParams{
		Repo:     blockRepo,
		Teachers: teacherRepo,
		Views:    calendarSvc,
		Validate: validate,
		Logger:   logr,
	})
	holidaySvc := service.NewHolidayService(holidayRepo, calendarSvc, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)

	// Handlers.
	plannerHandler := handler.NewPlannerHandler(plannerSvc, boardSvc)
	calendarHandler := handler.NewCalendarHandler(calendarSvc, conflictSvc, exportSvc)
	batchHandler := handler.NewBatchHandler(batchSvc, capacitySvc, rescheduleSvc, availabilitySvc)
	scheduleHandler := handler.NewScheduleHandler(ruleSvc, overrideSvc, sessionSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc, availabilitySvc)
	blockHandler := handler.NewBlockHandler(blockSvc)
	holidayHandler := handler.NewHolidayHandler(holidaySvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, plannerSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.Metrics(metricsSvc))
	api.Use(middleware.WithResponseMeta())

	api.GET("/calendar", calendarHandler.View)
	api.GET("/calendar/export", calendarHandler.Export)
	api.GET("/calendar/export/:token", calendarHandler.Download)
	api.POST("/conflicts/check", calendarHandler.CheckConflicts)

	planner := api.Group("/planner")
	planner.POST("", plannerHandler.Open)
	planner.DELETE("/:token", plannerHandler.Close)
	planner.GET("/:token/events", plannerHandler.Events)
	planner.POST("/:token/refresh", plannerHandler.Refresh)
	planner.POST("/:token/gestures", plannerHandler.BeginGesture)
	planner.PATCH("/:token/gestures/:gestureId", plannerHandler.UpdateGesture)
	planner.DELETE("/:token/gestures/:gestureId", plannerHandler.CancelGesture)
	planner.POST("/:token/gestures/:gestureId/commit", plannerHandler.CommitGesture)
	planner.POST("/:token/blocks", plannerHandler.CreateBlock)
	planner.DELETE("/:token/blocks/:id", plannerHandler.DeleteBlock)

	batches := api.Group("/batches")
	batches.GET("", batchHandler.List)
	batches.POST("", batchHandler.Create)
	batches.GET("/:id", batchHandler.Get)
	batches.PUT("/:id", batchHandler.Update)
	batches.DELETE("/:id", batchHandler.Archive)
	batches.PUT("/:id/enrollment", batchHandler.SetEnrollment)
	batches.GET("/:id/capacity", batchHandler.Capacity)
	batches.GET("/:id/reschedule-options", batchHandler.RescheduleOptions)
	batches.GET("/:id/availability", batchHandler.Availability)
	batches.GET("/:id/rules", scheduleHandler.ListRules)
	batches.POST("/:id/rules", scheduleHandler.CreateRule)
	batches.PUT("/:id/rules/:ruleId", scheduleHandler.UpdateRule)
	batches.DELETE("/:id/rules/:ruleId", scheduleHandler.DeleteRule)

	api.GET("/overrides", scheduleHandler.ListOverrides)
	api.POST("/overrides", scheduleHandler.UpsertOverride)
	api.DELETE("/overrides/:id", scheduleHandler.DeleteOverride)

	sessions := api.Group("/sessions")
	sessions.GET("", scheduleHandler.ListSessions)
	sessions.POST("", scheduleHandler.CreateSession)
	sessions.GET("/:id", scheduleHandler.GetSession)
	sessions.PUT("/:id", scheduleHandler.UpdateSession)
	sessions.DELETE("/:id", scheduleHandler.CancelSession)

	teachers := api.Group("/teachers")
	teachers.GET("", teacherHandler.List)
	teachers.POST("", teacherHandler.Create)
	teachers.GET("/:id", teacherHandler.Get)
	teachers.PUT("/:id", teacherHandler.Update)
	teachers.DELETE("/:id", teacherHandler.Delete)
	teachers.GET("/:id/freebusy", teacherHandler.FreeBusy)
	teachers.GET("/:id/blocks", blockHandler.ListByTeacher)

	api.POST("/blocks", blockHandler.Create)
	api.DELETE("/blocks/:id", blockHandler.Delete)

	api.GET("/holidays", holidayHandler.List)
	api.POST("/holidays", holidayHandler.Create)
	api.DELETE("/holidays/:id", holidayHandler.Delete)

	api.GET("/metrics/system", metricsHandler.Snapshot)

	exportJanitor := time.NewTicker(time.Hour)
	go func() {
		for range exportJanitor.C {
			removed, err := exportSvc.Cleanup(cfg.Exports.SignedURLTTL)
			if err != nil {
				logr.Sugar().Warnw("export cleanup failed", "error", err)
				continue
			}
			if len(removed) > 0 {
				logr.Sugar().Infow("expired exports removed", "count", len(removed))
			}
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	ossignal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}

	exportJanitor.Stop()
	plannerSvc.Stop()
	hub.Stop()
	if err := db.Close(); err != nil {
		logr.Sugar().Warnw("closing postgres failed", "error", err)
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logr.Sugar().Warnw("closing redis failed", "error", err)
		}
	}
	logr.Sugar().Infow("server stopped")
}
