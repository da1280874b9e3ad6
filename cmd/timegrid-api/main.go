package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/uniplan-dev/timegrid-api/api/swagger"
	"github.com/uniplan-dev/timegrid-api/internal/handler"
	"github.com/uniplan-dev/timegrid-api/internal/middleware"
	"github.com/uniplan-dev/timegrid-api/internal/repository"
	"github.com/uniplan-dev/timegrid-api/internal/service"
	"github.com/uniplan-dev/timegrid-api/internal/store"
	"github.com/uniplan-dev/timegrid-api/internal/timegrid"
	"github.com/uniplan-dev/timegrid-api/pkg/cache"
	"github.com/uniplan-dev/timegrid-api/pkg/config"
	"github.com/uniplan-dev/timegrid-api/pkg/database"
	"github.com/uniplan-dev/timegrid-api/pkg/logger"
	corsmiddleware "github.com/uniplan-dev/timegrid-api/pkg/middleware/cors"
	reqidmiddleware "github.com/uniplan-dev/timegrid-api/pkg/middleware/requestid"
)

// @title TimeGrid API
// @version 0.1.0
// @description Weekly scheduling grid with conflict detection and drag rescheduling
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
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	eventRepo := repository.NewEventRepository(db, metricsSvc)
	var source store.EventSource = eventRepo
	if cfg.Calendar.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			// The grid works without the window cache; keep serving.
			logr.Warn("redis unavailable, window caching disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			source = repository.NewCachedEventSource(eventRepo, redisClient, cfg.Calendar.WindowCacheTTL, metricsSvc, logr)
		}
	}

	var sink service.RelocationSink
	if cfg.Calendar.PersistRelocations {
		sink = eventRepo
	}

	window := timegrid.Window{
		OpeningHour: cfg.Grid.OpeningHour,
		ClosingHour: cfg.Grid.ClosingHour,
		SlotMinutes: cfg.Grid.SlotMinutes,
	}
	gridSvc := service.NewGridService(source, window, sink, metricsSvc, nil, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/status", metricsHandler.Status)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	handler.NewGridHandler(gridSvc).Register(api)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
