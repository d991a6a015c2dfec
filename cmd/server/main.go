package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qsights/analytics-service/internal/cache"
	"github.com/qsights/analytics-service/internal/config"
	"github.com/qsights/analytics-service/internal/handlers"
	"github.com/qsights/analytics-service/internal/repositories/postgres"
	"github.com/qsights/analytics-service/internal/services"
	"github.com/qsights/analytics-service/internal/utils"
	"github.com/qsights/analytics-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	eventCfg := config.LoadEventConfig()
	publisher, err := eventCfg.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	viewCache := cache.NewRedisCache(redisClient, slogger)

	analyticsService := services.NewAnalyticsService(repo, viewCache, slogger)
	insightsService := services.NewAIInsightsService(repo, publisher, slogger, time.Duration(cfg.InsightTTLHours)*time.Hour)
	exportService := services.NewReportExportService(analyticsService, publisher, slogger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(analyticsService, insightsService, exportService, logger)
	handlerManager.SetupRoutes(router)

	logger.Info("starting analytics service", "port", cfg.Port, "environment", cfg.Environment)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
