package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/wms-platform/picklist-service/internal/application"
	"github.com/wms-platform/picklist-service/internal/config"
	"github.com/wms-platform/picklist-service/internal/domain"
	"github.com/wms-platform/picklist-service/internal/infrastructure/csvexport"
	"github.com/wms-platform/picklist-service/internal/infrastructure/csvfeed"
	kafkaAdapter "github.com/wms-platform/picklist-service/internal/infrastructure/kafka"
	mongoRepo "github.com/wms-platform/picklist-service/internal/infrastructure/mongodb"
	pkgerrors "github.com/wms-platform/picklist-service/pkg/errors"
	"github.com/wms-platform/picklist-service/pkg/kafka"
	"github.com/wms-platform/picklist-service/pkg/logging"
	"github.com/wms-platform/picklist-service/pkg/metrics"
	"github.com/wms-platform/picklist-service/pkg/middleware"
	"github.com/wms-platform/picklist-service/pkg/mongodb"
)

const serviceName = "picklist-service"

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to YAML config overlay")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(cfg.Service.LogLevel)
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting picklist-service API")

	ctx := context.Background()

	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)
	logger.Info("Metrics initialized")

	mongoClient, err := mongodb.NewClient(ctx, &mongodb.Config{
		URI:            cfg.MongoDB.URI,
		Database:       cfg.MongoDB.Database,
		ConnectTimeout: 10 * time.Second,
		MaxPoolSize:    100,
		MinPoolSize:    10,
	})
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", cfg.MongoDB.Database)

	runRepo := mongoRepo.NewRunRepository(mongoClient.Database(), logger, m)
	if err := runRepo.EnsureIndexes(ctx); err != nil {
		logger.WithError(err).Error("Failed to create MongoDB indexes")
		os.Exit(1)
	}

	var publisher domain.EventPublisher
	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(&kafka.Config{
			Brokers:      cfg.Kafka.Brokers,
			ClientID:     serviceName,
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: -1,
		})
		defer producer.Close()
		publisher = kafkaAdapter.NewEventPublisher(producer, cfg.Kafka.Topic, logger, m)
		logger.Info("Kafka producer initialized", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	} else {
		logger.Info("Kafka publishing disabled")
	}

	var exporter domain.RunExporter
	if cfg.Export.Enabled {
		exporter = csvexport.NewWriter(cfg.Export.OutputDir, cfg.Export.SummaryName, logger)
		logger.Info("CSV export enabled", "outputDir", cfg.Export.OutputDir)
	}

	source := csvfeed.NewReader(cfg.Feed.InputPath, logger)

	plannerConfig, err := cfg.ToPlannerConfig()
	if err != nil {
		logger.WithError(err).Error("Invalid planner configuration")
		os.Exit(1)
	}

	picklistService := application.NewPicklistService(
		runRepo,
		source,
		publisher,
		exporter,
		plannerConfig,
		logger,
		m,
	)

	router := gin.New()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173", "http://localhost:9080"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "X-Correlation-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "X-Correlation-ID"},
		AllowCredentials: true,
	}))

	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middleware.Setup(router, middlewareConfig)
	router.Use(middleware.MetricsMiddleware(m))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return mongoClient.HealthCheck(ctx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	api := router.Group("/api/v1")
	{
		runs := api.Group("/picklist-runs")
		{
			runs.POST("", generateRunHandler(picklistService, logger))
			runs.GET("", listRunsHandler(picklistService, logger))
			runs.GET("/:runId", getRunHandler(picklistService, logger))
			runs.GET("/:runId/picklists", getRunPicklistsHandler(picklistService, logger))
			runs.DELETE("/:runId", deleteRunHandler(picklistService, logger))
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", srv.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

// HTTP Handlers
func generateRunHandler(service *application.PicklistService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			MaxRows      int                  `json:"maxRows"`
			ScoreWeights *domain.ScoreWeights `json:"scoreWeights"`
		}
		// An empty body means defaults
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		cmd := application.GeneratePicklistsCommand{
			MaxRows:      req.MaxRows,
			ScoreWeights: req.ScoreWeights,
		}

		run, err := service.GeneratePicklists(c.Request.Context(), cmd)
		if err != nil {
			if appErr, ok := err.(*pkgerrors.AppError); ok {
				responder.RespondWithAppError(appErr)
			} else {
				responder.RespondInternalError(err)
			}
			return
		}

		c.JSON(http.StatusCreated, run)
	}
}

func listRunsHandler(service *application.PicklistService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var query application.ListRunsQuery
		if v := c.Query("limit"); v != "" {
			if _, err := fmt.Sscanf(v, "%d", &query.Limit); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
				return
			}
		}

		runs, err := service.ListRuns(c.Request.Context(), query)
		if err != nil {
			responder.RespondInternalError(err)
			return
		}

		c.JSON(http.StatusOK, runs)
	}
}

func getRunHandler(service *application.PicklistService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		query := application.GetRunQuery{RunID: c.Param("runId")}

		run, err := service.GetRun(c.Request.Context(), query)
		if err != nil {
			if appErr, ok := err.(*pkgerrors.AppError); ok {
				responder.RespondWithAppError(appErr)
			} else {
				responder.RespondInternalError(err)
			}
			return
		}

		c.JSON(http.StatusOK, run)
	}
}

func getRunPicklistsHandler(service *application.PicklistService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		query := application.GetRunQuery{RunID: c.Param("runId")}

		picklists, err := service.GetRunPicklists(c.Request.Context(), query)
		if err != nil {
			if appErr, ok := err.(*pkgerrors.AppError); ok {
				responder.RespondWithAppError(appErr)
			} else {
				responder.RespondInternalError(err)
			}
			return
		}

		c.JSON(http.StatusOK, picklists)
	}
}

func deleteRunHandler(service *application.PicklistService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		cmd := application.DeleteRunCommand{RunID: c.Param("runId")}

		if err := service.DeleteRun(c.Request.Context(), cmd); err != nil {
			if appErr, ok := err.(*pkgerrors.AppError); ok {
				responder.RespondWithAppError(appErr)
			} else {
				responder.RespondInternalError(err)
			}
			return
		}

		c.JSON(http.StatusNoContent, nil)
	}
}
