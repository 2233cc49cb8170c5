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

	"shipdesk/internal/config"
	"shipdesk/internal/handlers/admin"
	"shipdesk/internal/middleware"
	"shipdesk/internal/repositories/mongodb"
	"shipdesk/internal/services"
	"shipdesk/pkg/cache"
	"shipdesk/pkg/database"
	"shipdesk/pkg/logger"
	"shipdesk/pkg/metrics"
	"shipdesk/pkg/storage"
	"shipdesk/pkg/websocket"
	"shipdesk/routes"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.App.LogLevel),
		Format:  cfg.App.LogFormat,
		Output:  "stdout",
		AppName: cfg.App.Name,
		Version: cfg.App.Version,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	mongo, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer mongo.Close()

	if cfg.Database.RunMigrations {
		if err := database.NewMigrator(mongo.Database, appLogger).Up(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to run migrations")
		}
	}

	appMetrics := metrics.New("shipdesk")
	hub := websocket.NewHub(appLogger)
	go hub.Run(ctx)

	// Redis backs the card cache and fans change events out to every
	// instance. Without it each instance only notifies its own dashboards.
	var (
		cardCache mongodb.CacheService
		events    services.EventPublisher
	)
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			KeyPrefix:    cfg.Redis.KeyPrefix,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer redisCache.Close()

		cardCache = redisCache
		events = services.NewBusPublisher(redisCache, appLogger, appMetrics)
		go func() {
			if err := services.RelayEvents(ctx, redisCache, hub, appLogger); err != nil {
				appLogger.WithError(err).Error("Rate card event relay stopped")
			}
		}()
	} else {
		appLogger.Warn("Redis disabled: rate card cache off, events stay on this instance")
		events = services.NewHubPublisher(hub, appMetrics)
	}

	// Object storage for import/export archives
	provider, err := storage.NewProvider(ctx, &storage.ProviderConfig{
		Provider:           cfg.Storage.Provider,
		LocalBasePath:      cfg.Storage.Local.BasePath,
		AWSRegion:          cfg.Storage.AWS.Region,
		AWSBucket:          cfg.Storage.AWS.Bucket,
		GCPBucket:          cfg.Storage.GCP.Bucket,
		GCPCredentialsFile: cfg.Storage.GCP.CredentialsFile,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage provider")
	}
	archiver := storage.NewArchiver(provider, cfg.RateCard.ArchivePrefix)

	// Repositories
	db := mongo.Database
	rateCardRepo := mongodb.NewRateCardRepository(db, cardCache, cfg.RateCard.CacheTTL)
	companyRepo := mongodb.NewCompanyRepository(db)
	auditRepo := mongodb.NewAuditLogRepository(db)
	shipmentRepo := mongodb.NewShipmentRepository(db)

	// Services
	audit := services.NewAuditRecorder(auditRepo, appLogger)
	rateCardService := services.NewRateCardService(rateCardRepo, companyRepo, audit, events, appMetrics, appLogger)
	assignmentService := services.NewAssignmentService(rateCardRepo, companyRepo, audit, events, appMetrics, appLogger)
	transferService := services.NewTransferService(rateCardRepo, companyRepo, archiver, audit, events, appMetrics, appLogger,
		services.TransferOptions{
			MaxImportSize:  cfg.RateCard.MaxImportSize,
			ArchiveExports: cfg.RateCard.ArchiveExports,
			ArchiveImports: cfg.RateCard.ArchiveImports,
		})
	analyticsService := services.NewAnalyticsService(rateCardRepo, companyRepo, shipmentRepo, auditRepo)

	// Handlers
	handlers := &routes.RateCardHandlers{
		RateCards:   admin.NewRateCardHandler(rateCardService, appLogger),
		Assignments: admin.NewAssignmentHandler(assignmentService, appLogger),
		Transfers:   admin.NewTransferHandler(transferService, cfg.RateCard.MaxImportSize, appLogger),
		Analytics:   admin.NewAnalyticsHandler(analyticsService, appLogger),
		Events: websocket.NewHandler(hub, &websocket.Options{
			ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
			WriteBufferSize: cfg.WebSocket.WriteBufferSize,
			PongWait:        cfg.WebSocket.PongTimeout,
			WriteWait:       cfg.WebSocket.WriteTimeout,
			SendBuffer:      cfg.WebSocket.SendBufferSize,
			AllowedOrigins:  cfg.WebSocket.AllowedOrigins,
		}),
	}

	rateLimiter, err := middleware.NewRateLimiter(cfg.Security.RateLimit)
	if err != nil {
		appLogger.WithError(err).Fatal("Invalid rate limit")
	}

	// Initialize Gin router
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		appLogger.WithError(err).Fatal("Invalid trusted proxies")
	}

	// Global middleware
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RecoveryMiddleware(appLogger))
	router.Use(middleware.LoggingMiddleware(appLogger))
	router.Use(middleware.MetricsMiddleware(appMetrics))
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))

	// API routes
	v1 := router.Group("/api/v1")
	routes.SetupRateCardRoutes(v1, handlers,
		middleware.RateLimit(rateLimiter, appLogger),
		middleware.AuthRequired(cfg.Security.JWTSecret),
		middleware.AdminRequired(cfg.Security.AdminUserType),
	)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if err := mongo.Ping(c.Request.Context()); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":     status,
			"version":    cfg.App.Version,
			"ws_clients": hub.ClientCount(),
		})
	})
	router.GET("/metrics", gin.WrapH(appMetrics.Handler()))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.WithField("addr", server.Addr).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Graceful shutdown failed")
	}
}
