package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/contactbook/contactbook-api/config"
	"github.com/contactbook/contactbook-api/internal/database/postgres"
	"github.com/contactbook/contactbook-api/internal/handlers"
	"github.com/contactbook/contactbook-api/internal/middleware"
	"github.com/contactbook/contactbook-api/internal/repository"
	"github.com/contactbook/contactbook-api/internal/services"
	"github.com/contactbook/contactbook-api/internal/validation"
	"github.com/contactbook/contactbook-api/pkg/db"
	"github.com/contactbook/contactbook-api/pkg/logger"
	"github.com/contactbook/contactbook-api/pkg/metrics"
	"github.com/contactbook/contactbook-api/pkg/profiling"
	"github.com/contactbook/contactbook-api/pkg/storage"
	"github.com/contactbook/contactbook-api/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Contactbook API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(tracing.Config{
		ServiceName:       cfg.Observability.ServiceName,
		ServiceNamespace:  cfg.Observability.ServiceNamespace,
		ServiceVersion:    cfg.Observability.ServiceVersion,
		ServiceInstanceID: cfg.Observability.ServiceInstanceID,
		Environment:       cfg.Server.AppEnv,
		Endpoint:          cfg.Observability.ExporterEndpoint,
	})
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Continuous profiling
	stopProfiler, err := profiling.InitProfiler(cfg.Profiling, profiling.LabelsFromConfig(cfg))
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	stopMetrics := make(chan struct{})
	defer close(stopMetrics)
	metrics.RecordInfrastructureMetrics(stopMetrics)

	// Initialize PostgreSQL connection pool
	// Migrations run separately: ./migrate or docker-compose run migrate
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	pool, err := db.NewPool(startupCtx, db.PoolConfig{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
		TLS:      db.TLS{CACertPath: cfg.Database.CACertPath, ServerName: cfg.Database.TLSServerName},
	})
	if err != nil {
		cancelStartup()
		logger.Fatal("Failed to initialize database connection pool", zap.Error(err))
	}
	defer db.Close(pool)

	pgClient := postgres.NewClient(pool)

	// Initialize repositories
	userRepo := repository.NewUserRepository(pgClient)
	contactRepo := repository.NewContactRepository(pgClient)
	categoryRepo := repository.NewCategoryRepository(pgClient, cfg.Cache.CategoryTTLSeconds)

	// Warm the category cache before accepting requests so the healthcheck
	// only reports ready once the contact form can be validated
	err = categoryRepo.Cache().Initialize(startupCtx)
	cancelStartup()
	if err != nil {
		logger.Fatal("Failed to initialize category cache", zap.Error(err))
	}

	// Picture storage is optional; without it picture uploads answer 503
	var pictureStorage services.PictureStorage
	if cfg.Storage.Enabled() {
		storageClient, storageErr := storage.NewClient(storage.Config{
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			BucketName:      cfg.Storage.BucketName,
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			PublicBaseURL:   cfg.Storage.PublicBaseURL,
		})
		if storageErr != nil {
			logger.Fatal("Failed to initialize object storage client", zap.Error(storageErr))
		}
		pictureStorage = storageClient
	} else {
		logger.Warn("Object storage not configured: contact pictures are disabled")
	}

	validator := validation.New(userRepo, categoryRepo, validation.NewDefaultPasswordPolicy(cfg.Password.MinLength))

	// Initialize services
	userService := services.NewUserService(userRepo, validator, cfg)
	contactService := services.NewContactService(contactRepo, validator, pictureStorage)
	categoryService := services.NewCategoryService(categoryRepo)

	// Initialize handlers
	routes := routeHandlers{
		health:   handlers.NewHealthHandler(categoryRepo.Cache().IsReady, pgClient.Ping),
		auth:     handlers.NewAuthHandler(userService),
		profile:  handlers.NewProfileHandler(userService),
		contacts: handlers.NewContactHandler(contactService),
		category: handlers.NewCategoryHandler(categoryService),
	}

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// CORS: only configured origins, plus the local frontend in development
	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-CSRF-Token", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true, // Required for session cookies
		MaxAge:           12 * time.Hour,
	}))

	registerRoutes(router, cfg, newRateLimiters(), routes, userService.GetTokenManager())

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       60 * time.Second, // picture uploads
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	stats := pgClient.Stats()
	logger.Info("Server exited",
		zap.Int32("db_total_conns", stats.TotalConns()),
		zap.Int64("db_acquire_count", stats.AcquireCount()))
}
