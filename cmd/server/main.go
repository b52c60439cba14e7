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

	"github.com/ikkim/tableqr-backend/config"
	"github.com/ikkim/tableqr-backend/internal/app/controller"
	"github.com/ikkim/tableqr-backend/internal/app/repository"
	"github.com/ikkim/tableqr-backend/internal/app/service"
	"github.com/ikkim/tableqr-backend/internal/db"
	"github.com/ikkim/tableqr-backend/internal/middleware"
	"github.com/ikkim/tableqr-backend/internal/router"
	"github.com/ikkim/tableqr-backend/internal/scheduler"
	"github.com/ikkim/tableqr-backend/internal/storage"
	"github.com/ikkim/tableqr-backend/internal/websocket"
	"github.com/ikkim/tableqr-backend/pkg/catalog"
	"github.com/ikkim/tableqr-backend/pkg/logger"
	"github.com/ikkim/tableqr-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting TableQR Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if cfg.Server.Environment == "development" {
		if err := db.Seed(); err != nil {
			logger.Warn("Failed to seed database", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional infrastructure. Each stays a nil interface when unconfigured.
	var renderCache service.RenderCache
	if cfg.Redis.Enabled() {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, PNG render cache disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			renderCache = redis.NewRenderCache(redis.GetClient())
			defer redis.Close()
		}
	}

	var artifactStore service.ArtifactStore
	if cfg.S3.Enabled() {
		artifactStore = storage.NewS3Storage(
			cfg.S3.Region,
			cfg.S3.Bucket,
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			cfg.S3.BaseURL,
		)
		logger.Info("S3 artifact mirroring enabled", map[string]interface{}{
			"bucket": cfg.S3.Bucket,
		})
	}

	var restaurantCatalog service.RestaurantCatalog
	if cfg.Vendor.Enabled() {
		restaurantCatalog = catalog.NewClient(cfg.Vendor.BaseURL, cfg.Vendor.APIKey)
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)

	// Initialize repositories
	restaurantRepo := repository.NewRestaurantRepository(db.GetDB())
	qrCodeRepo := repository.NewQRCodeRepository(db.GetDB())
	qrFeeRepo := repository.NewQRFeeConfigRepository(db.GetDB())

	// Initialize services
	restaurantService := service.NewRestaurantService(restaurantRepo, restaurantCatalog, cfg.Vendor.Concurrency)
	qrCodeService := service.NewQRCodeService(
		qrCodeRepo,
		restaurantRepo,
		service.QRSettings{
			BaseURL:        cfg.QR.BaseURL,
			PNGDensityDPI:  cfg.QR.PNGDensityDPI,
			RenderCacheTTL: cfg.QR.RenderCacheTTL,
		},
		artifactStore,
		renderCache,
		hub,
	)
	qrFeeService := service.NewQRFeeService(qrFeeRepo, restaurantRepo)

	// Initialize controllers
	restaurantController := controller.NewRestaurantController(restaurantService)
	qrCodeController := controller.NewQRCodeController(qrCodeService)
	qrFeeController := controller.NewQRFeeController(qrFeeService)
	scanController := controller.NewScanController(qrCodeService)
	streamController := controller.NewStreamController(hub, cfg.CORS.AllowedOrigins)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	r := router.NewRouter(
		restaurantController,
		qrCodeController,
		qrFeeController,
		scanController,
		streamController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Restaurant catalog sync
	var syncScheduler *scheduler.RestaurantSyncScheduler
	if cfg.Vendor.Enabled() && cfg.Vendor.Schedule != "" {
		syncScheduler = scheduler.NewRestaurantSyncScheduler(restaurantService, cfg.Vendor.Schedule)
		if err := syncScheduler.Start(); err != nil {
			logger.Fatal("Failed to start restaurant sync scheduler", err)
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	if syncScheduler != nil {
		syncScheduler.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	// closes live scan streams
	cancel()

	logger.Info("Server stopped successfully")
}
