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

	"github.com/ikkim/pizza-delivery-backend/config"
	"github.com/ikkim/pizza-delivery-backend/internal/app/controller"
	"github.com/ikkim/pizza-delivery-backend/internal/app/repository"
	"github.com/ikkim/pizza-delivery-backend/internal/app/service"
	"github.com/ikkim/pizza-delivery-backend/internal/db"
	"github.com/ikkim/pizza-delivery-backend/internal/events"
	"github.com/ikkim/pizza-delivery-backend/internal/middleware"
	"github.com/ikkim/pizza-delivery-backend/internal/router"
	"github.com/ikkim/pizza-delivery-backend/internal/scheduler"
	"github.com/ikkim/pizza-delivery-backend/internal/storage"
	"github.com/ikkim/pizza-delivery-backend/internal/websocket"
	"github.com/ikkim/pizza-delivery-backend/pkg/logger"
	pkgredis "github.com/ikkim/pizza-delivery-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

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

	logger.Info("Starting Pizza Delivery Backend Server", map[string]interface{}{
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

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Seed admin account and starter menu (optional)
	if err := db.Seed(&cfg.Bootstrap); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Token revocation list
	var blacklist pkgredis.TokenBlacklist = pkgredis.NoopBlacklist{}
	if cfg.Redis.Enabled {
		if err := pkgredis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, logout will not revoke tokens", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			blacklist = pkgredis.NewTokenBlacklist(pkgredis.GetClient())
			defer func() {
				if err := pkgredis.Close(); err != nil {
					logger.Error("Failed to close Redis connection", err)
				}
			}()
		}
	}

	// Domain event publisher
	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		logger.Info("Kafka publisher configured", map[string]interface{}{
			"brokers": cfg.Kafka.Brokers,
			"topic":   cfg.Kafka.Topic,
		})
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", err)
		}
	}()

	// Pizza image uploads
	var images storage.ImageStorage
	if cfg.S3.AccessKeyID != "" {
		images = storage.NewS3Storage(
			cfg.S3.Region,
			cfg.S3.Bucket,
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			cfg.S3.BaseURL,
		)
	} else {
		logger.Warn("S3 credentials not set, image uploads disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Live order updates
	hub := websocket.NewHub()
	go hub.Run(ctx)

	database := db.GetDB()

	// Initialize repositories
	userRepo := repository.NewUserRepository(database)
	pizzaRepo := repository.NewPizzaRepository(database)
	cartRepo := repository.NewCartRepository(database)
	orderRepo := repository.NewOrderRepository(database)
	commentRepo := repository.NewDeliveryCommentRepository(database)
	ratingRepo := repository.NewRatingRepository(database)

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		blacklist,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	pizzaService := service.NewPizzaService(pizzaRepo, images)
	cartService := service.NewCartService(database, cartRepo, pizzaRepo)
	orderService := service.NewOrderService(
		database,
		orderRepo,
		cartRepo,
		userRepo,
		publisher,
		hub,
		cfg.Tracking.BaseURL,
	)
	deliveryService := service.NewDeliveryService(database, orderRepo, commentRepo, publisher, hub)
	ratingService := service.NewRatingService(ratingRepo, pizzaRepo, publisher)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	pizzaController := controller.NewPizzaController(pizzaService)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService)
	deliveryController := controller.NewDeliveryController(deliveryService)
	ratingController := controller.NewRatingController(ratingService)
	trackingController := controller.NewTrackingController(hub, cfg.CORS.AllowedOrigins)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, blacklist)

	// Setup router
	r := router.NewRouter(
		authController,
		pizzaController,
		cartController,
		orderController,
		deliveryController,
		ratingController,
		trackingController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Empty cart cleanup
	cartCleanup := scheduler.NewCartCleanupScheduler(
		cartService,
		cfg.Scheduler.CartCleanupSpec,
		cfg.Scheduler.CartRetention,
	)
	if err := cartCleanup.Start(); err != nil {
		logger.Warn("Cart cleanup scheduler disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		defer cartCleanup.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
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
	<-ctx.Done()
	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully")
}
