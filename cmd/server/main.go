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

	"github.com/ikkim/bookshelf-backend/config"
	"github.com/ikkim/bookshelf-backend/internal/app/controller"
	"github.com/ikkim/bookshelf-backend/internal/app/repository"
	"github.com/ikkim/bookshelf-backend/internal/app/service"
	"github.com/ikkim/bookshelf-backend/internal/db"
	"github.com/ikkim/bookshelf-backend/internal/health"
	"github.com/ikkim/bookshelf-backend/internal/metrics"
	"github.com/ikkim/bookshelf-backend/internal/middleware"
	"github.com/ikkim/bookshelf-backend/internal/router"
	"github.com/ikkim/bookshelf-backend/internal/scheduler"
	"github.com/ikkim/bookshelf-backend/internal/storage"
	ws "github.com/ikkim/bookshelf-backend/internal/websocket"
	"github.com/ikkim/bookshelf-backend/pkg/logger"
	"github.com/ikkim/bookshelf-backend/pkg/redis"
	"github.com/ikkim/bookshelf-backend/pkg/util"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := cfg.Log.Level
	if logLevel == "" {
		logLevel = logger.DefaultLevel(cfg.Server.Environment)
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Log.Format == "console",
	})

	logger.Info("Starting Bookshelf Backend Server", logger.Fields{
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

	if err := db.Migrate(db.GetDB()); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	healthHandler := health.NewHandler(2 * time.Second)
	healthHandler.Register("database", db.Pinger{DB: db.GetDB()})

	// Token revocation is optional
	var revoker service.TokenRevoker
	var revocationChecker middleware.RevocationChecker
	if cfg.Redis.Enabled() {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Fatal("Failed to initialize Redis", err)
		}
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
		blacklist := redis.NewTokenBlacklist(redis.GetClient())
		revoker = blacklist
		revocationChecker = blacklist
		healthHandler.Register("redis", blacklist)
	} else {
		logger.Warn("REDIS_HOST not set, logout will not revoke tokens")
	}

	var covers controller.CoverUploader
	if cfg.S3.Enabled() {
		covers = storage.NewS3Storage(cfg.S3)
	} else {
		logger.Warn("AWS_S3_BUCKET not set, cover uploads are disabled")
	}

	appMetrics := metrics.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := ws.NewHub()
	go hub.Run(ctx)

	tokens := util.TokenSettings{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		Expiry:   cfg.JWT.Expiry,
	}

	// Initialize repositories
	conn := db.GetDB()
	userRepo := repository.NewUserRepository(conn)
	categoryRepo := repository.NewCategoryRepository(conn)
	catalogRepo := repository.NewCatalogRepository(conn)
	orderRepo := repository.NewOrderRepository(conn)
	reviewRepo := repository.NewReviewRepository(conn)

	// Initialize services
	authService := service.NewAuthService(userRepo, tokens, revoker)
	catalogService := service.NewCatalogService(conn, catalogRepo, categoryRepo, orderRepo, reviewRepo)
	categoryService := service.NewCategoryService(conn, categoryRepo)
	cartService := service.NewCartService(conn, orderRepo, userRepo, catalogRepo, appMetrics)
	reviewService := service.NewReviewService(reviewRepo, catalogRepo, userRepo, hub)
	orderService := service.NewOrderService(conn, orderRepo, userRepo, catalogRepo)
	userService := service.NewUserService(conn, userRepo, orderRepo, reviewRepo)

	sweeper := scheduler.NewCartSweeper(cartService, cfg.Scheduler.CartSweepSpec, cfg.Scheduler.CartSweepMaxAge)
	if err := sweeper.Start(); err != nil {
		logger.Fatal("Failed to start cart sweeper", err)
	}
	defer sweeper.Stop()

	controllers := router.Controllers{
		Auth:          controller.NewAuthController(authService),
		Catalog:       controller.NewCatalogController(catalogService),
		Cart:          controller.NewCartController(cartService),
		Review:        controller.NewReviewController(reviewService, catalogService, hub, ws.NewUpgrader(cfg.CORS.AllowedOrigins)),
		AdminCatalog:  controller.NewAdminCatalogController(catalogService, covers),
		AdminCategory: controller.NewAdminCategoryController(categoryService),
		Order:         controller.NewOrderController(orderService),
		AdminUser:     controller.NewAdminUserController(userService),
	}

	authMiddleware := middleware.NewAuthMiddleware(tokens, revocationChecker)

	engine := router.NewRouter(controllers, authMiddleware, appMetrics, healthHandler, cfg).Setup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", logger.Fields{
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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	cancel()

	logger.Info("Server stopped successfully")
}
