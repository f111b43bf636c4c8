package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/adapters/cache"
	"github.com/SscSPs/travel_backoffice/internal/adapters/database/pgsql"
	"github.com/SscSPs/travel_backoffice/internal/adapters/memory"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	"github.com/SscSPs/travel_backoffice/internal/core/services"
	"github.com/SscSPs/travel_backoffice/internal/handlers"
	"github.com/SscSPs/travel_backoffice/internal/middleware"
	"github.com/SscSPs/travel_backoffice/internal/platform/config"
	"github.com/SscSPs/travel_backoffice/internal/utils"
	"github.com/SscSPs/travel_backoffice/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// @title Travel Back-Office API
// @version 1.0
// @description Employees, permission groups and ticket records of a travel agency.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Cancelled on SIGINT/SIGTERM; also bounds the ledger LISTEN connection.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	groupCache, closeCache := openPermissionCache(ctx, cfg, logger)
	defer closeCache()

	serviceContainer := services.NewServiceContainer(cfg, repos, groupCache)

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer posthogClient.Close()

	publicLimiter, err := middleware.NewLimiter(cfg.LoginRateLimit)
	if err != nil {
		logger.Error("Invalid LOGIN_RATE_LIMIT", slog.String("value", cfg.LoginRateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, handlers.RouteOptions{
		PublicLimiter: publicLimiter,
		Posthog:       posthogClient,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
}

// openStore builds the repositories for the configured driver. The returned
// func releases them.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("Using in-memory store, data is lost on restart")
		store := memory.NewStore()
		return store.Repositories(), store.Close, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established.")

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		dbPool.Close()
		return portsrepo.RepositoryProvider{}, nil, err
	}

	return pgsql.NewRepositoryProvider(ctx, dbPool), dbPool.Close, nil
}

// openPermissionCache returns nil when caching is disabled. A Redis cache that
// cannot be reached at startup falls back to the in-process LRU.
func openPermissionCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.PermissionGroupCache, func()) {
	noop := func() {}
	switch cfg.PermissionCache {
	case config.PermissionCacheNone:
		logger.Info("Permission group cache disabled")
		return nil, noop
	case config.PermissionCacheRedis:
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Error("Redis unavailable, falling back to LRU permission cache", slog.String("error", err.Error()))
			break
		}
		logger.Info("Permission group cache backed by Redis", slog.String("addr", cfg.RedisAddr))
		return cache.NewRedisGroupCache(client, "", cfg.PermissionCacheTTL), func() {
			if err := client.Close(); err != nil {
				logger.Error("Error closing Redis client", slog.String("error", err.Error()))
			}
		}
	}
	logger.Info("Permission group cache backed by LRU", slog.Int("size", cfg.PermissionCacheSize))
	return cache.NewLRUGroupCache(cfg.PermissionCacheSize, cfg.PermissionCacheTTL), noop
}
