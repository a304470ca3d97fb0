package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SergeiKhy/golink/internal/config"
	"github.com/SergeiKhy/golink/internal/handler"
	"github.com/SergeiKhy/golink/internal/identity"
	applog "github.com/SergeiKhy/golink/internal/logger"
	"github.com/SergeiKhy/golink/internal/metrics"
	"github.com/SergeiKhy/golink/internal/middleware"
	"github.com/SergeiKhy/golink/internal/repository"
	"github.com/SergeiKhy/golink/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := applog.New(cfg.App)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	if cfg.App.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.Init()

	ctx := context.Background()

	store, err := repository.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open link store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer store.Close()
	logger.Info("Link store ready",
		zap.String("driver", cfg.Store.Driver),
		zap.String("namespace", cfg.Store.Namespace),
		zap.String("database", cfg.Store.Database),
	)

	monitor := repository.NewMonitor(store, cfg.Store.MonitorInterval, logger, metrics.SetStoreUp)
	metrics.SetStoreUp(monitor.Check(ctx))
	monitor.Start()
	defer monitor.Stop()

	var profileCache repository.ProfileCache
	if cfg.Redis.Enabled {
		redis, err := repository.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redis.Close()
		profileCache = repository.NewProfileCache(redis)
		logger.Info("Connected to Redis", zap.Duration("profile_ttl", cfg.Redis.ProfileTTL))
	}

	discord := identity.NewDiscordClient(cfg.Discord)
	provider := identity.NewCachedProvider(discord, profileCache, cfg.Redis.ProfileTTL, logger)

	linkStore := service.NewLinkStore(store, logger)
	linkService := service.NewLinkService(linkStore, logger)
	linkService.EnsureCollection(ctx)
	resolver := service.NewAccessResolver(linkStore, service.NewAuditLog(store, logger), provider, logger)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.BurstSize,
		CleanupInterval:   time.Minute,
	})
	defer rateLimiter.Stop()

	sessions := middleware.NewSessions(cfg.Auth)
	if len(cfg.Auth.APIKeys) > 0 {
		logger.Info("API key authentication enabled", zap.Int("keys_count", len(cfg.Auth.APIKeys)))
	}
	if len(cfg.Auth.AdminUsers) == 0 {
		logger.Warn("ADMIN_USERS is empty, only API keys can manage links")
	}

	router := handler.NewRouter(handler.RouterDeps{
		Links:       linkService,
		Resolver:    resolver,
		Provider:    provider,
		Cache:       provider,
		Sessions:    sessions,
		Gate:        middleware.NewGate(sessions, provider, cfg.Auth.AdminUsers, logger),
		APIKey:      middleware.NewAPIKey(middleware.APIKeyConfig{ValidKeys: cfg.Auth.APIKeys}),
		RateLimiter: rateLimiter,
		Health:      monitor,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
