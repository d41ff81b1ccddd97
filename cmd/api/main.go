package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/geocoding-microservice/internal/config"
	httpDelivery "github.com/geocoding-microservice/internal/delivery/http"
	"github.com/geocoding-microservice/internal/delivery/http/handler"
	"github.com/geocoding-microservice/internal/domain"
	"github.com/geocoding-microservice/internal/domain/repository"
	"github.com/geocoding-microservice/internal/infrastructure/geocodio"
	"github.com/geocoding-microservice/internal/pkg/logger"
	"github.com/geocoding-microservice/internal/repository/cache"
	"github.com/geocoding-microservice/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Geocoding Microservice")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("cache_backend", cfg.Cache.Backend),
	)

	// 3. Initialize cache backend
	var (
		cacheRepo   repository.CacheRepository
		healthCheck func(ctx context.Context) error
	)

	if cfg.Cache.Backend == config.CacheBackendRedis {
		redisClient, err := cache.NewRedis(cfg, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Health(ctx); err != nil {
			cancel()
			log.Fatal("Redis health check failed", zap.Error(err))
		}
		cancel()
		log.Info("Redis connected")

		cacheRepo = cache.NewCacheRepository(redisClient)
		healthCheck = redisClient.Health
	} else {
		cacheRepo = cache.NewMemoryRepository()
		log.Info("In-memory cache backend active")
	}

	// 4. Initialize provider client
	geocoderRepo := geocodio.NewClient(&cfg.Geocodio, log)

	// 5. Initialize use case
	boundary := domain.BaltimoreCity(cfg.Bounds.TargetCounty)
	geocodeUC := usecase.NewGeocodeUseCase(
		geocoderRepo,
		cacheRepo,
		boundary,
		log,
		cfg.Cache.KeyPrefix,
		cfg.Cache.TTL,
	)

	log.Info("Use cases initialized")

	// 6. Initialize HTTP handlers and server
	geocodeHandler := handler.NewGeocodeHandler(geocodeUC, log)
	statsHandler := handler.NewStatsHandler(geocodeUC, log)

	server := httpDelivery.NewServer(cfg, log, geocodeHandler, statsHandler, healthCheck)

	// 7. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 8. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
