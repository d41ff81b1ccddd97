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
	"github.com/geocoding-microservice/internal/domain"
	"github.com/geocoding-microservice/internal/infrastructure/geocodio"
	"github.com/geocoding-microservice/internal/pkg/logger"
	"github.com/geocoding-microservice/internal/repository/cache"
	redisRepo "github.com/geocoding-microservice/internal/repository/redis"
	"github.com/geocoding-microservice/internal/usecase"
	"github.com/geocoding-microservice/internal/worker"
	workergeocode "github.com/geocoding-microservice/internal/worker/geocode"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Batch Geocode Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.String("request_stream", cfg.Worker.RequestStream),
		zap.String("result_stream", cfg.Worker.ResultStream),
		zap.Int("max_retries", cfg.Worker.MaxRetries))

	// 3. Connect to Redis. The worker always requires it for streams, so
	// the cache also lives there regardless of CACHE_BACKEND.
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

	// 4. Initialize repositories
	cacheRepo := cache.NewCacheRepository(redisClient)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), cfg.Worker.StreamReadTimeout, log)
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

	// 6. Initialize workers
	batchWorker := workergeocode.NewBatchGeocodeWorker(
		streamRepo,
		geocodeUC,
		cfg.Worker.RequestStream,
		cfg.Worker.ResultStream,
		cfg.Worker.ConsumerGroup,
		cfg.Worker.MaxRetries,
		log,
	)

	// 7. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(log)
	workerManager.Register(batchWorker)

	// 8. Start and wait for shutdown signal
	runCtx, stop := context.WithCancel(context.Background())
	defer stop()

	if err := workerManager.Start(runCtx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	stop()

	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker shutdown complete")
}
