package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/geocoding-microservice/internal/domain"
	"github.com/geocoding-microservice/internal/domain/repository"
)

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCacheRepository returns the Redis-backed lookup cache.
func NewCacheRepository(redisConn *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redisConn.Client(),
		logger: redisConn.logger,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	// ttl of 0 stores without expiration, matching the no-TTL contract of
	// the lookup cache
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}

	r.logger.Debug("Cache deleted", zap.String("key", key))
	return nil
}

func (r *cacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	val, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		r.logger.Error("Failed to check cache existence", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("cache exists error: %w", err)
	}

	return val > 0, nil
}

func (r *cacheRepository) GetGeocode(ctx context.Context, key string) (*domain.GeocodeResult, error) {
	data, err := r.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil // Cache miss
	}

	var res domain.GeocodeResult
	if err := json.Unmarshal(data, &res); err != nil {
		r.logger.Error("Failed to unmarshal geocode result from cache",
			zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("unmarshal geocode result: %w", err)
	}

	return &res, nil
}

func (r *cacheRepository) SetGeocode(ctx context.Context, key string, res *domain.GeocodeResult, ttl time.Duration) error {
	data, err := json.Marshal(res)
	if err != nil {
		r.logger.Error("Failed to marshal geocode result", zap.Error(err))
		return fmt.Errorf("marshal geocode result: %w", err)
	}

	return r.Set(ctx, key, data, ttl)
}
