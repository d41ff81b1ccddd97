package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/geocoding-microservice/internal/domain"
	"github.com/geocoding-microservice/internal/domain/repository"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiration
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// memoryRepository is a process-local CacheRepository for single-instance
// deployments and tests where Redis is not available. Expired entries are
// dropped lazily on read.
type memoryRepository struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryRepository returns an in-memory lookup cache.
func NewMemoryRepository() repository.CacheRepository {
	return &memoryRepository{
		entries: make(map[string]memoryEntry),
	}
}

func (r *memoryRepository) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	entry, ok := r.entries[key]
	r.mu.RUnlock()

	if !ok {
		return nil, nil // Cache miss
	}
	if entry.expired(time.Now()) {
		r.mu.Lock()
		delete(r.entries, key)
		r.mu.Unlock()
		return nil, nil
	}
	return entry.value, nil
}

func (r *memoryRepository) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	r.mu.Lock()
	r.entries[key] = entry
	r.mu.Unlock()
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	delete(r.entries, key)
	r.mu.Unlock()
	return nil
}

func (r *memoryRepository) Exists(ctx context.Context, key string) (bool, error) {
	val, err := r.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return val != nil, nil
}

func (r *memoryRepository) GetGeocode(ctx context.Context, key string) (*domain.GeocodeResult, error) {
	data, err := r.Get(ctx, key)
	if err != nil || data == nil {
		return nil, err
	}

	var res domain.GeocodeResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("unmarshal geocode result: %w", err)
	}
	return &res, nil
}

func (r *memoryRepository) SetGeocode(ctx context.Context, key string, res *domain.GeocodeResult, ttl time.Duration) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal geocode result: %w", err)
	}
	return r.Set(ctx, key, data, ttl)
}
