package repository

import (
	"context"
	"time"

	"github.com/geocoding-microservice/internal/domain"
)

// CacheRepository is the lookup cache in front of paid provider calls.
// A nil result with a nil error is a cache miss.
type CacheRepository interface {
	// Get returns the raw value stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a raw value. A zero TTL means the entry never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether a key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// GetGeocode returns a cached geocode result.
	GetGeocode(ctx context.Context, key string) (*domain.GeocodeResult, error)

	// SetGeocode stores a geocode result.
	SetGeocode(ctx context.Context, key string, res *domain.GeocodeResult, ttl time.Duration) error
}
