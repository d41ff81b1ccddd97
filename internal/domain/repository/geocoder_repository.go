package repository

import (
	"context"

	"github.com/geocoding-microservice/internal/domain"
)

// GeocoderRepository is the external geocoding provider. Implementations own
// credential rotation and retry; callers only see the final outcome.
type GeocoderRepository interface {
	// Geocode resolves a street address to candidate locations, best
	// match first.
	Geocode(ctx context.Context, address string) ([]domain.GeocodeResult, error)

	// ReverseGeocode resolves coordinates to candidate addresses, best
	// match first.
	ReverseGeocode(ctx context.Context, lat, lon float64) ([]domain.GeocodeResult, error)
}
