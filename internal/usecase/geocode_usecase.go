package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/geocoding-microservice/internal/domain"
	"github.com/geocoding-microservice/internal/domain/repository"
	"github.com/geocoding-microservice/internal/pkg/errors"
	"github.com/geocoding-microservice/internal/pkg/utils"
)

// GeocodeUseCase wires the provider client, the lookup cache and the bounds
// filter into the public geocode/reverse-geocode operations.
type GeocodeUseCase struct {
	geocoder  repository.GeocoderRepository
	cacheRepo repository.CacheRepository
	boundary  *domain.CityBoundary
	logger    *zap.Logger
	keyPrefix string
	cacheTTL  time.Duration

	cacheHits     atomic.Int64
	cacheMisses   atomic.Int64
	providerCalls atomic.Int64
	outOfCity     atomic.Int64
}

func NewGeocodeUseCase(
	geocoder repository.GeocoderRepository,
	cacheRepo repository.CacheRepository,
	boundary *domain.CityBoundary,
	logger *zap.Logger,
	keyPrefix string,
	cacheTTL time.Duration,
) *GeocodeUseCase {
	return &GeocodeUseCase{
		geocoder:  geocoder,
		cacheRepo: cacheRepo,
		boundary:  boundary,
		logger:    logger,
		keyPrefix: keyPrefix,
		cacheTTL:  cacheTTL,
	}
}

// Geocode resolves a street address, consulting the cache before the paid
// provider. With filterOutside set, results beyond the target city are
// reported as ErrOutOfBounds instead of being returned flagged.
func (uc *GeocodeUseCase) Geocode(ctx context.Context, address string, filterOutside bool) (*domain.GeocodeResult, error) {
	if strings.TrimSpace(address) == "" {
		return nil, errors.ErrInvalidAddress
	}

	normalized := domain.NormalizeAddress(address)
	key := uc.addressKey(normalized)

	if cached := uc.cacheLookup(ctx, key); cached != nil {
		uc.cacheHits.Add(1)
		return uc.applyFilter(cached, filterOutside)
	}
	uc.cacheMisses.Add(1)

	uc.logger.Info("Geocoding address via provider", zap.String("address", normalized))
	uc.providerCalls.Add(1)

	results, err := uc.geocoder.Geocode(ctx, normalized)
	if err != nil {
		return nil, err
	}

	for i := range results {
		uc.storeResult(ctx, &results[i], key)
	}
	return uc.finishLookup(ctx, results, key, filterOutside)
}

// ReverseGeocode resolves coordinates to an address. Coordinates are rounded
// to four decimal places before they become cache keys, so nearby lookups
// share one provider call.
func (uc *GeocodeUseCase) ReverseGeocode(ctx context.Context, lat, lon float64, filterOutside bool) (*domain.GeocodeResult, error) {
	if !utils.ValidateCoordinates(lat, lon) {
		return nil, errors.ErrInvalidCoordinates
	}

	rlat := utils.RoundCoordinate(lat)
	rlon := utils.RoundCoordinate(lon)
	key := uc.coordinateKey(rlat, rlon)

	if cached := uc.cacheLookup(ctx, key); cached != nil {
		uc.cacheHits.Add(1)
		return uc.applyFilter(cached, filterOutside)
	}
	uc.cacheMisses.Add(1)

	uc.logger.Info("Reverse geocoding via provider",
		zap.Float64("lat", rlat),
		zap.Float64("lon", rlon))
	uc.providerCalls.Add(1)

	results, err := uc.geocoder.ReverseGeocode(ctx, rlat, rlon)
	if err != nil {
		return nil, err
	}

	for i := range results {
		uc.storeResult(ctx, &results[i], key)
	}
	return uc.finishLookup(ctx, results, key, filterOutside)
}

// BatchGeocode resolves many addresses, returning a slice aligned with the
// input. Individual failures become nil entries rather than failing the
// whole batch.
func (uc *GeocodeUseCase) BatchGeocode(ctx context.Context, addresses []string, filterOutside bool) []*domain.GeocodeResult {
	results := make([]*domain.GeocodeResult, len(addresses))
	for i, addr := range addresses {
		res, err := uc.Geocode(ctx, addr, filterOutside)
		if err != nil {
			uc.logger.Warn("Batch geocode entry failed",
				zap.Int("index", i),
				zap.String("address", addr),
				zap.Error(err))
			continue
		}
		results[i] = res
	}
	return results
}

// InvalidateAddress drops the cache entry for an address.
func (uc *GeocodeUseCase) InvalidateAddress(ctx context.Context, address string) error {
	if strings.TrimSpace(address) == "" {
		return errors.ErrInvalidAddress
	}
	return uc.cacheRepo.Delete(ctx, uc.addressKey(domain.NormalizeAddress(address)))
}

// InvalidateCoordinates drops the cache entry for a coordinate pair.
func (uc *GeocodeUseCase) InvalidateCoordinates(ctx context.Context, lat, lon float64) error {
	if !utils.ValidateCoordinates(lat, lon) {
		return errors.ErrInvalidCoordinates
	}
	return uc.cacheRepo.Delete(ctx, uc.coordinateKey(utils.RoundCoordinate(lat), utils.RoundCoordinate(lon)))
}

// Stats returns the process-lifetime lookup counters.
func (uc *GeocodeUseCase) Stats() domain.Stats {
	return domain.Stats{
		CacheHits:     uc.cacheHits.Load(),
		CacheMisses:   uc.cacheMisses.Load(),
		ProviderCalls: uc.providerCalls.Load(),
		OutOfCity:     uc.outOfCity.Load(),
	}
}

// storeResult annotates a provider result with the bounds verdict and
// upserts it under every key it answers: the requested lookup key, the
// provider's formatted address and the result coordinates. An existing entry
// is only replaced by a strictly more accurate result.
func (uc *GeocodeUseCase) storeResult(ctx context.Context, res *domain.GeocodeResult, requestKey string) {
	res.WithinCity = uc.boundary.WithinCity(res)
	if !res.WithinCity {
		uc.outOfCity.Add(1)
		uc.logger.Warn("Geocode result outside target city",
			zap.String("formatted_address", res.FormattedAddress),
			zap.String("county", res.County))
	}

	keys := []string{requestKey}
	if res.FormattedAddress != "" {
		keys = append(keys, uc.addressKey(domain.NormalizeAddress(res.FormattedAddress)))
	}
	if res.Latitude != 0 || res.Longitude != 0 {
		keys = append(keys, uc.coordinateKey(
			utils.RoundCoordinate(res.Latitude),
			utils.RoundCoordinate(res.Longitude)))
	}

	for _, key := range keys {
		uc.upsert(ctx, key, res)
	}
}

// upsert writes the result unless the cache already holds one at least as
// accurate for the key.
func (uc *GeocodeUseCase) upsert(ctx context.Context, key string, res *domain.GeocodeResult) {
	existing := uc.cacheLookup(ctx, key)
	if existing != nil && existing.Accuracy >= res.Accuracy {
		return
	}
	if err := uc.cacheRepo.SetGeocode(ctx, key, res, uc.cacheTTL); err != nil {
		uc.logger.Error("Failed to cache geocode result",
			zap.String("key", key), zap.Error(err))
	}
}

// finishLookup picks the answer after a provider call. The cache read-back
// is preferred because the upsert may have kept a more accurate prior entry
// for the key, but a failing cache never discards a paid provider result:
// the best in-memory result is returned directly.
func (uc *GeocodeUseCase) finishLookup(ctx context.Context, results []domain.GeocodeResult, key string, filterOutside bool) (*domain.GeocodeResult, error) {
	best := bestResult(results)
	if cached := uc.cacheLookup(ctx, key); cached != nil {
		best = cached
	}
	if best == nil {
		return nil, errors.ErrNoResults
	}
	return uc.applyFilter(best, filterOutside)
}

// bestResult returns the highest-accuracy provider result, or nil for an
// empty response.
func bestResult(results []domain.GeocodeResult) *domain.GeocodeResult {
	var best *domain.GeocodeResult
	for i := range results {
		if best == nil || results[i].Accuracy > best.Accuracy {
			best = &results[i]
		}
	}
	return best
}

// cacheLookup reads through errors: a broken cache degrades to provider
// lookups instead of failing requests.
func (uc *GeocodeUseCase) cacheLookup(ctx context.Context, key string) *domain.GeocodeResult {
	res, err := uc.cacheRepo.GetGeocode(ctx, key)
	if err != nil {
		uc.logger.Warn("Cache lookup failed, treating as miss",
			zap.String("key", key), zap.Error(err))
		return nil
	}
	return res
}

func (uc *GeocodeUseCase) applyFilter(res *domain.GeocodeResult, filterOutside bool) (*domain.GeocodeResult, error) {
	if filterOutside && !res.WithinCity {
		return nil, errors.ErrOutOfBounds
	}
	return res, nil
}

func (uc *GeocodeUseCase) addressKey(normalized string) string {
	return fmt.Sprintf("%s:addr:%s", uc.keyPrefix, normalized)
}

func (uc *GeocodeUseCase) coordinateKey(lat, lon float64) string {
	return fmt.Sprintf("%s:rev:%.4f,%.4f", uc.keyPrefix, lat, lon)
}
