package geocodio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/geocoding-microservice/internal/config"
	"github.com/geocoding-microservice/internal/domain"
	"github.com/geocoding-microservice/internal/domain/repository"
	apperrors "github.com/geocoding-microservice/internal/pkg/errors"
	"github.com/geocoding-microservice/internal/pkg/utils"
)

// errKeyRejected marks provider responses that invalidate the current API
// key (quota exhausted, invalid key, demo account). The client rotates to
// the next key in the pool and retries immediately.
var errKeyRejected = errors.New("geocodio: api key rejected")

// keyRejectionPrefixes are the provider error messages that mean the key
// itself is the problem rather than the request.
var keyRejectionPrefixes = []string{
	"Please add a payment method.",
	"Invalid API key",
	"This is just a demo account",
}

type client struct {
	httpClient  *http.Client
	baseURL     string
	maxAttempts int
	backoffMin  time.Duration
	backoffMax  time.Duration
	logger      *zap.Logger

	// The credential cursor is owned by the client instance and guarded
	// for concurrent lookups.
	mu     sync.Mutex
	keys   []string
	cursor int
}

// NewClient creates a Geocod.io client with a rotating credential pool.
func NewClient(cfg *config.GeocodioConfig, logger *zap.Logger) repository.GeocoderRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		maxAttempts: cfg.MaxAttempts,
		backoffMin:  cfg.BackoffMin,
		backoffMax:  cfg.BackoffMax,
		keys:        cfg.APIKeys,
		logger:      logger,
	}
}

// Geocode resolves a street address via /geocode.
func (c *client) Geocode(ctx context.Context, address string) ([]domain.GeocodeResult, error) {
	if address == "" {
		return nil, apperrors.ErrInvalidAddress
	}
	return c.lookup(ctx, "/geocode", address)
}

// ReverseGeocode resolves coordinates via /reverse.
func (c *client) ReverseGeocode(ctx context.Context, lat, lon float64) ([]domain.GeocodeResult, error) {
	if !utils.ValidateCoordinates(lat, lon) {
		return nil, apperrors.ErrInvalidCoordinates
	}
	query := fmt.Sprintf("%.6f,%.6f", lat, lon)
	return c.lookup(ctx, "/reverse", query)
}

// lookup drives the retry loop: key rejections rotate the credential cursor
// and retry at once, transient failures back off exponentially up to
// maxAttempts, and an exhausted pool fails fast.
func (c *client) lookup(ctx context.Context, path, query string) ([]domain.GeocodeResult, error) {
	attempt := 0
	backoff := c.backoffMin

	for {
		key, err := c.currentKey()
		if err != nil {
			return nil, err
		}

		locations, err := c.call(ctx, path, query, key)
		if err == nil {
			results := make([]domain.GeocodeResult, 0, len(locations))
			for i := range locations {
				results = append(results, locations[i].toDomain())
			}
			return results, nil
		}

		if errors.Is(err, errKeyRejected) {
			c.logger.Warn("Geocodio API key rejected, rotating to next key",
				zap.String("path", path))
			c.rotate(key)
			continue
		}

		attempt++
		if attempt >= c.maxAttempts {
			c.logger.Error("Geocodio request failed after all attempts",
				zap.String("path", path),
				zap.Int("attempts", attempt),
				zap.Error(err))
			return nil, apperrors.ErrProviderError.WithDetails(map[string]interface{}{
				"reason": err.Error(),
			})
		}

		c.logger.Warn("Geocodio request failed, retrying",
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > c.backoffMax {
			backoff = c.backoffMax
		}
	}
}

// call performs a single HTTP request with a single key.
func (c *client) call(ctx context.Context, path, query, key string) ([]location, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("fields", "census")
	params.Set("api_key", key)

	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if parsed.Error != "" {
		for _, prefix := range keyRejectionPrefixes {
			if strings.HasPrefix(parsed.Error, prefix) {
				return nil, fmt.Errorf("%w: %s", errKeyRejected, parsed.Error)
			}
		}
		return nil, fmt.Errorf("geocodio reported error: %s", parsed.Error)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocodio returned status %d: %s", resp.StatusCode, string(body))
	}

	if parsed.Results == nil {
		return nil, fmt.Errorf("unexpected response: %s", string(body))
	}

	return parsed.Results, nil
}

// currentKey returns the key under the cursor, or ErrProviderExhausted once
// the cursor has moved past the pool.
func (c *client) currentKey() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cursor >= len(c.keys) {
		return "", apperrors.ErrProviderExhausted
	}
	return c.keys[c.cursor], nil
}

// rotate advances the cursor past the rejected key. The key argument keeps
// concurrent lookups from skipping a key twice.
func (c *client) rotate(rejected string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cursor < len(c.keys) && c.keys[c.cursor] == rejected {
		c.cursor++
	}
}
