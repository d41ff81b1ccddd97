package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Geocodio GeocodioConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Bounds   BoundsConfig
	Log      LogConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type GeocodioConfig struct {
	// APIKeys is the ordered credential pool. The client rotates to the
	// next key when the current one is rejected or runs out of quota.
	APIKeys        []string
	BaseURL        string
	RequestTimeout time.Duration
	MaxAttempts    int
	BackoffMin     time.Duration
	BackoffMax     time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

const (
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
)

type CacheConfig struct {
	// Backend selects the cache store: "redis" or "memory".
	Backend   string
	KeyPrefix string
	// TTL of 0 means entries never expire and are only dropped by
	// explicit invalidation.
	TTL time.Duration
}

type BoundsConfig struct {
	// TargetCounty is matched against the county component of provider
	// results, e.g. "Baltimore city".
	TargetCounty string
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	RequestStream     string
	ResultStream      string
	StreamReadTimeout time.Duration
	MaxRetries        int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing .env is fine when everything comes from the environment
		if !strings.Contains(err.Error(), "no such file") {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("API_HOST"),
			Port: viper.GetInt("API_PORT"),
			Env:  viper.GetString("API_ENV"),
		},
		Geocodio: GeocodioConfig{
			APIKeys:        parseAPIKeys(viper.GetString("GEOCODIO_API_KEYS")),
			BaseURL:        viper.GetString("GEOCODIO_BASE_URL"),
			RequestTimeout: time.Duration(viper.GetInt("GEOCODIO_REQUEST_TIMEOUT")) * time.Second,
			MaxAttempts:    viper.GetInt("GEOCODIO_MAX_ATTEMPTS"),
			BackoffMin:     time.Duration(viper.GetInt("GEOCODIO_BACKOFF_MIN")) * time.Second,
			BackoffMax:     time.Duration(viper.GetInt("GEOCODIO_BACKOFF_MAX")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			Backend:   viper.GetString("CACHE_BACKEND"),
			KeyPrefix: viper.GetString("CACHE_KEY_PREFIX"),
			TTL:       time.Duration(viper.GetInt("CACHE_TTL")) * time.Second,
		},
		Bounds: BoundsConfig{
			TargetCounty: viper.GetString("BOUNDS_TARGET_COUNTY"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:           viper.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     viper.GetString("WORKER_CONSUMER_GROUP"),
			RequestStream:     viper.GetString("WORKER_REQUEST_STREAM"),
			ResultStream:      viper.GetString("WORKER_RESULT_STREAM"),
			StreamReadTimeout: time.Duration(viper.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			MaxRetries:        viper.GetInt("WORKER_MAX_RETRIES"),
		},
	}

	// Set default values if not provided
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Geocodio.BaseURL == "" {
		cfg.Geocodio.BaseURL = "https://api.geocod.io/v1.6"
	}
	if cfg.Geocodio.RequestTimeout == 0 {
		cfg.Geocodio.RequestTimeout = 10 * time.Second
	}
	if cfg.Geocodio.MaxAttempts == 0 {
		cfg.Geocodio.MaxAttempts = 5
	}
	if cfg.Geocodio.BackoffMin == 0 {
		cfg.Geocodio.BackoffMin = 5 * time.Second
	}
	if cfg.Geocodio.BackoffMax == 0 {
		cfg.Geocodio.BackoffMax = 40 * time.Second
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = CacheBackendRedis
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = "geo"
	}
	if cfg.Bounds.TargetCounty == "" {
		cfg.Bounds.TargetCounty = "Baltimore city"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Worker.ConsumerGroup == "" {
		cfg.Worker.ConsumerGroup = "geocode-workers"
	}
	if cfg.Worker.RequestStream == "" {
		cfg.Worker.RequestStream = "geocode:requests"
	}
	if cfg.Worker.ResultStream == "" {
		cfg.Worker.ResultStream = "geocode:results"
	}
	if cfg.Worker.StreamReadTimeout == 0 {
		cfg.Worker.StreamReadTimeout = 5000 * time.Millisecond
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Geocodio.APIKeys) == 0 {
		return fmt.Errorf("GEOCODIO_API_KEYS must contain at least one key")
	}
	if c.Cache.Backend != CacheBackendRedis && c.Cache.Backend != CacheBackendMemory {
		return fmt.Errorf("unknown cache backend %q: expected redis or memory", c.Cache.Backend)
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func parseAPIKeys(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}
