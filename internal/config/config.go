package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config aggregates everything the checkout core needs at startup. A missing
// or malformed value is reported here, once, instead of failing deep inside a
// checkout attempt.
type Config struct {
	API      APIConfig
	Provider ProviderConfig
	Cache    CacheConfig
	Metrics  MetricsConfig
}

// APIConfig describes connectivity to the APPECOMM backend.
type APIConfig struct {
	BaseURL        string
	AuthToken      string
	UserID         int64
	RequestTimeout time.Duration
}

// ProviderConfig describes connectivity to the payment provider.
type ProviderConfig struct {
	BaseURL          string
	ChallengeTimeout time.Duration
	ReturnListenAddr string
}

// CacheConfig controls the provider-config cache. An empty RedisAddr selects
// the in-memory cache.
type CacheConfig struct {
	RedisAddr string
	TTL       time.Duration
}

type MetricsConfig struct {
	Enabled bool
}

const (
	defaultRequestTimeout   = 15 * time.Second
	defaultChallengeTimeout = 60 * time.Second
	defaultProviderBaseURL  = "https://api.stripe.com"
	defaultReturnListenAddr = "127.0.0.1:4242"
	defaultCacheTTL         = 15 * time.Minute
)

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		API: APIConfig{
			BaseURL:        os.Getenv("APPECOMM_API_URL"),
			AuthToken:      os.Getenv("APPECOMM_AUTH_TOKEN"),
			RequestTimeout: defaultRequestTimeout,
		},
		Provider: ProviderConfig{
			BaseURL:          valueOrDefault("PAYMENT_PROVIDER_URL", defaultProviderBaseURL),
			ChallengeTimeout: defaultChallengeTimeout,
			ReturnListenAddr: valueOrDefault("CHALLENGE_RETURN_ADDR", defaultReturnListenAddr),
		},
		Cache: CacheConfig{
			RedisAddr: os.Getenv("REDIS_ADDR"),
			TTL:       defaultCacheTTL,
		},
		Metrics: MetricsConfig{
			Enabled: parseBoolWithDefault("METRICS_ENABLED", false),
		},
	}

	if cfg.API.BaseURL == "" {
		return Config{}, fmt.Errorf("APPECOMM_API_URL is required")
	}

	userID, err := parseInt64WithDefault("APPECOMM_USER_ID", 0)
	if err != nil {
		return Config{}, err
	}
	cfg.API.UserID = userID

	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
		}
		cfg.API.RequestTimeout = d
	}

	if v := os.Getenv("CHALLENGE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CHALLENGE_TIMEOUT: %w", err)
		}
		cfg.Provider.ChallengeTimeout = d
	}

	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CACHE_TTL: %w", err)
		}
		cfg.Cache.TTL = d
	}

	return cfg, nil
}

func valueOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBoolWithDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func parseInt64WithDefault(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
