package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/domain"
)

const configKey = "payments:provider-config"

func NewRedisCache(client *redis.Client, baseTTL time.Duration) *RedisCache {
	if baseTTL <= 0 {
		baseTTL = 15 * time.Minute
	}
	return &RedisCache{
		client:  client,
		baseTTL: baseTTL,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisCache) Get(ctx context.Context) (*domain.ProviderConfig, error) {
	data, err := r.client.Get(ctx, configKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cfg domain.ProviderConfig
	if err2 := json.Unmarshal(data, &cfg); err2 != nil {
		return nil, fmt.Errorf("unmarshal provider config failed: %w", err2)
	}
	return &cfg, nil
}

func (r *RedisCache) Set(ctx context.Context, cfg *domain.ProviderConfig) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal provider config failed: %w", err)
	}

	// jitter the TTL so a fleet of clients does not expire at once
	jitter := time.Duration(rand.Intn(60)) * time.Second
	ttl := r.baseTTL + jitter
	if ret := r.client.Set(ctx, configKey, payload, ttl); ret.Err() != nil {
		return fmt.Errorf("redis set failed: %w", ret.Err())
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, configKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
