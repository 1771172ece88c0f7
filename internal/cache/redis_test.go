package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/domain"
)

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client, time.Minute), mr
}

func testConfig() *domain.ProviderConfig {
	return &domain.ProviderConfig{PublicKey: "pk_test_123", Currency: "eur", Locale: "es"}
}

func TestRedisCache_SetGet(t *testing.T) {
	c, _ := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, testConfig()))

	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pk_test_123", got.PublicKey)
	assert.Equal(t, "eur", got.Currency)
	assert.Equal(t, "es", got.Locale)
}

func TestRedisCache_MissAndExpiry(t *testing.T) {
	c, mr := newTestRedisCache(t)
	ctx := context.Background()

	_, err := c.Get(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, testConfig()))
	// TTL is base plus up to a minute of jitter
	mr.FastForward(3 * time.Minute)

	_, err = c.Get(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_Delete(t *testing.T) {
	c, _ := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, testConfig()))
	require.NoError(t, c.Delete(ctx))

	_, err := c.Get(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_ServerGone(t *testing.T) {
	c, mr := newTestRedisCache(t)
	ctx := context.Background()

	mr.Close()

	_, err := c.Get(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()

	_, err := c.Get(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, testConfig()))

	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pk_test_123", got.PublicKey)

	// the cache hands out copies, not its own pointer
	got.PublicKey = "mutated"
	again, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pk_test_123", again.PublicKey)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, testConfig()))
	time.Sleep(30 * time.Millisecond)

	_, err := c.Get(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_Delete(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, testConfig()))
	require.NoError(t, c.Delete(ctx))

	_, err := c.Get(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)
}
