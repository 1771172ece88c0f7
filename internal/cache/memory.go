package cache

import (
	"context"
	"sync"
	"time"

	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/domain"
)

// MemoryCache is the in-process fallback used when no redis address is
// configured.
type MemoryCache struct {
	ttl time.Duration

	mu        sync.Mutex
	cfg       *domain.ProviderConfig
	expiresAt time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &MemoryCache{ttl: ttl}
}

func (m *MemoryCache) Get(context.Context) (*domain.ProviderConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg == nil || time.Now().After(m.expiresAt) {
		m.cfg = nil
		return nil, ErrCacheMiss
	}
	cp := *m.cfg
	return &cp, nil
}

func (m *MemoryCache) Set(_ context.Context, cfg *domain.ProviderConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *cfg
	m.cfg = &cp
	m.expiresAt = time.Now().Add(m.ttl)
	return nil
}

func (m *MemoryCache) Delete(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = nil
	return nil
}
