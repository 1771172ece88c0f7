package cache

import (
	"context"
	"errors"

	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/domain"
)

// ConfigCache keeps the payment-provider bootstrap config (public key,
// currency, locale) so every checkout attempt does not refetch it.
type ConfigCache interface {
	Get(ctx context.Context) (*domain.ProviderConfig, error)
	Set(ctx context.Context, cfg *domain.ProviderConfig) error
	Delete(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")
