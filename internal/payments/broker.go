package payments

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/singleflight"

	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/domain"
	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/internal/api"
	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/internal/cache"
)

// Broker is the backend-facing side of the payment flow: intent creation,
// confirmation, cancellation and the provider bootstrap config. The backend
// is the sole authority on amounts; the client never sends one.
type Broker struct {
	api   *api.Client
	cache cache.ConfigCache
	sfg   singleflight.Group // prevents a config-fetch stampede
}

func NewBroker(client *api.Client, configCache cache.ConfigCache) (*Broker, error) {
	if client == nil {
		return nil, fmt.Errorf("payments: api client is required")
	}
	if configCache == nil {
		return nil, fmt.Errorf("payments: config cache is required")
	}
	return &Broker{api: client, cache: configCache}, nil
}

type createIntentRequest struct {
	PaymentMethodID string `json:"payment_method_id,omitempty"`
}

type createIntentResponse struct {
	PaymentIntentID string        `json:"paymentIntentId"`
	ClientSecret    string        `json:"clientSecret"`
	Order           *domain.Order `json:"order"`
}

// CreateIntent asks the backend for a payment intent against orderID.
// Idempotent from the client's perspective when retried with the same order.
func (b *Broker) CreateIntent(ctx context.Context, orderID int64, paymentMethodID string) (*domain.PaymentIntent, error) {
	if orderID == 0 {
		return nil, domain.NewError(domain.KindValidation, "order id is required", nil)
	}

	var resp createIntentResponse
	path := fmt.Sprintf("/payments/checkout/order/%d", orderID)
	if err := b.api.Post(ctx, path, "", createIntentRequest{PaymentMethodID: paymentMethodID}, &resp); err != nil {
		return nil, err
	}
	if resp.PaymentIntentID == "" || resp.ClientSecret == "" {
		return nil, domain.NewError(domain.KindServer, "intent response missing identifiers", nil)
	}

	return &domain.PaymentIntent{
		ID:           resp.PaymentIntentID,
		ClientSecret: resp.ClientSecret,
		OrderID:      orderID,
	}, nil
}

type confirmRequest struct {
	PaymentMethodID string `json:"paymentMethodId"`
}

type confirmResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Confirm reports the payment outcome to the backend and returns its
// acknowledgment. ok=false carries the backend's message verbatim.
func (b *Broker) Confirm(ctx context.Context, intentID, paymentMethodID string) (bool, string, error) {
	var resp confirmResponse
	path := "/payments/confirm/" + intentID
	if err := b.api.Post(ctx, path, "", confirmRequest{PaymentMethodID: paymentMethodID}, &resp); err != nil {
		return false, "", err
	}
	return resp.Success, resp.Message, nil
}

// Cancel is the best-effort cleanup for an abandoned intent.
func (b *Broker) Cancel(ctx context.Context, intentID string) error {
	return b.api.Post(ctx, "/payments/cancel/"+intentID, "", nil, nil)
}

// ProviderConfig returns the payment-provider bootstrap, cached between
// attempts. Cache failures are logged and the backend is asked directly.
func (b *Broker) ProviderConfig(ctx context.Context) (*domain.ProviderConfig, error) {
	cfg, err := b.cache.Get(ctx)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		log.Printf("provider config cache get error: %v", err)
	}

	v, err, _ := b.sfg.Do("provider-config", func() (interface{}, error) {
		var fetched domain.ProviderConfig
		if errGet := b.api.Get(ctx, "/stripe-client/config", "", &fetched); errGet != nil {
			return nil, errGet
		}
		if fetched.PublicKey == "" {
			return nil, domain.NewError(domain.KindServer, "provider config missing public key", nil)
		}
		if errSet := b.cache.Set(ctx, &fetched); errSet != nil {
			log.Printf("provider config cache set error: %v", errSet)
		}
		return &fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.ProviderConfig), nil
}

// PublicKey implements KeySource for the provider client.
func (b *Broker) PublicKey(ctx context.Context) (string, error) {
	cfg, err := b.ProviderConfig(ctx)
	if err != nil {
		return "", err
	}
	return cfg.PublicKey, nil
}
