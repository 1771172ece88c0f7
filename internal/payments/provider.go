package payments

import (
	"context"

	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/domain"
)

// ProviderStatus is the provider-side result of a confirmation step.
type ProviderStatus string

const (
	ProviderSucceeded      ProviderStatus = "succeeded"
	ProviderRequiresAction ProviderStatus = "requires_action"
	ProviderDeclined       ProviderStatus = "declined"
)

// ProviderOutcome describes what the provider wants next. RedirectURL is set
// only for requires_action; DeclineCode/Message only for declined.
type ProviderOutcome struct {
	Status      ProviderStatus
	RedirectURL string
	DeclineCode string
	Message     string
}

// Provider is the payment provider's client-side surface: tokenization of raw
// card data and confirmation of an intent through its client secret. Raw card
// data goes to the provider and nowhere else.
type Provider interface {
	CreatePaymentMethod(ctx context.Context, card *domain.CardDetails) (string, error)
	ConfirmIntent(ctx context.Context, clientSecret, paymentMethodID string) (*ProviderOutcome, error)
	IntentStatus(ctx context.Context, clientSecret string) (ProviderStatus, error)
}

// KeySource supplies the provider public key. The broker implements it from
// the backend's /stripe-client/config endpoint.
type KeySource interface {
	PublicKey(ctx context.Context) (string, error)
}
