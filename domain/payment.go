package domain

import "sync/atomic"

// PaymentIntent ties one attempted charge to one order. The client secret is
// only ever handed to the payment provider; String/GoString redact it so it
// cannot leak through logging.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	OrderID      int64
}

func (p PaymentIntent) String() string {
	return "PaymentIntent(" + p.ID + ", secret=REDACTED)"
}

func (p PaymentIntent) GoString() string {
	return p.String()
}

// PaymentMethodToken is the opaque handle the provider issues for tokenized
// card details. Tokens are single-use by provider contract.
type PaymentMethodToken struct {
	ID string

	consumed atomic.Bool
}

func NewPaymentMethodToken(id string) *PaymentMethodToken {
	return &PaymentMethodToken{ID: id}
}

// Consume marks the token as used. The second call fails: a token must never
// back two confirmation attempts.
func (t *PaymentMethodToken) Consume() error {
	if t.consumed.Swap(true) {
		return ErrTokenConsumed
	}
	return nil
}

func (t *PaymentMethodToken) Consumed() bool {
	return t.consumed.Load()
}

// ProviderConfig is the payment-provider bootstrap handed out by the backend.
type ProviderConfig struct {
	PublicKey string `json:"publicKey"`
	Currency  string `json:"currency"`
	Locale    string `json:"locale"`
}
