package checkout

import (
	"context"
	"sync/atomic"

	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/domain"
)

// mockOrders implements OrderService for testing
type mockOrders struct {
	Order     *domain.Order
	CreateErr error

	Current *domain.Order
	GetErr  error

	CreateCalls atomic.Int64
	GetCalls    atomic.Int64
}

func (m *mockOrders) Create(_ context.Context, _ *domain.CartSnapshot) (*domain.Order, error) {
	m.CreateCalls.Add(1)
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	return m.Order, nil
}

func (m *mockOrders) Get(_ context.Context, _ int64) (*domain.Order, error) {
	m.GetCalls.Add(1)
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Current, nil
}

// mockIntents implements IntentService for testing
type mockIntents struct {
	Intent *domain.PaymentIntent
	Err    error

	Calls atomic.Int64
}

func (m *mockIntents) CreateIntent(_ context.Context, orderID int64, _ string) (*domain.PaymentIntent, error) {
	m.Calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	intent := *m.Intent
	intent.OrderID = orderID
	return &intent, nil
}

// mockTokenizer implements CardTokenizer for testing
type mockTokenizer struct {
	TokenID string
	Err     error

	Calls atomic.Int64
}

func (m *mockTokenizer) Tokenize(_ context.Context, card *domain.CardDetails) (*domain.PaymentMethodToken, error) {
	m.Calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	card.Zero()
	return domain.NewPaymentMethodToken(m.TokenID), nil
}

// mockConfirmer implements PaymentConfirmer for testing
type mockConfirmer struct {
	State domain.ConfirmationState
	Err   error

	ConfirmCalls atomic.Int64
	CancelCalls  atomic.Int64

	LastTokenID string
}

func (m *mockConfirmer) Confirm(_ context.Context, _ *domain.PaymentIntent, token *domain.PaymentMethodToken) (domain.ConfirmationState, error) {
	m.ConfirmCalls.Add(1)
	if token != nil {
		m.LastTokenID = token.ID
	}
	return m.State, m.Err
}

func (m *mockConfirmer) Cancel() {
	m.CancelCalls.Add(1)
}
