package payments

import (
	"context"
	"sync/atomic"

	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/domain"
)

// mockProvider implements Provider for testing
type mockProvider struct {
	TokenID     string
	TokenizeErr error

	Outcome    *ProviderOutcome
	ConfirmErr error

	Status    ProviderStatus
	StatusErr error

	TokenizeCalls atomic.Int64
	ConfirmCalls  atomic.Int64
	StatusCalls   atomic.Int64
}

func (m *mockProvider) CreatePaymentMethod(_ context.Context, _ *domain.CardDetails) (string, error) {
	m.TokenizeCalls.Add(1)
	if m.TokenizeErr != nil {
		return "", m.TokenizeErr
	}
	return m.TokenID, nil
}

func (m *mockProvider) ConfirmIntent(_ context.Context, _, _ string) (*ProviderOutcome, error) {
	m.ConfirmCalls.Add(1)
	if m.ConfirmErr != nil {
		return nil, m.ConfirmErr
	}
	return m.Outcome, nil
}

func (m *mockProvider) IntentStatus(_ context.Context, _ string) (ProviderStatus, error) {
	m.StatusCalls.Add(1)
	if m.StatusErr != nil {
		return "", m.StatusErr
	}
	return m.Status, nil
}

// mockBackend implements BackendGateway for testing
type mockBackend struct {
	Ok         bool
	Message    string
	ConfirmErr error
	CancelErr  error

	ConfirmCalls atomic.Int64
	CancelCalls  atomic.Int64
}

func (m *mockBackend) Confirm(_ context.Context, _, _ string) (bool, string, error) {
	m.ConfirmCalls.Add(1)
	if m.ConfirmErr != nil {
		return false, "", m.ConfirmErr
	}
	return m.Ok, m.Message, nil
}

func (m *mockBackend) Cancel(_ context.Context, _ string) error {
	m.CancelCalls.Add(1)
	return m.CancelErr
}
