package payments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/domain"
	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/internal/challenge"
)

// BackendGateway is the slice of the broker the coordinator needs.
type BackendGateway interface {
	Confirm(ctx context.Context, intentID, paymentMethodID string) (bool, string, error)
	Cancel(ctx context.Context, intentID string) error
}

// Coordinator drives one payment confirmation:
// idle -> preparing -> awaitingChallenge (optional) -> confirming ->
// succeeded | failed | cancelledByUser.
//
// Succeeded requires BOTH the provider reporting success AND the backend
// acknowledging it. The order's authoritative status lives server-side, so a
// provider success without backend acknowledgment is a failure of its own
// kind, never a success.
type Coordinator struct {
	provider         Provider
	backend          BackendGateway
	challenger       challenge.Completer
	challengeTimeout time.Duration

	// OnState, when set, observes every state change. Used for logging and
	// mirroring into the checkout machine.
	OnState func(domain.ConfirmationState)

	mu        sync.Mutex
	state     domain.ConfirmationState
	cancelReq chan struct{}
}

func NewCoordinator(provider Provider, backend BackendGateway, challenger challenge.Completer, challengeTimeout time.Duration) (*Coordinator, error) {
	if provider == nil {
		return nil, fmt.Errorf("payments: provider is required")
	}
	if backend == nil {
		return nil, fmt.Errorf("payments: backend gateway is required")
	}
	if challenger == nil {
		return nil, fmt.Errorf("payments: challenge completer is required")
	}
	if challengeTimeout <= 0 {
		challengeTimeout = 60 * time.Second
	}
	return &Coordinator{
		provider:         provider,
		backend:          backend,
		challenger:       challenger,
		challengeTimeout: challengeTimeout,
		state:            domain.ConfirmationIdle,
	}, nil
}

func (c *Coordinator) State() domain.ConfirmationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) setState(s domain.ConfirmationState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	if c.OnState != nil {
		c.OnState(s)
	}
}

// Cancel requests cancellation of the in-flight confirmation. Only honored
// from preparing or awaitingChallenge; anywhere else it is a no-op.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != domain.ConfirmationPreparing && c.state != domain.ConfirmationAwaitingChallenge {
		return
	}
	if c.cancelReq != nil {
		select {
		case <-c.cancelReq:
		default:
			close(c.cancelReq)
		}
	}
}

func (c *Coordinator) cancelRequested() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelReq == nil {
		return false
	}
	select {
	case <-c.cancelReq:
		return true
	default:
		return false
	}
}

// Confirm runs the whole confirmation for one intent/token pair. The returned
// state is terminal; err is nil for succeeded and cancelledByUser.
func (c *Coordinator) Confirm(ctx context.Context, intent *domain.PaymentIntent, token *domain.PaymentMethodToken) (domain.ConfirmationState, error) {
	if intent == nil || token == nil {
		return domain.ConfirmationFailed, domain.NewError(domain.KindValidation, "intent and token are required", nil)
	}

	c.mu.Lock()
	if c.state == domain.ConfirmationPreparing || c.state == domain.ConfirmationAwaitingChallenge || c.state == domain.ConfirmationConfirming {
		c.mu.Unlock()
		return domain.ConfirmationFailed, domain.NewError(domain.KindValidation, "a confirmation is already in flight", nil)
	}
	c.cancelReq = make(chan struct{})
	c.mu.Unlock()

	// tokens are single-use by provider contract
	if err := token.Consume(); err != nil {
		return c.fail(domain.NewError(domain.KindValidation, "payment method token already consumed", err))
	}

	c.setState(domain.ConfirmationPreparing)

	outcome, err := c.provider.ConfirmIntent(ctx, intent.ClientSecret, token.ID)
	if err != nil {
		return c.fail(err)
	}
	if c.cancelRequested() {
		return c.cancelled(intent)
	}

	switch outcome.Status {
	case ProviderDeclined:
		e := domain.NewError(domain.KindProvider, outcome.Message, nil)
		e.Code = outcome.DeclineCode
		return c.fail(e)

	case ProviderRequiresAction:
		state, err := c.runChallenge(ctx, intent, outcome.RedirectURL)
		if err != nil || state == domain.ConfirmationCancelledByUser {
			return state, err
		}

	case ProviderSucceeded:
		// fall through to backend acknowledgment
	}

	c.setState(domain.ConfirmationConfirming)

	ok, message, err := c.backend.Confirm(ctx, intent.ID, token.ID)
	if err != nil {
		// the provider moved funds but the order was not updated; this must
		// stay distinguishable from every other failure
		return c.fail(domain.NewError(domain.KindBackendAcknowledgment,
			"payment went through but the order could not be confirmed; check the order status before paying again", err))
	}
	if !ok {
		return c.fail(domain.NewError(domain.KindProvider, message, nil))
	}

	c.setState(domain.ConfirmationSucceeded)
	return domain.ConfirmationSucceeded, nil
}

// runChallenge suspends in awaitingChallenge until the out-of-band
// authentication finishes, times out, or the user cancels. On normal
// completion the provider is re-queried for the real outcome.
func (c *Coordinator) runChallenge(ctx context.Context, intent *domain.PaymentIntent, redirectURL string) (domain.ConfirmationState, error) {
	c.setState(domain.ConfirmationAwaitingChallenge)

	challengeCtx, cancel := context.WithTimeout(ctx, c.challengeTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- c.challenger.Complete(challengeCtx, redirectURL)
	}()

	c.mu.Lock()
	cancelReq := c.cancelReq
	c.mu.Unlock()

	select {
	case <-cancelReq:
		cancel()
		<-done // wait for the completer to unwind
		state, _ := c.cancelled(intent)
		return state, nil

	case err := <-done:
		if err != nil {
			if c.cancelRequested() {
				state, _ := c.cancelled(intent)
				return state, nil
			}
			if errors.Is(err, context.DeadlineExceeded) {
				return c.fail(domain.NewError(domain.KindTimeout, "payment authentication was not completed in time", err))
			}
			if errors.Is(err, context.Canceled) {
				return c.fail(domain.NewError(domain.KindCancelled, "payment authentication aborted", err))
			}
			return c.fail(domain.NewError(domain.KindProvider, "payment authentication failed", err))
		}
	}

	status, err := c.provider.IntentStatus(ctx, intent.ClientSecret)
	if err != nil {
		return c.fail(err)
	}
	if status != ProviderSucceeded {
		return c.fail(domain.NewError(domain.KindProvider, "payment authentication was not successful", nil))
	}
	return domain.ConfirmationConfirming, nil
}

func (c *Coordinator) fail(err error) (domain.ConfirmationState, error) {
	c.setState(domain.ConfirmationFailed)
	return domain.ConfirmationFailed, err
}

// cancelled performs the best-effort intent cleanup exactly once and settles
// in cancelledByUser. A failed cleanup call is logged, not surfaced; the
// cancellation still counts locally.
func (c *Coordinator) cancelled(intent *domain.PaymentIntent) (domain.ConfirmationState, error) {
	cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.backend.Cancel(cleanupCtx, intent.ID); err != nil {
		log.Printf("cancel payment intent %s failed: %v", intent.ID, err)
	}
	c.setState(domain.ConfirmationCancelledByUser)
	return domain.ConfirmationCancelledByUser, nil
}
