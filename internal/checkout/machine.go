package checkout

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/domain"
	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/internal/metrics"
)

// OrderService is the slice of the order creator the machine needs.
type OrderService interface {
	Create(ctx context.Context, snapshot *domain.CartSnapshot) (*domain.Order, error)
	Get(ctx context.Context, orderID int64) (*domain.Order, error)
}

// IntentService creates payment intents for orders.
type IntentService interface {
	CreateIntent(ctx context.Context, orderID int64, paymentMethodID string) (*domain.PaymentIntent, error)
}

// CardTokenizer exchanges raw card input for a single-use token.
type CardTokenizer interface {
	Tokenize(ctx context.Context, card *domain.CardDetails) (*domain.PaymentMethodToken, error)
}

// PaymentConfirmer drives one payment confirmation to a terminal state.
type PaymentConfirmer interface {
	Confirm(ctx context.Context, intent *domain.PaymentIntent, token *domain.PaymentMethodToken) (domain.ConfirmationState, error)
	Cancel()
}

// attempt is the transient aggregate for one user-initiated checkout. It is
// owned exclusively by the machine and destroyed on success or cancellation;
// a failed attempt is kept only so Retry can reuse its shipping data and
// pending order.
type attempt struct {
	id       string
	snapshot *domain.CartSnapshot
	shipping *domain.ShippingDetails
	card     *domain.CardDetails
	order    *domain.Order
	intent   *domain.PaymentIntent
	token    *domain.PaymentMethodToken
	phase    domain.CheckoutPhase
}

// Machine sequences order creation, intent creation, tokenization and
// confirmation into the observable progression
// initial -> shippingDetails -> paymentMethod -> orderSummary -> processing ->
// completed | failed | cancelled.
//
// One attempt runs at a time; Begin while a prior attempt is non-terminal is
// rejected without side effects. State updates are delivered on Updates() in
// production order and are never coalesced; the consumer must keep draining
// the channel from its own goroutine.
type Machine struct {
	orders    OrderService
	intents   IntentService
	tokenizer CardTokenizer
	confirmer PaymentConfirmer
	metrics   *metrics.CheckoutMetrics
	validate  *validatorv10.Validate

	mu      sync.Mutex
	attempt *attempt
	updates chan domain.CheckoutState
}

func NewMachine(orders OrderService, intents IntentService, tokenizer CardTokenizer, confirmer PaymentConfirmer, m *metrics.CheckoutMetrics) (*Machine, error) {
	if orders == nil {
		return nil, fmt.Errorf("checkout: order service is required")
	}
	if intents == nil {
		return nil, fmt.Errorf("checkout: intent service is required")
	}
	if tokenizer == nil {
		return nil, fmt.Errorf("checkout: tokenizer is required")
	}
	if confirmer == nil {
		return nil, fmt.Errorf("checkout: confirmer is required")
	}
	return &Machine{
		orders:    orders,
		intents:   intents,
		tokenizer: tokenizer,
		confirmer: confirmer,
		metrics:   m,
		validate:  validatorv10.New(),
		updates:   make(chan domain.CheckoutState, 32),
	}, nil
}

// Updates streams every state change in the order it was produced.
func (m *Machine) Updates() <-chan domain.CheckoutState {
	return m.updates
}

func (m *Machine) Phase() domain.CheckoutPhase {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attempt == nil {
		return domain.PhaseInitial
	}
	return m.attempt.phase
}

// setPhase records the transition and emits it while holding the lock, so
// updates can never be observed out of production order.
func (m *Machine) setPhase(state domain.CheckoutState) {
	m.mu.Lock()
	if m.attempt != nil {
		m.attempt.phase = state.Phase
	}
	m.updates <- state
	m.mu.Unlock()
}

// Begin captures the snapshot and opens a new attempt. Rejected while a
// prior attempt is still in flight for this machine.
func (m *Machine) Begin(snapshot *domain.CartSnapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	if m.attempt != nil && !m.attempt.phase.IsTerminal() {
		m.mu.Unlock()
		return domain.ErrCheckoutInProgress
	}
	m.attempt = &attempt{
		id:       uuid.NewString(),
		snapshot: snapshot,
		phase:    domain.PhaseInitial,
	}
	m.updates <- domain.CheckoutState{Phase: domain.PhaseInitial}
	m.attempt.phase = domain.PhaseShippingDetails
	m.updates <- domain.CheckoutState{Phase: domain.PhaseShippingDetails}
	m.mu.Unlock()
	return nil
}

// SubmitShipping stores the validated address block and advances to card entry.
func (m *Machine) SubmitShipping(details *domain.ShippingDetails) error {
	if details == nil {
		return domain.NewError(domain.KindValidation, "shipping details are required", nil)
	}
	if err := m.validate.Struct(details); err != nil {
		return domain.NewError(domain.KindValidation, "incomplete shipping details", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requirePhaseLocked(domain.PhaseShippingDetails); err != nil {
		return err
	}
	m.attempt.shipping = details
	m.attempt.phase = domain.PhasePaymentMethod
	m.updates <- domain.CheckoutState{Phase: domain.PhasePaymentMethod}
	return nil
}

// SubmitCard holds the raw card input until processing tokenizes it. Full
// structural validation belongs to the tokenizer; only presence is checked
// here so a typo surfaces where the card form is.
func (m *Machine) SubmitCard(card *domain.CardDetails) error {
	if card == nil || card.Number == "" {
		return domain.NewError(domain.KindValidation, "card details are required", nil)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requirePhaseLocked(domain.PhasePaymentMethod); err != nil {
		return err
	}
	m.attempt.card = card
	m.attempt.phase = domain.PhaseOrderSummary
	m.updates <- domain.CheckoutState{Phase: domain.PhaseOrderSummary}
	return nil
}

// ConfirmOrder runs the processing sequence: create order, create intent,
// tokenize, confirm. The first failing step settles the whole attempt in
// failed with the originating error kind preserved. Returns (nil, nil) when
// the user cancelled mid-flight.
func (m *Machine) ConfirmOrder(ctx context.Context) (*domain.Order, error) {
	// check and transition atomically so two rapid confirms cannot both
	// enter processing
	m.mu.Lock()
	if m.attempt == nil || m.attempt.phase != domain.PhaseOrderSummary {
		phase := domain.PhaseInitial
		if m.attempt != nil {
			phase = m.attempt.phase
		}
		m.mu.Unlock()
		return nil, domain.NewError(domain.KindValidation,
			fmt.Sprintf("cannot do that from %s", phase), domain.ErrIllegalTransition)
	}
	at := m.attempt
	if at.card == nil {
		m.mu.Unlock()
		return nil, domain.NewError(domain.KindValidation, "no payment method on this attempt", nil)
	}
	at.phase = domain.PhaseProcessing
	m.updates <- domain.CheckoutState{Phase: domain.PhaseProcessing}
	m.mu.Unlock()

	order, err := m.ensureOrder(ctx, at)
	if err != nil {
		return nil, m.failAttempt(err)
	}
	m.setPhase(domain.CheckoutState{Phase: domain.PhaseProcessing, Order: order})

	intent, err := m.createIntent(ctx, order)
	if err != nil {
		return nil, m.failAttempt(err)
	}
	at.intent = intent

	token, err := m.tokenize(ctx, at)
	if err != nil {
		return nil, m.failAttempt(err)
	}
	at.token = token

	began := time.Now()
	state, err := m.confirmer.Confirm(ctx, intent, token)
	m.metrics.ObserveStep("confirm", time.Since(began))

	switch {
	case state == domain.ConfirmationCancelledByUser:
		m.metrics.IncCancelled()
		m.setPhase(domain.CheckoutState{Phase: domain.PhaseCancelled})
		m.release()
		return nil, nil

	case err != nil:
		return nil, m.failAttempt(err)
	}

	final := m.finalOrder(ctx, order)
	m.metrics.IncOutcome("completed")
	m.setPhase(domain.CheckoutState{Phase: domain.PhaseCompleted, Order: final})
	m.release()
	return final, nil
}

// Cancel abandons the current attempt. During processing it is forwarded to
// the confirmer, which owns the best-effort intent cleanup; before processing
// there is nothing to clean up and the attempt is simply released.
func (m *Machine) Cancel() {
	m.mu.Lock()
	at := m.attempt
	m.mu.Unlock()
	if at == nil || at.phase.IsTerminal() {
		return
	}

	if at.phase == domain.PhaseProcessing {
		m.confirmer.Cancel()
		return
	}

	m.metrics.IncCancelled()
	m.setPhase(domain.CheckoutState{Phase: domain.PhaseCancelled})
	m.release()
}

// Retry restarts a failed attempt at card entry. Shipping data is assumed
// still valid; the pending order is reused when its id is still good. The
// failed attempt itself is never resumed: a fresh attempt id is issued.
func (m *Machine) Retry() error {
	m.mu.Lock()
	at := m.attempt
	if at == nil || at.phase != domain.PhaseFailed {
		m.mu.Unlock()
		return domain.NewError(domain.KindValidation, "nothing to retry", domain.ErrIllegalTransition)
	}
	m.attempt = &attempt{
		id:       uuid.NewString(),
		snapshot: at.snapshot,
		shipping: at.shipping,
		order:    at.order,
		phase:    domain.PhasePaymentMethod,
	}
	m.updates <- domain.CheckoutState{Phase: domain.PhasePaymentMethod}
	m.mu.Unlock()
	return nil
}

func (m *Machine) requirePhaseLocked(want domain.CheckoutPhase) error {
	if m.attempt == nil {
		return domain.NewError(domain.KindValidation, "no checkout attempt in progress", domain.ErrIllegalTransition)
	}
	if m.attempt.phase != want {
		return domain.NewError(domain.KindValidation,
			fmt.Sprintf("cannot do that from %s", m.attempt.phase), domain.ErrIllegalTransition)
	}
	return nil
}

// ensureOrder creates the backend order, or revalidates a pending one kept
// from a failed attempt. Order creation is re-attempted only when the
// previous order is unknown or no longer pending.
func (m *Machine) ensureOrder(ctx context.Context, at *attempt) (*domain.Order, error) {
	if at.order != nil {
		current, err := m.orders.Get(ctx, at.order.ID)
		if err == nil && current.Status == domain.OrderStatusPending {
			return current, nil
		}
		if err != nil {
			log.Printf("previous order %d could not be checked, creating a new one: %v", at.order.ID, err)
		}
		at.order = nil
	}

	began := time.Now()
	order, err := m.orders.Create(ctx, at.snapshot)
	m.metrics.ObserveStep("create_order", time.Since(began))
	if err != nil {
		return nil, err
	}
	at.order = order
	return order, nil
}

func (m *Machine) createIntent(ctx context.Context, order *domain.Order) (*domain.PaymentIntent, error) {
	began := time.Now()
	intent, err := m.intents.CreateIntent(ctx, order.ID, "")
	m.metrics.ObserveStep("create_intent", time.Since(began))
	return intent, err
}

func (m *Machine) tokenize(ctx context.Context, at *attempt) (*domain.PaymentMethodToken, error) {
	began := time.Now()
	token, err := m.tokenizer.Tokenize(ctx, at.card)
	m.metrics.ObserveStep("tokenize", time.Since(began))
	if err != nil {
		return nil, err
	}
	at.card = nil // raw card data is gone; only the token remains
	return token, nil
}

// finalOrder re-reads the authoritative order after backend acknowledgment.
// If the read fails the payment is still confirmed, so the local copy is
// advanced to paid rather than failing a succeeded checkout.
func (m *Machine) finalOrder(ctx context.Context, order *domain.Order) *domain.Order {
	current, err := m.orders.Get(ctx, order.ID)
	if err != nil {
		log.Printf("could not refresh order %d after confirmation: %v", order.ID, err)
		cp := *order
		cp.Status = domain.OrderStatusPaid
		return &cp
	}
	return current
}

// failAttempt settles the attempt in failed, preserving the originating
// error kind for the presentation layer, and returns the error unmodified.
func (m *Machine) failAttempt(err error) error {
	kind := domain.KindOf(err)
	m.metrics.IncOutcome(string(kind))
	m.setPhase(domain.CheckoutState{
		Phase:     domain.PhaseFailed,
		ErrorKind: kind,
		Message:   domain.MessageOf(err),
	})
	return err
}

// release destroys the attempt so a new Begin can run.
func (m *Machine) release() {
	m.mu.Lock()
	m.attempt = nil
	m.mu.Unlock()
}
