package domain

import "errors"

// ErrorKind classifies checkout failures so the presentation layer can tell
// retryable failures from those that need different handling.
type ErrorKind string

const (
	// KindValidation covers malformed client-side input, caught before any network call.
	KindValidation ErrorKind = "validation"
	// KindNetwork covers transport-level failures (timeout, no connectivity).
	KindNetwork ErrorKind = "network"
	// KindServer covers non-2xx backend responses; the server message is kept verbatim.
	KindServer ErrorKind = "server"
	// KindProvider covers payment-provider failures (declines, tokenization errors).
	KindProvider ErrorKind = "provider"
	// KindBackendAcknowledgment means the provider reported success but the
	// backend confirmation did not. Funds may have moved without an
	// authoritative order update, so it is never merged with generic failure.
	KindBackendAcknowledgment ErrorKind = "backend_acknowledgment"
	// KindTimeout covers an expired challenge wait.
	KindTimeout ErrorKind = "timeout"
	// KindCancelled marks user-initiated cancellation. Not a real failure.
	KindCancelled ErrorKind = "cancelled"
)

// Retryable reports whether the same step may be re-attempted by the user.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindValidation, KindNetwork, KindProvider, KindTimeout:
		return true
	default:
		return false
	}
}

var (
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrIllegalTransition  = errors.New("illegal status transition")
	ErrCheckoutInProgress = errors.New("a checkout attempt is already in progress")
	ErrTokenConsumed      = errors.New("payment method token already consumed")
)

// Error carries a kind alongside the original cause. Lower layers never
// swallow errors; they wrap them so the kind survives to the state machine.
type Error struct {
	Kind    ErrorKind
	Message string
	Code    string // server/provider error code when present
	Err     error
}

func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	if e.Message != "" {
		return string(e.Kind) + ": " + e.Message
	}
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the ErrorKind from err, defaulting to KindServer for
// errors that were not classified on the way up.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	if errors.Is(err, ErrEmptyCart) || errors.Is(err, ErrTokenConsumed) || errors.Is(err, ErrIllegalTransition) {
		return KindValidation
	}
	return KindServer
}

// MessageOf returns the human-readable message carried by err.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return err.Error()
}
