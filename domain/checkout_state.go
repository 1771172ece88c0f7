package domain

// CheckoutPhase is the observable progression of one checkout attempt as the
// presentation layer sees it.
type CheckoutPhase string

const (
	PhaseInitial         CheckoutPhase = "INITIAL"
	PhaseShippingDetails CheckoutPhase = "SHIPPING_DETAILS"
	PhasePaymentMethod   CheckoutPhase = "PAYMENT_METHOD"
	PhaseOrderSummary    CheckoutPhase = "ORDER_SUMMARY"
	PhaseProcessing      CheckoutPhase = "PROCESSING"
	PhaseCompleted       CheckoutPhase = "COMPLETED"
	PhaseFailed          CheckoutPhase = "FAILED"
	PhaseCancelled       CheckoutPhase = "CANCELLED"
)

func (p CheckoutPhase) IsTerminal() bool {
	return p == PhaseCompleted || p == PhaseFailed || p == PhaseCancelled
}

// String representation (for logging)
func (p CheckoutPhase) String() string {
	return string(p)
}

// CheckoutState is a phase plus its payload. Completed carries the final
// order; Failed carries the originating error kind and message.
type CheckoutState struct {
	Phase     CheckoutPhase
	Order     *Order    // set on PhaseCompleted (and PhaseProcessing once created)
	ErrorKind ErrorKind // set on PhaseFailed
	Message   string    // set on PhaseFailed
}

// ConfirmationState is the inner progression of one payment confirmation.
type ConfirmationState string

const (
	ConfirmationIdle              ConfirmationState = "IDLE"
	ConfirmationPreparing         ConfirmationState = "PREPARING"
	ConfirmationAwaitingChallenge ConfirmationState = "AWAITING_CHALLENGE"
	ConfirmationConfirming        ConfirmationState = "CONFIRMING"
	ConfirmationSucceeded         ConfirmationState = "SUCCEEDED"
	ConfirmationFailed            ConfirmationState = "FAILED"
	ConfirmationCancelledByUser   ConfirmationState = "CANCELLED_BY_USER"
)

func (s ConfirmationState) IsTerminal() bool {
	return s == ConfirmationSucceeded || s == ConfirmationFailed || s == ConfirmationCancelledByUser
}

// String representation (for logging)
func (s ConfirmationState) String() string {
	return string(s)
}

// ShippingDetails is the address block collected before payment entry.
type ShippingDetails struct {
	FullName   string `validate:"required,min=2"`
	Address    string `validate:"required"`
	City       string `validate:"required"`
	PostalCode string `validate:"required"`
	Country    string `validate:"required,iso3166_1_alpha2"`
	Phone      string `validate:"omitempty,e164"`
}
