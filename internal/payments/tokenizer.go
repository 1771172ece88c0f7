package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/domain"
)

// Tokenizer converts raw card input into a single-use provider token.
// Structural validation happens before any network call; no Luhn check, the
// provider owns that. On success the raw fields are wiped, the token is the
// only artifact retained.
type Tokenizer struct {
	provider Provider
	validate *validatorv10.Validate
}

func NewTokenizer(provider Provider) (*Tokenizer, error) {
	if provider == nil {
		return nil, fmt.Errorf("payments: provider is required")
	}

	v := validatorv10.New()
	if err := v.RegisterValidation("cardexpiry", validExpiry); err != nil {
		return nil, fmt.Errorf("payments: register expiry validation: %w", err)
	}
	return &Tokenizer{provider: provider, validate: v}, nil
}

func (t *Tokenizer) Tokenize(ctx context.Context, card *domain.CardDetails) (*domain.PaymentMethodToken, error) {
	if card == nil {
		return nil, domain.NewError(domain.KindValidation, "card details are required", nil)
	}
	if err := t.validate.StructCtx(ctx, card); err != nil {
		return nil, validationError(err)
	}

	id, err := t.provider.CreatePaymentMethod(ctx, card)
	if err != nil {
		return nil, err
	}

	card.Zero()
	return domain.NewPaymentMethodToken(id), nil
}

// validationError maps validator output to the error taxonomy without ever
// echoing a card field value back.
func validationError(err error) error {
	var verrs validatorv10.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewError(domain.KindValidation, "invalid card details", err)
	}

	fe := verrs[0]
	message := "invalid card details"
	switch fe.Field() {
	case "Expiry":
		message = "invalid expiry date"
	case "Number":
		message = "invalid card number"
	case "CVV":
		message = "invalid security code"
	case "HolderName":
		message = "card holder name is required"
	}
	e := domain.NewError(domain.KindValidation, message, err)
	e.Code = fe.Tag()
	return e
}

// validExpiry accepts MM/YY, numeric, month 01-12, not in the past.
func validExpiry(fl validatorv10.FieldLevel) bool {
	month, year, err := splitExpiry(fl.Field().String())
	if err != nil {
		return false
	}
	m, _ := strconv.Atoi(month)
	y, _ := strconv.Atoi(year)

	now := time.Now()
	if y < now.Year() {
		return false
	}
	if y == now.Year() && time.Month(m) < now.Month() {
		return false
	}
	return true
}

// splitExpiry parses MM/YY into a month and a four-digit year.
func splitExpiry(expiry string) (month, year string, err error) {
	parts := strings.Split(expiry, "/")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return "", "", fmt.Errorf("expiry must be MM/YY")
	}
	m, err := strconv.Atoi(parts[0])
	if err != nil || m < 1 || m > 12 {
		return "", "", fmt.Errorf("expiry month out of range")
	}
	y, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", "", fmt.Errorf("expiry year is not numeric")
	}
	return parts[0], strconv.Itoa(2000 + y), nil
}
