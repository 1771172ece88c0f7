package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentMethodToken_SingleUse(t *testing.T) {
	token := NewPaymentMethodToken("pm_abc")
	require.NoError(t, token.Consume())
	assert.True(t, token.Consumed())
	assert.ErrorIs(t, token.Consume(), ErrTokenConsumed)
}

func TestPaymentIntent_SecretNeverFormatted(t *testing.T) {
	intent := PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret_sensitive", OrderID: 101}

	for _, rendered := range []string{
		fmt.Sprintf("%v", intent),
		fmt.Sprintf("%s", intent),
		fmt.Sprintf("%#v", intent),
	} {
		assert.NotContains(t, rendered, "sensitive")
	}
}

func TestCardDetails_NeverFormatted(t *testing.T) {
	card := CardDetails{Number: "4242424242424242", Expiry: "12/30", CVV: "123", HolderName: "E B V"}
	assert.NotContains(t, fmt.Sprintf("%v", card), "4242")
	assert.NotContains(t, fmt.Sprintf("%#v", card), "4242")

	card.Zero()
	assert.Empty(t, card.Number)
	assert.Empty(t, card.Expiry)
	assert.Empty(t, card.CVV)
	assert.Empty(t, card.HolderName)
}

func TestErrorKindOf(t *testing.T) {
	err := NewError(KindBackendAcknowledgment, "order not confirmed", nil)
	assert.Equal(t, KindBackendAcknowledgment, KindOf(err))
	assert.Equal(t, "order not confirmed", MessageOf(err))

	wrapped := fmt.Errorf("step failed: %w", err)
	assert.Equal(t, KindBackendAcknowledgment, KindOf(wrapped))

	assert.Equal(t, KindValidation, KindOf(ErrEmptyCart))
	assert.Equal(t, KindServer, KindOf(fmt.Errorf("who knows")))
}
