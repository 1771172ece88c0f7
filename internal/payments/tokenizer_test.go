package payments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/domain"
)

func validCard() *domain.CardDetails {
	return &domain.CardDetails{
		Number:     "4242424242424242",
		Expiry:     "12/30",
		CVV:        "123",
		HolderName: "E B V",
	}
}

func TestTokenize_Success_WipesCard(t *testing.T) {
	provider := &mockProvider{TokenID: "pm_abc"}
	tok, err := NewTokenizer(provider)
	require.NoError(t, err)

	card := validCard()
	token, err := tok.Tokenize(context.Background(), card)
	require.NoError(t, err)
	assert.Equal(t, "pm_abc", token.ID)
	assert.False(t, token.Consumed())

	// raw fields are gone, the token is the only artifact retained
	assert.Empty(t, card.Number)
	assert.Empty(t, card.CVV)
	assert.Empty(t, card.Expiry)
}

func TestTokenize_BadExpiry_NeverCallsProvider(t *testing.T) {
	provider := &mockProvider{TokenID: "pm_abc"}
	tok, err := NewTokenizer(provider)
	require.NoError(t, err)

	for _, expiry := range []string{"13/30", "00/30", "1/30", "12-30", "12/2030", "aa/bb", "01/20"} {
		card := validCard()
		card.Expiry = expiry

		_, errTok := tok.Tokenize(context.Background(), card)
		require.Error(t, errTok, "expiry %q", expiry)
		assert.Equal(t, domain.KindValidation, domain.KindOf(errTok), "expiry %q", expiry)
		assert.Contains(t, errTok.Error(), "invalid expiry date", "expiry %q", expiry)
	}
	assert.Equal(t, int64(0), provider.TokenizeCalls.Load())
}

func TestTokenize_BadNumber(t *testing.T) {
	provider := &mockProvider{TokenID: "pm_abc"}
	tok, err := NewTokenizer(provider)
	require.NoError(t, err)

	card := validCard()
	card.Number = "not-a-number"

	_, errTok := tok.Tokenize(context.Background(), card)
	require.Error(t, errTok)
	assert.Equal(t, domain.KindValidation, domain.KindOf(errTok))
	assert.Contains(t, errTok.Error(), "invalid card number")
	assert.Equal(t, int64(0), provider.TokenizeCalls.Load())
}

func TestTokenize_ValidationErrorNeverEchoesCardData(t *testing.T) {
	provider := &mockProvider{TokenID: "pm_abc"}
	tok, err := NewTokenizer(provider)
	require.NoError(t, err)

	card := validCard()
	card.CVV = "4242424242424242" // way too long

	_, errTok := tok.Tokenize(context.Background(), card)
	require.Error(t, errTok)
	assert.NotContains(t, errTok.Error(), "4242")
}

func TestTokenize_ProviderError(t *testing.T) {
	provider := &mockProvider{TokenizeErr: domain.NewError(domain.KindProvider, "Your card was declined.", nil)}
	tok, err := NewTokenizer(provider)
	require.NoError(t, err)

	card := validCard()
	_, errTok := tok.Tokenize(context.Background(), card)
	require.Error(t, errTok)
	assert.Equal(t, domain.KindProvider, domain.KindOf(errTok))
	// card is not wiped on failure so the user can correct and retry
	assert.NotEmpty(t, card.Number)
}
