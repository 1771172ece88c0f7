package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSnapshot(t *testing.T) *CartSnapshot {
	t.Helper()
	unit := decimal.RequireFromString("19.99")
	return &CartSnapshot{
		Items: []CartSnapshotItem{
			{
				ProductID: 7,
				Quantity:  2,
				UnitPrice: unit,
				Subtotal:  unit.Mul(decimal.NewFromInt(2)),
			},
		},
		TotalAmount: decimal.RequireFromString("39.98"),
		Currency:    "EUR",
		CapturedAt:  time.Now(),
	}
}

func TestCartSnapshot_Valid(t *testing.T) {
	require.NoError(t, validSnapshot(t).Validate())
}

func TestCartSnapshot_Empty(t *testing.T) {
	s := &CartSnapshot{}
	assert.ErrorIs(t, s.Validate(), ErrEmptyCart)

	var nilSnapshot *CartSnapshot
	assert.ErrorIs(t, nilSnapshot.Validate(), ErrEmptyCart)
}

func TestCartSnapshot_ZeroQuantity(t *testing.T) {
	s := validSnapshot(t)
	s.Items[0].Quantity = 0

	err := s.Validate()
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestCartSnapshot_SubtotalMismatch(t *testing.T) {
	s := validSnapshot(t)
	s.Items[0].Subtotal = decimal.RequireFromString("40.00")

	err := s.Validate()
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestCartSnapshot_TotalMismatch(t *testing.T) {
	s := validSnapshot(t)
	s.TotalAmount = decimal.RequireFromString("39.99")

	err := s.Validate()
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}
