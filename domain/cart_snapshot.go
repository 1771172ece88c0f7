package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type CartSnapshotItem struct {
	ProductID   int64           `json:"product_id"`
	VariantID   *int64          `json:"variant_id,omitempty"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// CartSnapshot represents the full cart state captured for one checkout attempt.
// It is immutable once captured; amounts are arbitrary-precision decimals so
// money never touches floating point.
type CartSnapshot struct {
	Items       []CartSnapshotItem `json:"items"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	Currency    string             `json:"currency"`
	CapturedAt  time.Time          `json:"captured_at"`
}

// Validate checks the snapshot before any network call is made.
func (s *CartSnapshot) Validate() error {
	if s == nil || len(s.Items) == 0 {
		return ErrEmptyCart
	}

	sum := decimal.Zero
	for i, item := range s.Items {
		if item.Quantity <= 0 {
			return NewError(KindValidation,
				fmt.Sprintf("item %d: quantity must be positive, got %d", i, item.Quantity), nil)
		}
		if item.UnitPrice.IsNegative() {
			return NewError(KindValidation,
				fmt.Sprintf("item %d: negative unit price", i), nil)
		}
		want := item.UnitPrice.Mul(decimal.NewFromInt32(item.Quantity))
		if !item.Subtotal.Equal(want) {
			return NewError(KindValidation,
				fmt.Sprintf("item %d: subtotal %s does not match unit price * quantity (%s)", i, item.Subtotal, want), nil)
		}
		sum = sum.Add(item.Subtotal)
	}

	if !s.TotalAmount.Equal(sum) {
		return NewError(KindValidation,
			fmt.Sprintf("cart total %s does not match item subtotals (%s)", s.TotalAmount, sum), nil)
	}
	return nil
}
