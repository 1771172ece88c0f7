package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderItem struct {
	ProductID int64           `json:"productId"`
	VariantID *int64          `json:"variantId,omitempty"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// Order mirrors the backend representation. Status is only advanced on
// backend-confirmed transitions; the client never moves an order past
// processing on its own.
type Order struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"userId"`
	CreatedAt       time.Time       `json:"createdAt"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          OrderStatus     `json:"status"`
	Items           []OrderItem     `json:"items"`
	PaymentMethod   string          `json:"paymentMethod,omitempty"`
	PaymentIntentID string          `json:"paymentIntentId,omitempty"`
}
