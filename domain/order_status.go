package domain

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// forward progression of an order; cancelled/refunded sit outside of it
var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusProcessing: 1,
	OrderStatusPaid:       2,
	OrderStatusShipped:    3,
	OrderStatusDelivered:  4,
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled || s == OrderStatusRefunded
}

func (s OrderStatus) IsValid() bool {
	if _, ok := orderStatusRank[s]; ok {
		return true
	}
	return s == OrderStatusCancelled || s == OrderStatusRefunded
}

// CanTransitionTo reports whether an order may move from s to next.
// Statuses only move forward one step at a time; the only skips allowed
// are to cancelled or refunded from any non-terminal status.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == OrderStatusCancelled || next == OrderStatusRefunded {
		return true
	}
	from, okFrom := orderStatusRank[s]
	to, okTo := orderStatusRank[next]
	if !okFrom || !okTo {
		return false
	}
	return to == from+1
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}
