package orders

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/domain"
	"github.com/EmerBV/APPECOMM-SwiftUI-sub001/internal/api"
)

// Creator places orders for the authenticated user and reads them back.
// Validation failures never reach the network; transport and server failures
// are surfaced unmodified, retries belong to the caller.
type Creator struct {
	api    *api.Client
	userID int64
}

func NewCreator(client *api.Client, userID int64) (*Creator, error) {
	if client == nil {
		return nil, fmt.Errorf("orders: api client is required")
	}
	return &Creator{api: client, userID: userID}, nil
}

type placeOrderItem struct {
	ProductID int64  `json:"productId"`
	VariantID *int64 `json:"variantId,omitempty"`
	Quantity  int32  `json:"quantity"`
}

type placeOrderRequest struct {
	Items []placeOrderItem `json:"items"`
}

// Create submits the cart snapshot and returns the pending order with its
// server-assigned id and canonical total.
func (c *Creator) Create(ctx context.Context, snapshot *domain.CartSnapshot) (*domain.Order, error) {
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}

	req := placeOrderRequest{Items: make([]placeOrderItem, 0, len(snapshot.Items))}
	for _, item := range snapshot.Items {
		req.Items = append(req.Items, placeOrderItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}

	query := url.Values{"userId": []string{strconv.FormatInt(c.userID, 10)}}.Encode()

	var order domain.Order
	if err := c.api.PostData(ctx, "/orders/user/place-order", query, req, &order); err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, domain.NewError(domain.KindServer, "order response missing id", nil)
	}
	return &order, nil
}

// Get fetches the authoritative order state. Used after checkout completes
// and when a prior attempt left an order whose status needs re-checking.
func (c *Creator) Get(ctx context.Context, orderID int64) (*domain.Order, error) {
	var order domain.Order
	if err := c.api.GetData(ctx, fmt.Sprintf("/orders/%d", orderID), "", &order); err != nil {
		return nil, err
	}
	return &order, nil
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

// UpdateStatus asks the backend to move an order to next. Illegal transitions
// are refused client-side before any network call; the backend stays the
// authority on the actual change.
func (c *Creator) UpdateStatus(ctx context.Context, order *domain.Order, next domain.OrderStatus) (*domain.Order, error) {
	if !next.IsValid() {
		return nil, domain.NewError(domain.KindValidation, fmt.Sprintf("unknown order status %q", next), nil)
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, domain.NewError(domain.KindValidation,
			fmt.Sprintf("order %d cannot move from %s to %s", order.ID, order.Status, next), domain.ErrIllegalTransition)
	}

	var updated domain.Order
	err := c.api.PutData(ctx, fmt.Sprintf("/orders/%d/status", order.ID), "", updateStatusRequest{Status: next}, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
