package orderbyid

import (
	"context"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
	"github.com/AntonStoeckl/storefront-orders/storefront/core"
	"github.com/AntonStoeckl/storefront-orders/storefront/shell"
)

// OrderStore defines the interface needed by the QueryHandler for order store operations.
type OrderStore interface {
	GetByID(ctx context.Context, orderID string) (orderstore.StorableOrder, error)
}

// QueryHandler loads an order and applies the viewing rule.
type QueryHandler struct {
	orderStore OrderStore
}

// NewQueryHandler creates a new QueryHandler with the provided OrderStore dependency.
func NewQueryHandler(orderStore OrderStore) QueryHandler {
	return QueryHandler{orderStore: orderStore}
}

// Handle returns the order, orderstore.ErrOrderNotFound, or core.ErrNotOrderOwner.
func (h QueryHandler) Handle(ctx context.Context, query Query) (core.Order, error) {
	stored, err := h.orderStore.GetByID(ctx, query.OrderID.String())
	if err != nil {
		return core.Order{}, err
	}

	order, err := shell.OrderFrom(stored)
	if err != nil {
		return core.Order{}, err
	}

	if err = order.CanBeViewedBy(query.Requester); err != nil {
		return core.Order{}, err
	}

	return order, nil
}
