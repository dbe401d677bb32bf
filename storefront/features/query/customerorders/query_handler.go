package customerorders

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
	"github.com/AntonStoeckl/storefront-orders/storefront/shell"
)

// ErrCustomerRequired is returned when a guest asks for "my orders".
var ErrCustomerRequired = errors.New("listing own orders requires an authenticated customer")

// OrderStore defines the interface needed by the QueryHandler for order store operations.
type OrderStore interface {
	ListByCustomer(ctx context.Context, customerID string, page orderstore.Page) (orderstore.OrderPage, error)
}

// QueryHandler reads one page of a customer's orders.
type QueryHandler struct {
	orderStore OrderStore
}

// NewQueryHandler creates a new QueryHandler with the provided OrderStore dependency.
func NewQueryHandler(orderStore OrderStore) QueryHandler {
	return QueryHandler{orderStore: orderStore}
}

// Handle returns the requested page. Guest orders never show up here, they have no customer id.
func (h QueryHandler) Handle(ctx context.Context, query Query) (shell.OrderList, error) {
	if query.Customer.IsGuest() {
		return shell.OrderList{}, ErrCustomerRequired
	}

	page, err := h.orderStore.ListByCustomer(ctx, query.Customer.ID, orderstore.NewPage(query.Page, query.PageSize))
	if err != nil {
		return shell.OrderList{}, err
	}

	return shell.OrderListFrom(page)
}
