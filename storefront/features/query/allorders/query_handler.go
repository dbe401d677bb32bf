package allorders

import (
	"context"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
	"github.com/AntonStoeckl/storefront-orders/storefront/core"
	"github.com/AntonStoeckl/storefront-orders/storefront/shell"
)

// OrderStore defines the interface needed by the QueryHandler for order store operations.
type OrderStore interface {
	ListAll(ctx context.Context, page orderstore.Page) (orderstore.OrderPage, error)
}

// QueryHandler reads one page of all orders together with the counts per status.
type QueryHandler struct {
	orderStore OrderStore
}

// NewQueryHandler creates a new QueryHandler with the provided OrderStore dependency.
func NewQueryHandler(orderStore OrderStore) QueryHandler {
	return QueryHandler{orderStore: orderStore}
}

// Handle returns core.ErrAdminOnly for anyone but an admin.
func (h QueryHandler) Handle(ctx context.Context, query Query) (shell.OrderList, error) {
	if !query.Requester.IsAdmin() {
		return shell.OrderList{}, core.ErrAdminOnly
	}

	page, err := h.orderStore.ListAll(ctx, orderstore.NewPage(query.Page, query.PageSize))
	if err != nil {
		return shell.OrderList{}, err
	}

	return shell.OrderListFrom(page)
}
