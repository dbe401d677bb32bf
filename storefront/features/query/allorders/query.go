package allorders

import (
	"github.com/AntonStoeckl/storefront-orders/storefront/core"
)

const (
	queryType = "AllOrders"
)

// Query represents the intent of an admin to list all orders.
type Query struct {
	Requester core.Actor
	Page      int
	PageSize  int
}

// BuildQuery creates a new Query; page and size are normalized by the store.
func BuildQuery(requester core.Actor, page, pageSize int) Query {
	return Query{
		Requester: requester,
		Page:      page,
		PageSize:  pageSize,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
