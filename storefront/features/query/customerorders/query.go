package customerorders

import (
	"github.com/AntonStoeckl/storefront-orders/storefront/core"
)

const (
	queryType = "CustomerOrders"
)

// Query represents the intent to list the requester's own orders.
type Query struct {
	Customer core.Actor
	Page     int
	PageSize int
}

// BuildQuery creates a new Query; page and size are normalized by the store.
func BuildQuery(customer core.Actor, page, pageSize int) Query {
	return Query{
		Customer: customer,
		Page:     page,
		PageSize: pageSize,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
