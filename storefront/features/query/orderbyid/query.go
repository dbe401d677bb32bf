package orderbyid

import (
	"github.com/google/uuid"

	"github.com/AntonStoeckl/storefront-orders/storefront/core"
)

const (
	queryType = "OrderByID"
)

// Query represents the intent to read one order.
type Query struct {
	OrderID   uuid.UUID
	Requester core.Actor
}

// BuildQuery creates a new Query with the provided parameters.
func BuildQuery(orderID uuid.UUID, requester core.Actor) Query {
	return Query{
		OrderID:   orderID,
		Requester: requester,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
