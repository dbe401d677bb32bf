package shell

import (
	"context"
)

// Command represents the contract for all command types of the storefront.
// The CommandType method enables polymorphic handling and observability instrumentation.
type Command interface {
	CommandType() string
}

// Query represents the contract for all query types of the storefront.
type Query interface {
	QueryType() string
}

// CommandHandler processes a command and returns the resulting state together with
// the business outcome and retry metadata.
type CommandHandler[C Command, R any] interface {
	Handle(ctx context.Context, command C) (R, HandlerResult, error)
}

// QueryHandler processes a query and returns its result.
type QueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
