package removecancelledorder

import (
	"context"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
	"github.com/AntonStoeckl/storefront-orders/storefront/core"
	"github.com/AntonStoeckl/storefront-orders/storefront/shell"
)

// OrderStore defines the interface needed by the CommandHandler for order store operations.
type OrderStore interface {
	GetByID(ctx context.Context, orderID string) (orderstore.StorableOrder, error)
	Delete(ctx context.Context, orderID string, expectedStatus string) error
}

// CommandHandler orchestrates Read -> Decide -> Conditional delete.
type CommandHandler struct {
	orderStore   OrderStore
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithConflictRetry repeats the command on state conflicts with the given retry configuration.
func WithConflictRetry(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(orderStore OrderStore, opts ...Option) CommandHandler {
	handler := CommandHandler{orderStore: orderStore}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle deletes the order and returns it as it was before the deletion.
// The delete only applies while the order is still cancelled; a concurrent re-open yields a state conflict.
func (h CommandHandler) Handle(ctx context.Context, command Command) (core.Order, shell.HandlerResult, error) {
	var removed core.Order

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		order, execErr := h.executeCommand(retryCtx, command)
		removed = order

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return core.Order{}, shell.NewErrorResult(retryMetrics), err
	}

	return removed, shell.NewSuccessResult(retryMetrics), nil
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command) (core.Order, error) {
	if !command.Actor.IsAdmin() {
		return core.Order{}, core.ErrAdminOnly
	}

	stored, err := h.orderStore.GetByID(ctx, command.OrderID.String())
	if err != nil {
		return core.Order{}, err
	}

	order, err := shell.OrderFrom(stored)
	if err != nil {
		return core.Order{}, err
	}

	result := core.DecideRemoval(order, command.Actor)

	if decisionErr := result.HasError(); decisionErr != nil {
		return core.Order{}, decisionErr
	}

	if err = h.orderStore.Delete(ctx, order.ID.String(), string(core.StatusCancelled)); err != nil {
		return core.Order{}, err
	}

	return order, nil
}
