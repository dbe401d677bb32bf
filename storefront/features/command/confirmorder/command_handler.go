package confirmorder

import (
	"context"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
	"github.com/AntonStoeckl/storefront-orders/storefront/core"
	"github.com/AntonStoeckl/storefront-orders/storefront/shell"
)

// OrderStore defines the interface needed by the CommandHandler for order store operations.
type OrderStore interface {
	GetByID(ctx context.Context, orderID string) (orderstore.StorableOrder, error)
	UpdateStatus(ctx context.Context, update orderstore.StatusUpdate, notifications ...orderstore.StorableNotification) error
}

// CommandHandler orchestrates Read -> Decide -> Compare-and-swap for the quick confirmation.
type CommandHandler struct {
	orderStore   OrderStore
	recipients   shell.Recipients
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
func NewCommandHandler(orderStore OrderStore, recipients shell.Recipients, opts ...Option) CommandHandler {
	handler := CommandHandler{
		orderStore: orderStore,
		recipients: recipients,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle confirms the order. An order that is already confirmed is an idempotent success.
func (h CommandHandler) Handle(ctx context.Context, command Command) (core.Order, shell.HandlerResult, error) {
	var result core.DecisionResult

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		decision, execErr := h.executeCommand(retryCtx, command)
		result = decision

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return core.Order{}, shell.NewErrorResult(retryMetrics), err
	}

	if result.IsIdempotent() {
		return result.Order, shell.NewIdempotentResult(retryMetrics, result.Reason), nil
	}

	return result.Order, shell.NewSuccessResult(retryMetrics), nil
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command) (core.DecisionResult, error) {
	// Admin check before reading, so non-admins learn nothing about the order
	if !command.Actor.IsAdmin() {
		return core.DecisionResult{}, core.ErrAdminOnly
	}

	stored, err := h.orderStore.GetByID(ctx, command.OrderID.String())
	if err != nil {
		return core.DecisionResult{}, err
	}

	order, err := shell.OrderFrom(stored)
	if err != nil {
		return core.DecisionResult{}, err
	}

	result := core.DecideQuickConfirm(order, command.Actor, command.OccurredAt)

	if decisionErr := result.HasError(); decisionErr != nil {
		return core.DecisionResult{}, decisionErr
	}

	if !result.HasChangeToApply() {
		return result, nil
	}

	notifications, err := shell.StorableNotificationsFrom(result.Notifications, result.Order, h.recipients)
	if err != nil {
		return core.DecisionResult{}, err
	}

	if err = h.orderStore.UpdateStatus(ctx, shell.StatusUpdateFrom(*result.Change), notifications...); err != nil {
		return core.DecisionResult{}, err
	}

	return result, nil
}
