package changeorderstatus

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

// CommandHandler orchestrates Read -> Decide -> Compare-and-swap with optional retry on conflicts.
// External wrappers handle all observability concerns.
type CommandHandler struct {
	orderStore   OrderStore
	policy       core.TransitionPolicy
	recipients   shell.Recipients
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithConflictRetry repeats the command on state conflicts with the given retry configuration,
// e.g. WithConflictRetry(shell.WithMaxAttempts(3)). Without it a conflict is returned at once.
func WithConflictRetry(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// WithTransitionPolicy replaces core.DefaultTransitionPolicy.
func WithTransitionPolicy(policy core.TransitionPolicy) Option {
	return func(h *CommandHandler) {
		h.policy = policy
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(orderStore OrderStore, recipients shell.Recipients, opts ...Option) CommandHandler {
	handler := CommandHandler{
		orderStore: orderStore,
		policy:     core.DefaultTransitionPolicy(),
		recipients: recipients,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the status change and returns the order as it is after the command.
// Idempotent outcomes return the unchanged order with HandlerResult.Idempotent set.
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

// executeCommand contains the processing logic that can be retried.
func (h CommandHandler) executeCommand(ctx context.Context, command Command) (core.DecisionResult, error) {
	newStatus, ok := core.ParseStatus(command.NewStatus)
	if !ok {
		verr := core.NewValidationError()
		verr.Add("statut", "unknown status "+command.NewStatus)

		return core.DecisionResult{}, verr
	}

	// Read phase
	stored, err := h.orderStore.GetByID(ctx, command.OrderID.String())
	if err != nil {
		return core.DecisionResult{}, err
	}

	order, err := shell.OrderFrom(stored)
	if err != nil {
		return core.DecisionResult{}, err
	}

	// Business logic phase - delegate to pure core function
	result := core.DecideStatusChange(h.policy, order, core.StatusChangeRequest{
		NewStatus:      newStatus,
		Actor:          command.Actor,
		TrackingNumber: command.TrackingNumber,
		Notes:          command.Notes,
		OccurredAt:     command.OccurredAt,
	})

	if decisionErr := result.HasError(); decisionErr != nil {
		return core.DecisionResult{}, decisionErr
	}

	if !result.HasChangeToApply() {
		return result, nil
	}

	// Write phase - compare-and-swap on the status that was read
	notifications, err := shell.StorableNotificationsFrom(result.Notifications, result.Order, h.recipients)
	if err != nil {
		return core.DecisionResult{}, err
	}

	if err = h.orderStore.UpdateStatus(ctx, shell.StatusUpdateFrom(*result.Change), notifications...); err != nil {
		return core.DecisionResult{}, err
	}

	return result, nil
}
