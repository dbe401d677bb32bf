package core

import (
	"errors"
	"fmt"
)

// StatusChangeRequest is the intent to move an order to a new status.
// TrackingNumber and Notes are only honored for admins; nil keeps the current value, an empty string clears it.
type StatusChangeRequest struct {
	NewStatus      Status
	Actor          Actor
	TrackingNumber *string
	Notes          *string
	OccurredAt     OccurredAt
}

// DecideStatusChange applies the transition policy to the current order state.
//
// Business Rules:
//
//	GIVEN: an order and a requested status from an actor
//	WHEN: the actor is a customer
//	  ERROR: ErrNotOrderOwner if the order belongs to someone else or to no one
//	  IDEMPOTENCY: cancelling an order that is already delivered or cancelled changes nothing (already_terminal)
//	  ERROR: ErrForbiddenTransition for anything but en_attente -> annulee
//	WHEN: the actor is an admin
//	  IDEMPOTENCY: same status without tracking or notes change changes nothing (unchanged)
//	  THEN: any status, in any direction, with optional tracking number and notes
//	THEN: the change and the notifications the new status requires
//
// DeliveredAt is set when entering livree and cleared when leaving it.
func DecideStatusChange(policy TransitionPolicy, order Order, request StatusChangeRequest) DecisionResult {
	if !request.Actor.IsAdmin() {
		return decideCustomerStatusChange(policy, order, request)
	}

	return decideAdminStatusChange(policy, order, request)
}

func decideCustomerStatusChange(policy TransitionPolicy, order Order, request StatusChangeRequest) DecisionResult {
	if !order.IsOwnedBy(request.Actor) {
		return ErrorDecision(ErrNotOrderOwner)
	}

	if request.NewStatus == StatusCancelled && order.Status.IsTerminal() {
		return IdempotentDecision(order, ReasonAlreadyTerminal)
	}

	if !policy.Allows(request.Actor.Role, order.Status, request.NewStatus) {
		return ErrorDecision(forbidden(request.Actor.Role, order.Status, request.NewStatus))
	}

	change := StatusChange{
		OrderID:        order.ID,
		From:           order.Status,
		To:             request.NewStatus,
		TrackingNumber: order.TrackingNumber,
		Notes:          order.Notes,
		DeliveredAt:    deliveredAt(order, request.NewStatus, request.OccurredAt),
		OccurredAt:     request.OccurredAt,
	}

	return successfulChange(order, change, request.Actor)
}

func decideAdminStatusChange(policy TransitionPolicy, order Order, request StatusChangeRequest) DecisionResult {
	if !policy.Allows(request.Actor.Role, order.Status, request.NewStatus) {
		return ErrorDecision(forbidden(request.Actor.Role, order.Status, request.NewStatus))
	}

	tracking := replaceOptional(order.TrackingNumber, request.TrackingNumber)
	notes := replaceOptional(order.Notes, request.Notes)

	if request.NewStatus == order.Status && equalOptional(tracking, order.TrackingNumber) && equalOptional(notes, order.Notes) {
		return IdempotentDecision(order, ReasonUnchanged)
	}

	change := StatusChange{
		OrderID:        order.ID,
		From:           order.Status,
		To:             request.NewStatus,
		TrackingNumber: tracking,
		Notes:          notes,
		DeliveredAt:    deliveredAt(order, request.NewStatus, request.OccurredAt),
		OccurredAt:     request.OccurredAt,
	}

	return successfulChange(order, change, request.Actor)
}

func successfulChange(order Order, change StatusChange, actor Actor) DecisionResult {
	updated := change.ApplyTo(order)

	var notifications []Notification
	if change.From != change.To {
		notifications = NotificationsForStatus(updated, actor, change.OccurredAt)
	}

	return SuccessDecision(updated, &change, notifications)
}

func forbidden(role Role, from, to Status) error {
	if role == "" {
		role = "guest"
	}

	return errors.Join(ErrForbiddenTransition, fmt.Errorf("%s may not move an order from %s to %s", role, from, to))
}

func deliveredAt(order Order, to Status, occurredAt OccurredAt) *OccurredAt {
	if to != StatusDelivered {
		return nil
	}

	if order.Status == StatusDelivered && order.DeliveredAt != nil {
		return order.DeliveredAt
	}

	at := occurredAt

	return &at
}

func replaceOptional(current, requested *string) *string {
	if requested == nil {
		return current
	}

	if *requested == "" {
		return nil
	}

	v := *requested

	return &v
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return *a == *b
}
