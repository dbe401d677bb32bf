package core

// DecideQuickConfirm performs exactly en_attente -> confirmee for an admin.
//
// Business Rules:
//
//	ERROR: ErrAdminOnly if the actor is not an admin
//	IDEMPOTENCY: an order that is already confirmed changes nothing (already_confirmed)
//	ERROR: ErrQuickConfirmNotApplicable for any other status than en_attente
//	THEN: the same change and notifications as a status change to confirmee
func DecideQuickConfirm(order Order, actor Actor, occurredAt OccurredAt) DecisionResult {
	if !actor.IsAdmin() {
		return ErrorDecision(ErrAdminOnly)
	}

	switch order.Status {
	case StatusConfirmed:
		return IdempotentDecision(order, ReasonAlreadyConfirmed)
	case StatusPending:
		// continue below
	default:
		return ErrorDecision(ErrQuickConfirmNotApplicable)
	}

	change := StatusChange{
		OrderID:        order.ID,
		From:           StatusPending,
		To:             StatusConfirmed,
		TrackingNumber: order.TrackingNumber,
		Notes:          order.Notes,
		OccurredAt:     occurredAt,
	}

	return successfulChange(order, change, actor)
}
