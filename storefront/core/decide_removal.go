package core

// DecideRemoval allows an admin to delete a cancelled order.
//
// Business Rules:
//
//	ERROR: ErrAdminOnly if the actor is not an admin
//	ERROR: ErrOrderNotCancelled if the order is in any other status than annulee
//	THEN: success without a status change; the shell deletes the order guarded by its status
func DecideRemoval(order Order, actor Actor) DecisionResult {
	if !actor.IsAdmin() {
		return ErrorDecision(ErrAdminOnly)
	}

	if order.Status != StatusCancelled {
		return ErrorDecision(ErrOrderNotCancelled)
	}

	return SuccessDecision(order, nil, nil)
}
