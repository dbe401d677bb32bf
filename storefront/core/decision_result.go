package core

// DecisionResult represents the outcome of a business decision in a Decide function.
//
// DecisionResult should only be constructed using the provided factory methods:
// IdempotentDecision, SuccessDecision, or ErrorDecision.
type DecisionResult struct {
	Outcome       string
	Order         Order         // the order as it looks after the decision; zero for errors
	Change        *StatusChange // nil unless a status change must be persisted
	Notifications []Notification
	Reason        string // why nothing changed, for idempotent decisions
	Err           error
}

const (
	OutcomeIdempotent = "idempotent"
	OutcomeSuccess    = "success"
	OutcomeError      = "error"
)

const (
	// ReasonAlreadyTerminal is reported when a customer cancels an order that is already delivered or cancelled.
	ReasonAlreadyTerminal = "already_terminal"

	// ReasonUnchanged is reported when an admin sets the current status without changing tracking or notes.
	ReasonUnchanged = "unchanged"

	// ReasonAlreadyConfirmed is reported when quick-confirm hits an order that is already confirmed.
	ReasonAlreadyConfirmed = "already_confirmed"
)

// IdempotentDecision creates a DecisionResult indicating no state change is needed.
func IdempotentDecision(order Order, reason string) DecisionResult {
	return DecisionResult{
		Outcome: OutcomeIdempotent,
		Order:   order,
		Reason:  reason,
	}
}

// SuccessDecision creates a DecisionResult carrying the new order state, the change to persist (may be nil),
// and the notifications to record with it.
func SuccessDecision(order Order, change *StatusChange, notifications []Notification) DecisionResult {
	return DecisionResult{
		Outcome:       OutcomeSuccess,
		Order:         order,
		Change:        change,
		Notifications: notifications,
	}
}

// ErrorDecision creates a DecisionResult indicating a business rule violation.
func ErrorDecision(err error) DecisionResult {
	return DecisionResult{
		Outcome: OutcomeError,
		Err:     err,
	}
}

// HasChangeToApply returns true if there is a status change to persist.
func (r DecisionResult) HasChangeToApply() bool {
	return r.Outcome == OutcomeSuccess && r.Change != nil
}

// IsIdempotent returns true if nothing has to be persisted.
func (r DecisionResult) IsIdempotent() bool {
	return r.Outcome == OutcomeIdempotent
}

// HasError returns the error if there is one, otherwise nil.
func (r DecisionResult) HasError() error {
	if r.Outcome == OutcomeError {
		return r.Err
	}

	return nil
}
