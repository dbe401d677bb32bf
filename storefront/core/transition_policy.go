package core

// TransitionPolicy maps an actor role and a current status to the statuses that role may set.
// Roles or statuses without an entry allow nothing.
type TransitionPolicy map[Role]map[Status][]Status

// DefaultTransitionPolicy returns the storefront rules: a customer may only cancel a pending order,
// an admin may set any status from any status, in any direction.
func DefaultTransitionPolicy() TransitionPolicy {
	all := AllStatuses()

	admin := make(map[Status][]Status, len(all))
	for _, from := range all {
		admin[from] = all
	}

	return TransitionPolicy{
		RoleCustomer: {
			StatusPending: {StatusCancelled},
		},
		RoleAdmin: admin,
	}
}

// Allows reports whether role may move an order from one status to another.
func (p TransitionPolicy) Allows(role Role, from, to Status) bool {
	for _, allowed := range p[role][from] {
		if allowed == to {
			return true
		}
	}

	return false
}

// AllowedTargets returns the statuses role may set on an order currently in from.
func (p TransitionPolicy) AllowedTargets(role Role, from Status) []Status {
	targets := p[role][from]
	result := make([]Status, len(targets))
	copy(result, targets)

	return result
}
