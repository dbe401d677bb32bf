package shell

import (
	"errors"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
	"github.com/AntonStoeckl/storefront-orders/storefront/core"
)

// ErrInvalidPersistedOrder is returned when a stored row holds values the core does not know.
var ErrInvalidPersistedOrder = errors.New("persisted order holds invalid values")

// IsRejection reports whether err is a business rejection rather than an infrastructure failure.
func IsRejection(err error) bool {
	return errors.Is(err, core.ErrValidation) ||
		errors.Is(err, core.ErrForbiddenTransition) ||
		errors.Is(err, core.ErrNotOrderOwner) ||
		errors.Is(err, core.ErrAdminOnly) ||
		errors.Is(err, core.ErrQuickConfirmNotApplicable) ||
		errors.Is(err, core.ErrOrderNotCancelled) ||
		errors.Is(err, core.ErrDeliveryUnavailable) ||
		errors.Is(err, orderstore.ErrOrderNotFound)
}
