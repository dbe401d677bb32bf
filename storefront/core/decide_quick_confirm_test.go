package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/storefront-orders/storefront/core"
)

func Test_DecideQuickConfirm(t *testing.T) {
	admin := core.AdminActor("admin-1")

	t.Run("pending is confirmed", func(t *testing.T) {
		result := core.DecideQuickConfirm(givenOrder(ptr("cust-1"), core.StatusPending), admin, fixtureNow)

		require.True(t, result.HasChangeToApply())
		assert.Equal(t, core.StatusConfirmed, result.Order.Status)
		assert.Equal(t, []core.NotificationKind{core.NotificationOrderConfirmed}, notificationKinds(result.Notifications))
	})

	t.Run("already confirmed is idempotent", func(t *testing.T) {
		result := core.DecideQuickConfirm(givenOrder(ptr("cust-1"), core.StatusConfirmed), admin, fixtureNow)

		assert.True(t, result.IsIdempotent())
		assert.Equal(t, core.ReasonAlreadyConfirmed, result.Reason)
	})

	for _, status := range []core.Status{core.StatusShipped, core.StatusDelivered, core.StatusCancelled} {
		t.Run(string(status)+" is not applicable", func(t *testing.T) {
			result := core.DecideQuickConfirm(givenOrder(ptr("cust-1"), status), admin, fixtureNow)

			assert.ErrorIs(t, result.HasError(), core.ErrQuickConfirmNotApplicable)
		})
	}

	t.Run("customer is rejected", func(t *testing.T) {
		result := core.DecideQuickConfirm(givenOrder(ptr("cust-1"), core.StatusPending), core.CustomerActor("cust-1"), fixtureNow)

		assert.ErrorIs(t, result.HasError(), core.ErrAdminOnly)
	})
}

func Test_DecideRemoval(t *testing.T) {
	// arrange
	admin := core.AdminActor("admin-1")

	// act
	cancelled := core.DecideRemoval(givenOrder(nil, core.StatusCancelled), admin)
	pending := core.DecideRemoval(givenOrder(nil, core.StatusPending), admin)
	byCustomer := core.DecideRemoval(givenOrder(ptr("cust-1"), core.StatusCancelled), core.CustomerActor("cust-1"))

	// assert
	assert.NoError(t, cancelled.HasError())
	assert.Equal(t, core.OutcomeSuccess, cancelled.Outcome)
	assert.ErrorIs(t, pending.HasError(), core.ErrOrderNotCancelled)
	assert.ErrorIs(t, byCustomer.HasError(), core.ErrAdminOnly)
}
