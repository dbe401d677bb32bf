package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/storefront-orders/storefront/core"
)

func Test_DecideStatusChange_CustomerVersusAdminShipping(t *testing.T) {
	// arrange
	policy := core.DefaultTransitionPolicy()
	order := givenOrder(ptr("cust-1"), core.StatusPending)

	// act
	byCustomer := core.DecideStatusChange(policy, order, core.StatusChangeRequest{
		NewStatus:  core.StatusShipped,
		Actor:      core.CustomerActor("cust-1"),
		OccurredAt: fixtureNow,
	})
	byAdmin := core.DecideStatusChange(policy, order, core.StatusChangeRequest{
		NewStatus:      core.StatusShipped,
		Actor:          core.AdminActor("admin-1"),
		TrackingNumber: ptr("YAL-123456"),
		OccurredAt:     fixtureNow,
	})

	// assert
	assert.ErrorIs(t, byCustomer.HasError(), core.ErrForbiddenTransition)

	require.NoError(t, byAdmin.HasError())
	require.True(t, byAdmin.HasChangeToApply())
	assert.Equal(t, core.StatusPending, byAdmin.Change.From)
	assert.Equal(t, core.StatusShipped, byAdmin.Change.To)
	assert.Equal(t, core.StatusShipped, byAdmin.Order.Status)
	assert.Equal(t, ptr("YAL-123456"), byAdmin.Order.TrackingNumber)
	assert.Equal(t, fixtureNow, byAdmin.Order.UpdatedAt)
	assert.Equal(t, []core.NotificationKind{core.NotificationOrderShipped}, notificationKinds(byAdmin.Notifications))
	assert.Equal(t, ptr("YAL-123456"), byAdmin.Notifications[0].TrackingNumber)
}

func Test_DecideStatusChange_CustomerCancelsPendingOrder(t *testing.T) {
	// arrange
	order := givenOrder(ptr("cust-1"), core.StatusPending)

	// act
	result := core.DecideStatusChange(core.DefaultTransitionPolicy(), order, core.StatusChangeRequest{
		NewStatus:  core.StatusCancelled,
		Actor:      core.CustomerActor("cust-1"),
		OccurredAt: fixtureNow,
	})

	// assert
	require.NoError(t, result.HasError())
	assert.Equal(t, core.StatusCancelled, result.Order.Status)
	assert.Equal(t,
		[]core.NotificationKind{core.NotificationOrderCancelled, core.NotificationCancelledByCustomer},
		notificationKinds(result.Notifications),
	)
}

func Test_DecideStatusChange_CustomerRulesFromEveryStatus(t *testing.T) {
	policy := core.DefaultTransitionPolicy()

	for _, from := range core.AllStatuses() {
		for _, to := range core.AllStatuses() {
			order := givenOrder(ptr("cust-1"), from)

			result := core.DecideStatusChange(policy, order, core.StatusChangeRequest{
				NewStatus:  to,
				Actor:      core.CustomerActor("cust-1"),
				OccurredAt: fixtureNow,
			})

			switch {
			case from == core.StatusPending && to == core.StatusCancelled:
				assert.NoError(t, result.HasError(), "%s -> %s", from, to)
				assert.True(t, result.HasChangeToApply())
			case to == core.StatusCancelled && from.IsTerminal():
				assert.True(t, result.IsIdempotent(), "%s -> %s", from, to)
			default:
				assert.ErrorIs(t, result.HasError(), core.ErrForbiddenTransition, "%s -> %s", from, to)
			}
		}
	}
}

func Test_DecideStatusChange_AlreadyTerminalIsIdempotent(t *testing.T) {
	for _, status := range []core.Status{core.StatusCancelled, core.StatusDelivered} {
		t.Run(string(status), func(t *testing.T) {
			// arrange
			order := givenOrder(ptr("cust-1"), status)

			// act
			result := core.DecideStatusChange(core.DefaultTransitionPolicy(), order, core.StatusChangeRequest{
				NewStatus:  core.StatusCancelled,
				Actor:      core.CustomerActor("cust-1"),
				OccurredAt: fixtureNow,
			})

			// assert
			assert.NoError(t, result.HasError())
			assert.True(t, result.IsIdempotent())
			assert.Equal(t, core.ReasonAlreadyTerminal, result.Reason)
			assert.False(t, result.HasChangeToApply())
			assert.Equal(t, order.UpdatedAt, result.Order.UpdatedAt)
			assert.Empty(t, result.Notifications)
		})
	}
}

func Test_DecideStatusChange_RejectsNonOwner(t *testing.T) {
	testCases := []struct {
		name       string
		customerID *string
		actor      core.Actor
	}{
		{name: "other customer", customerID: ptr("cust-1"), actor: core.CustomerActor("cust-2")},
		{name: "guest order", customerID: nil, actor: core.CustomerActor("cust-2")},
		{name: "anonymous", customerID: ptr("cust-1"), actor: core.GuestActor()},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			order := givenOrder(tc.customerID, core.StatusPending)

			result := core.DecideStatusChange(core.DefaultTransitionPolicy(), order, core.StatusChangeRequest{
				NewStatus:  core.StatusCancelled,
				Actor:      tc.actor,
				OccurredAt: fixtureNow,
			})

			assert.ErrorIs(t, result.HasError(), core.ErrNotOrderOwner)
		})
	}
}

func Test_DecideStatusChange_AdminMayReachEveryStatusFromEveryStatus(t *testing.T) {
	policy := core.DefaultTransitionPolicy()

	for _, from := range core.AllStatuses() {
		for _, to := range core.AllStatuses() {
			if from == to {
				continue
			}

			result := core.DecideStatusChange(policy, givenOrder(ptr("cust-1"), from), core.StatusChangeRequest{
				NewStatus:  to,
				Actor:      core.AdminActor("admin-1"),
				OccurredAt: fixtureNow,
			})

			require.NoError(t, result.HasError(), "%s -> %s", from, to)
			assert.Equal(t, to, result.Order.Status)
			assert.NotEmpty(t, result.Notifications, "%s -> %s", from, to)
		}
	}
}

func Test_DecideStatusChange_AdminSameStatus(t *testing.T) {
	// arrange
	policy := core.DefaultTransitionPolicy()
	order := givenOrder(ptr("cust-1"), core.StatusShipped)
	order.TrackingNumber = ptr("YAL-1")

	// act
	unchanged := core.DecideStatusChange(policy, order, core.StatusChangeRequest{
		NewStatus:      core.StatusShipped,
		Actor:          core.AdminActor("admin-1"),
		TrackingNumber: ptr("YAL-1"),
		OccurredAt:     fixtureNow,
	})
	newTracking := core.DecideStatusChange(policy, order, core.StatusChangeRequest{
		NewStatus:      core.StatusShipped,
		Actor:          core.AdminActor("admin-1"),
		TrackingNumber: ptr("YAL-2"),
		OccurredAt:     fixtureNow,
	})

	// assert
	assert.True(t, unchanged.IsIdempotent())
	assert.Equal(t, core.ReasonUnchanged, unchanged.Reason)

	require.True(t, newTracking.HasChangeToApply())
	assert.Equal(t, ptr("YAL-2"), newTracking.Order.TrackingNumber)
	assert.Empty(t, newTracking.Notifications, "no status change, no notification")
}

func Test_DecideStatusChange_AdminClearsTrackingAndNotes(t *testing.T) {
	// arrange
	order := givenOrder(ptr("cust-1"), core.StatusShipped)
	order.TrackingNumber = ptr("YAL-1")
	order.Notes = ptr("fragile")

	// act
	result := core.DecideStatusChange(core.DefaultTransitionPolicy(), order, core.StatusChangeRequest{
		NewStatus:      core.StatusConfirmed,
		Actor:          core.AdminActor("admin-1"),
		TrackingNumber: ptr(""),
		OccurredAt:     fixtureNow,
	})

	// assert
	require.NoError(t, result.HasError())
	assert.Nil(t, result.Order.TrackingNumber)
	assert.Equal(t, ptr("fragile"), result.Order.Notes, "nil keeps the current notes")
}

func Test_DecideStatusChange_DeliveredAt(t *testing.T) {
	// arrange
	policy := core.DefaultTransitionPolicy()
	admin := core.AdminActor("admin-1")
	order := givenOrder(ptr("cust-1"), core.StatusShipped)

	// act
	delivered := core.DecideStatusChange(policy, order, core.StatusChangeRequest{NewStatus: core.StatusDelivered, Actor: admin, OccurredAt: fixtureNow})
	reopened := core.DecideStatusChange(policy, delivered.Order, core.StatusChangeRequest{
		NewStatus:  core.StatusShipped,
		Actor:      admin,
		OccurredAt: fixtureNow.Add(time.Hour),
	})

	// assert
	require.NotNil(t, delivered.Order.DeliveredAt)
	assert.Equal(t, fixtureNow, *delivered.Order.DeliveredAt)
	assert.Equal(t, []core.NotificationKind{core.NotificationOrderDelivered}, notificationKinds(delivered.Notifications))
	assert.Nil(t, reopened.Order.DeliveredAt)
}

func Test_DecideStatusChange_ConfirmationCarriesInvoice(t *testing.T) {
	order := givenOrder(nil, core.StatusPending)

	result := core.DecideStatusChange(core.DefaultTransitionPolicy(), order, core.StatusChangeRequest{
		NewStatus:  core.StatusConfirmed,
		Actor:      core.AdminActor("admin-1"),
		OccurredAt: fixtureNow,
	})

	require.Len(t, result.Notifications, 1)
	assert.Equal(t, core.NotificationOrderConfirmed, result.Notifications[0].Kind)
	assert.Equal(t, order.InvoiceURL, result.Notifications[0].InvoiceURL)
	assert.Equal(t, core.AudienceCustomer, result.Notifications[0].Audience)
}

func Test_DecideStatusChange_CustomPolicy(t *testing.T) {
	// arrange
	policy := core.TransitionPolicy{
		core.RoleAdmin: {core.StatusPending: {core.StatusConfirmed}},
	}
	order := givenOrder(ptr("cust-1"), core.StatusPending)

	// act
	result := core.DecideStatusChange(policy, order, core.StatusChangeRequest{
		NewStatus:  core.StatusShipped,
		Actor:      core.AdminActor("admin-1"),
		OccurredAt: fixtureNow,
	})

	// assert
	assert.ErrorIs(t, result.HasError(), core.ErrForbiddenTransition)
}
