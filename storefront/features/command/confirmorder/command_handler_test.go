package confirmorder_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/storefront-orders/storefront/core"
	"github.com/AntonStoeckl/storefront-orders/storefront/features/command/confirmorder"
	"github.com/AntonStoeckl/storefront-orders/testutil/helper"
	"github.com/AntonStoeckl/storefront-orders/testutil/helper/orderstorewrapper"
)

var fakeClock = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func Test_CommandHandler_Handle(t *testing.T) {
	testCases := []struct {
		name               string
		status             core.Status
		actor              core.Actor
		expectedErr        error
		expectedIdempotent bool
		expectedStatus     string
		expectedKinds      []string
	}{
		{
			name:           "pending order is confirmed",
			status:         core.StatusPending,
			actor:          core.AdminActor("admin-1"),
			expectedStatus: "confirmee",
			expectedKinds:  []string{string(core.NotificationOrderConfirmed)},
		},
		{
			name:               "confirmed order stays confirmed",
			status:             core.StatusConfirmed,
			actor:              core.AdminActor("admin-1"),
			expectedIdempotent: true,
			expectedStatus:     "confirmee",
			expectedKinds:      []string{},
		},
		{
			name:           "shipped order cannot be quick-confirmed",
			status:         core.StatusShipped,
			actor:          core.AdminActor("admin-1"),
			expectedErr:    core.ErrQuickConfirmNotApplicable,
			expectedStatus: "expediee",
			expectedKinds:  []string{},
		},
		{
			name:           "customers cannot confirm",
			status:         core.StatusPending,
			actor:          core.CustomerActor("cust-1"),
			expectedErr:    core.ErrAdminOnly,
			expectedStatus: "en_attente",
			expectedKinds:  []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// setup
			wrapper := orderstorewrapper.CreateWrapperWithTestConfig(t)
			t.Cleanup(wrapper.Close)
			ctx := context.Background()
			handler := confirmorder.NewCommandHandler(wrapper.GetOrderStore(), helper.FixtureRecipients())

			// arrange
			order := helper.GivenPersistedOrder(t, ctx, wrapper.GetOrderStore(), helper.CustomerID("cust-1"), tc.status, fakeClock)

			// act
			_, result, err := handler.Handle(ctx, confirmorder.BuildCommand(order.ID, tc.actor, fakeClock.Add(time.Hour)))

			// assert
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expectedIdempotent, result.Idempotent)
			}

			persisted, getErr := wrapper.GetOrderStore().GetByID(ctx, order.ID.String())
			require.NoError(t, getErr)
			assert.Equal(t, tc.expectedStatus, persisted.Status)
			assert.Equal(t, tc.expectedKinds, helper.PendingNotificationKinds(t, ctx, wrapper.GetOrderStore()))
		})
	}
}
