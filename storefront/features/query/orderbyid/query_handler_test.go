package orderbyid_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
	"github.com/AntonStoeckl/storefront-orders/storefront/core"
	"github.com/AntonStoeckl/storefront-orders/storefront/features/query/orderbyid"
	"github.com/AntonStoeckl/storefront-orders/testutil/helper"
	"github.com/AntonStoeckl/storefront-orders/testutil/helper/orderstorewrapper"
)

var fakeClock = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func Test_QueryHandler_Handle_ViewingRule(t *testing.T) {
	// setup
	wrapper := orderstorewrapper.CreateWrapperWithTestConfig(t)
	t.Cleanup(wrapper.Close)
	ctx := context.Background()
	handler := orderbyid.NewQueryHandler(wrapper.GetOrderStore())

	// arrange
	owned := helper.GivenPersistedOrder(t, ctx, wrapper.GetOrderStore(), helper.CustomerID("cust-1"), core.StatusPending, fakeClock)
	guest := helper.GivenPersistedOrder(t, ctx, wrapper.GetOrderStore(), nil, core.StatusPending, fakeClock)

	testCases := []struct {
		name        string
		orderID     uuid.UUID
		requester   core.Actor
		expectedErr error
	}{
		{name: "owner reads own order", orderID: owned.ID, requester: core.CustomerActor("cust-1")},
		{name: "admin reads any order", orderID: owned.ID, requester: core.AdminActor("admin-1")},
		{name: "other customer is rejected", orderID: owned.ID, requester: core.CustomerActor("cust-2"), expectedErr: core.ErrNotOrderOwner},
		{name: "guest cannot read a customer order", orderID: owned.ID, requester: core.GuestActor(), expectedErr: core.ErrNotOrderOwner},
		{name: "guest order is readable by a guest", orderID: guest.ID, requester: core.GuestActor()},
		{name: "guest order is readable by any customer", orderID: guest.ID, requester: core.CustomerActor("cust-2")},
		{name: "unknown order", orderID: uuid.New(), requester: core.AdminActor("admin-1"), expectedErr: orderstore.ErrOrderNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			order, err := handler.Handle(ctx, orderbyid.BuildQuery(tc.orderID, tc.requester))

			// assert
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.orderID, order.ID)
			assert.Equal(t, int64(7590), order.Total)
			require.Len(t, order.Articles, 1)
			assert.Equal(t, "Robe kabyle", order.Articles[0].ProductName)
		})
	}
}
