package allorders_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/storefront-orders/storefront/core"
	"github.com/AntonStoeckl/storefront-orders/storefront/features/query/allorders"
	"github.com/AntonStoeckl/storefront-orders/testutil/helper"
	"github.com/AntonStoeckl/storefront-orders/testutil/helper/orderstorewrapper"
)

var fakeClock = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func Test_QueryHandler_Handle_ListsAllWithCounts(t *testing.T) {
	// setup
	wrapper := orderstorewrapper.CreateWrapperWithTestConfig(t)
	t.Cleanup(wrapper.Close)
	ctx := context.Background()
	handler := allorders.NewQueryHandler(wrapper.GetOrderStore())

	// arrange
	helper.GivenPersistedOrder(t, ctx, wrapper.GetOrderStore(), helper.CustomerID("cust-1"), core.StatusPending, fakeClock)
	helper.GivenPersistedOrder(t, ctx, wrapper.GetOrderStore(), nil, core.StatusPending, fakeClock.Add(time.Minute))
	helper.GivenPersistedOrder(t, ctx, wrapper.GetOrderStore(), helper.CustomerID("cust-2"), core.StatusShipped, fakeClock.Add(2*time.Minute))
	newest := helper.GivenPersistedOrder(t, ctx, wrapper.GetOrderStore(), nil, core.StatusCancelled, fakeClock.Add(3*time.Minute))

	// act
	list, err := handler.Handle(ctx, allorders.BuildQuery(core.AdminActor("admin-1"), 1, 10))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 4, list.TotalCount)
	require.Len(t, list.Orders, 4)
	assert.Equal(t, newest.ID, list.Orders[0].ID)
	assert.Equal(t, map[core.Status]int{
		core.StatusPending:   2,
		core.StatusConfirmed: 0,
		core.StatusShipped:   1,
		core.StatusDelivered: 0,
		core.StatusCancelled: 1,
	}, list.CountsByStatus)
}

func Test_QueryHandler_Handle_RejectsNonAdmins(t *testing.T) {
	// setup
	wrapper := orderstorewrapper.CreateWrapperWithTestConfig(t)
	t.Cleanup(wrapper.Close)
	handler := allorders.NewQueryHandler(wrapper.GetOrderStore())

	for _, actor := range []core.Actor{core.GuestActor(), core.CustomerActor("cust-1")} {
		// act
		_, err := handler.Handle(context.Background(), allorders.BuildQuery(actor, 1, 10))

		// assert
		assert.ErrorIs(t, err, core.ErrAdminOnly)
	}
}
