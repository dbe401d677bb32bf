package shell_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
	"github.com/AntonStoeckl/storefront-orders/storefront/core"
	"github.com/AntonStoeckl/storefront-orders/storefront/shell"
)

var fixtureNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func ptr[T any](v T) *T {
	return &v
}

func fixtureOrder() core.Order {
	return core.Order{
		ID:         uuid.Must(uuid.NewV7()),
		CustomerID: ptr("cust-1"),
		Contact: core.Contact{
			FullName: "Amira Bensalem",
			Email:    "amira@example.dz",
			Phone:    "0550123456",
			Address:  "12 rue Abane Ramdane",
			City:     "Tizi Ouzou",
			Region:   "Tizi Ouzou",
		},
		Method:           core.MethodOfficeA,
		Speed:            core.SpeedEconomy,
		Subtotal:         7000,
		DeliveryFee:      390,
		Total:            7390,
		DeclaredSubtotal: ptr(int64(7000)),
		Status:           core.StatusShipped,
		TrackingNumber:   ptr("YAL-1"),
		CreatedAt:        fixtureNow,
		UpdatedAt:        fixtureNow,
		Articles:         []core.ArticleSnapshot{core.BuildArticleSnapshot(7, "Robe kabyle", 3500, 2, ptr("M"), "Noir")},
	}
}

func Test_OrderFrom_RoundTripsStorableOrder(t *testing.T) {
	// arrange
	order := fixtureOrder()

	// act
	stored := shell.StorableOrderFrom(order)
	restored, err := shell.OrderFrom(stored)

	// assert
	require.NoError(t, err)
	assert.NoError(t, stored.Validate())
	assert.Equal(t, "bureau_a", stored.DeliveryMethod)
	assert.Equal(t, "expediee", stored.Status)
	assert.Equal(t, order, restored)
}

func Test_OrderFrom_RejectsUnknownValues(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(stored *orderstore.StorableOrder)
	}{
		{name: "bad id", mutate: func(s *orderstore.StorableOrder) { s.ID = "not-a-uuid" }},
		{name: "bad status", mutate: func(s *orderstore.StorableOrder) { s.Status = "shipped" }},
		{name: "bad method", mutate: func(s *orderstore.StorableOrder) { s.DeliveryMethod = "drone" }},
		{name: "bad speed", mutate: func(s *orderstore.StorableOrder) { s.DeliverySpeed = "slow" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stored := shell.StorableOrderFrom(fixtureOrder())
			tc.mutate(&stored)

			_, err := shell.OrderFrom(stored)

			assert.ErrorIs(t, err, shell.ErrInvalidPersistedOrder)
		})
	}
}

func Test_StatusUpdateFrom(t *testing.T) {
	// arrange
	deliveredAt := fixtureNow.Add(time.Hour)
	change := core.StatusChange{
		OrderID:     uuid.Must(uuid.NewV7()),
		From:        core.StatusShipped,
		To:          core.StatusDelivered,
		DeliveredAt: &deliveredAt,
		OccurredAt:  deliveredAt,
	}

	// act
	update := shell.StatusUpdateFrom(change)

	// assert
	assert.Equal(t, change.OrderID.String(), update.OrderID)
	assert.Equal(t, "expediee", update.ExpectedStatus)
	assert.Equal(t, "livree", update.NewStatus)
	assert.Equal(t, &deliveredAt, update.DeliveredAt)
	assert.Equal(t, deliveredAt, update.UpdatedAt)
}

func Test_StorableNotificationsFrom_ResolvesRecipients(t *testing.T) {
	// arrange
	order := fixtureOrder()
	notifications := core.NotificationsForCreation(order)

	// act
	records, err := shell.StorableNotificationsFrom(notifications, order, shell.Recipients{AdminEmail: "admin@boutique.dz"})

	// assert
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "amira@example.dz", records[0].Recipient)
	assert.Equal(t, "admin@boutique.dz", records[1].Recipient)
	assert.NotEqual(t, records[0].EventID, records[1].EventID)

	message, err := shell.NotificationMessageFrom(records[1])
	require.NoError(t, err)
	assert.Equal(t, "new_order", message.Kind)
	assert.Equal(t, order.ID.String(), message.OrderID)
	assert.Equal(t, int64(7390), message.Total)
	assert.Equal(t, records[1].EventID, message.EventID)
}

func Test_StorableNotificationsFrom_RequiresAdminEmail(t *testing.T) {
	order := fixtureOrder()

	_, err := shell.StorableNotificationsFrom(core.NotificationsForCreation(order), order, shell.Recipients{})

	assert.Error(t, err)
}
