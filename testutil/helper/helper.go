package helper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
	"github.com/AntonStoeckl/storefront-orders/storefront/catalog"
	"github.com/AntonStoeckl/storefront-orders/storefront/core"
	"github.com/AntonStoeckl/storefront-orders/storefront/shell"
)

// AdminEmail is the admin recipient used by all handler tests.
const AdminEmail = "admin@boutique.example.dz"

// FixtureProductID identifies the product of FixtureCatalog with stock 3.
const (
	FixtureProductID      int64 = 1
	FixtureOtherProductID int64 = 2
	FixtureSoldOutID      int64 = 3
)

func GivenUniqueID(t testing.TB) uuid.UUID {
	id, err := uuid.NewV7()
	assert.NoError(t, err, "error in arranging test data")

	return id
}

// FixtureCatalog returns a catalog with a robe (stock 3), a gandoura (stock 10), and a sold-out burnous.
func FixtureCatalog() *catalog.MemoryReader {
	return catalog.NewMemoryReader(
		catalog.Product{ID: FixtureProductID, Name: "Robe kabyle", Price: 3500, Stock: 3},
		catalog.Product{ID: FixtureOtherProductID, Name: "Gandoura", Price: 4500, Stock: 10},
		catalog.Product{ID: FixtureSoldOutID, Name: "Burnous", Price: 12000, Stock: 2, OutOfStock: true},
	)
}

func FixtureRecipients() shell.Recipients {
	return shell.Recipients{AdminEmail: AdminEmail}
}

// FixtureOrder builds a valid order with two robes, delivered at home in Tizi Ouzou.
func FixtureOrder(t testing.TB, customerID *string, status core.Status, fakeClock time.Time) core.Order {
	article := core.BuildArticleSnapshot(FixtureProductID, "Robe kabyle", 3500, 2, nil, "rouge")

	return core.Order{
		ID:         GivenUniqueID(t),
		CustomerID: customerID,
		Contact: core.Contact{
			FullName: "Lydia Amrani",
			Email:    "lydia@example.dz",
			Phone:    "0555123456",
			Address:  "12 rue Abane Ramdane",
			City:     "Azazga",
			Region:   "Tizi Ouzou",
		},
		Method:      core.MethodHome,
		Speed:       core.SpeedExpress,
		Subtotal:    article.LineSubtotal,
		DeliveryFee: 590,
		Total:       article.LineSubtotal + 590,
		Status:      status,
		CreatedAt:   fakeClock,
		UpdatedAt:   fakeClock,
		Articles:    []core.ArticleSnapshot{article},
	}
}

// GivenPersistedOrder writes FixtureOrder directly to the store, without notifications.
func GivenPersistedOrder(
	t testing.TB,
	ctx context.Context,
	store interface {
		Create(ctx context.Context, order orderstore.StorableOrder, notifications ...orderstore.StorableNotification) error
	},
	customerID *string,
	status core.Status,
	fakeClock time.Time,
) core.Order {

	order := FixtureOrder(t, customerID, status, fakeClock)
	require.NoError(t, store.Create(ctx, shell.StorableOrderFrom(order)), "error in arranging test data")

	return order
}

// PendingNotificationKinds returns the kinds of all outbox records not yet sent, oldest first.
func PendingNotificationKinds(
	t testing.TB,
	ctx context.Context,
	store interface {
		FetchPendingNotifications(ctx context.Context, limit int) ([]orderstore.StorableNotification, error)
	},
) []string {

	pending, err := store.FetchPendingNotifications(ctx, 100)
	require.NoError(t, err, "error in asserting test data")

	kinds := make([]string, 0, len(pending))
	for _, n := range pending {
		kinds = append(kinds, n.Kind)
	}

	return kinds
}

func CustomerID(id string) *string {
	return &id
}
