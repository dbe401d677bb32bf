package core_test

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/storefront-orders/storefront/core"
)

var fixtureNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func ptr[T any](v T) *T {
	return &v
}

func givenOrder(customerID *string, status core.Status) core.Order {
	article := core.BuildArticleSnapshot(7, "Robe kabyle", 3500, 2, ptr("M"), "Noir")

	return core.Order{
		ID:         uuid.Must(uuid.NewV7()),
		CustomerID: customerID,
		Contact: core.Contact{
			FullName: "Amira Bensalem",
			Email:    "amira@example.dz",
			Phone:    "0550123456",
			Address:  "12 rue Abane Ramdane",
			City:     "Tizi Ouzou",
			Region:   "Tizi Ouzou",
		},
		Method:      core.MethodHome,
		Speed:       core.SpeedExpress,
		Subtotal:    7000,
		DeliveryFee: 590,
		Total:       7590,
		Status:      status,
		InvoiceURL:  ptr("/factures/facture-1.pdf"),
		CreatedAt:   fixtureNow.Add(-time.Hour),
		UpdatedAt:   fixtureNow.Add(-time.Hour),
		Articles:    []core.ArticleSnapshot{article},
	}
}

func notificationKinds(notifications []core.Notification) []core.NotificationKind {
	kinds := make([]core.NotificationKind, 0, len(notifications))
	for _, n := range notifications {
		kinds = append(kinds, n.Kind)
	}

	return kinds
}
