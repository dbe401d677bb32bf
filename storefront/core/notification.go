package core

import (
	"github.com/google/uuid"
)

// NotificationKind names the message a notification sink should produce.
type NotificationKind string

const (
	NotificationOrderReceived       NotificationKind = "order_received"
	NotificationNewOrder            NotificationKind = "new_order"
	NotificationOrderConfirmed      NotificationKind = "order_confirmed"
	NotificationOrderShipped        NotificationKind = "order_shipped"
	NotificationOrderDelivered      NotificationKind = "order_delivered"
	NotificationOrderCancelled      NotificationKind = "order_cancelled"
	NotificationCancelledByCustomer NotificationKind = "order_cancelled_by_customer"
	NotificationOrderStatusUpdated  NotificationKind = "order_status_updated"
)

// Audience tells the shell which address a notification goes to.
type Audience string

const (
	AudienceCustomer Audience = "customer"
	AudienceAdmin    Audience = "admin"
)

// Notification is the intent to inform someone about an order event.
// The shell resolves the recipient address and records it in the outbox.
type Notification struct {
	Kind           NotificationKind
	Audience       Audience
	OrderID        uuid.UUID
	Status         Status
	CustomerName   string
	Total          int64
	TrackingNumber *string
	InvoiceURL     *string
	OccurredAt     OccurredAt
}

func buildNotification(kind NotificationKind, audience Audience, order Order, occurredAt OccurredAt) Notification {
	return Notification{
		Kind:           kind,
		Audience:       audience,
		OrderID:        order.ID,
		Status:         order.Status,
		CustomerName:   order.Contact.FullName,
		Total:          order.Total,
		TrackingNumber: order.TrackingNumber,
		InvoiceURL:     order.InvoiceURL,
		OccurredAt:     occurredAt,
	}
}

// NotificationsForCreation returns the customer receipt and the admin alert for a new order.
func NotificationsForCreation(order Order) []Notification {
	return []Notification{
		buildNotification(NotificationOrderReceived, AudienceCustomer, order, order.CreatedAt),
		buildNotification(NotificationNewOrder, AudienceAdmin, order, order.CreatedAt),
	}
}

// NotificationsForStatus returns what reaching the order's current status requires.
// The order must already carry the new status.
func NotificationsForStatus(order Order, actor Actor, occurredAt OccurredAt) []Notification {
	switch order.Status {
	case StatusConfirmed:
		return []Notification{buildNotification(NotificationOrderConfirmed, AudienceCustomer, order, occurredAt)}

	case StatusShipped:
		return []Notification{buildNotification(NotificationOrderShipped, AudienceCustomer, order, occurredAt)}

	case StatusDelivered:
		return []Notification{buildNotification(NotificationOrderDelivered, AudienceCustomer, order, occurredAt)}

	case StatusCancelled:
		notifications := []Notification{buildNotification(NotificationOrderCancelled, AudienceCustomer, order, occurredAt)}
		if !actor.IsAdmin() {
			notifications = append(notifications, buildNotification(NotificationCancelledByCustomer, AudienceAdmin, order, occurredAt))
		}

		return notifications

	default:
		return []Notification{buildNotification(NotificationOrderStatusUpdated, AudienceCustomer, order, occurredAt)}
	}
}
