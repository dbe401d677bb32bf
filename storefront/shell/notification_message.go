package shell

import (
	"errors"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
	"github.com/AntonStoeckl/storefront-orders/storefront/core"
)

var ErrMarshalingNotificationFailed = errors.New("marshaling the notification message failed")
var ErrUnmarshalingNotificationFailed = errors.New("unmarshaling the notification message failed")

// NotificationMessage is the JSON document stored in the outbox and published to the notification sink.
type NotificationMessage struct {
	EventID        string    `json:"event_id"`
	Kind           string    `json:"kind"`
	Recipient      string    `json:"recipient"`
	OrderID        string    `json:"order_id"`
	Status         string    `json:"statut"`
	CustomerName   string    `json:"nom_complet"`
	Total          int64     `json:"total"`
	TrackingNumber *string   `json:"numero_suivi,omitempty"`
	InvoiceURL     *string   `json:"facture_url,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Recipients resolves the address of each audience.
type Recipients struct {
	AdminEmail string
}

func (r Recipients) resolve(audience core.Audience, order core.Order) string {
	if audience == core.AudienceAdmin {
		return r.AdminEmail
	}

	return order.Contact.Email
}

// StorableNotificationsFrom converts the notifications of a decision to outbox records.
// Each record gets a fresh UUIDv7 event id. Notifications without a resolvable recipient are an error.
func StorableNotificationsFrom(
	notifications []core.Notification,
	order core.Order,
	recipients Recipients,
) ([]orderstore.StorableNotification, error) {

	storable := make([]orderstore.StorableNotification, 0, len(notifications))

	for _, n := range notifications {
		eventID, err := uuid.NewV7()
		if err != nil {
			return nil, errors.Join(ErrMarshalingNotificationFailed, err)
		}

		message := NotificationMessage{
			EventID:        eventID.String(),
			Kind:           string(n.Kind),
			Recipient:      recipients.resolve(n.Audience, order),
			OrderID:        n.OrderID.String(),
			Status:         string(n.Status),
			CustomerName:   n.CustomerName,
			Total:          n.Total,
			TrackingNumber: n.TrackingNumber,
			InvoiceURL:     n.InvoiceURL,
			OccurredAt:     n.OccurredAt,
		}

		payload, err := jsoniter.ConfigFastest.Marshal(message)
		if err != nil {
			return nil, errors.Join(ErrMarshalingNotificationFailed, err)
		}

		record, err := orderstore.BuildStorableNotification(
			message.EventID,
			message.OrderID,
			message.Kind,
			message.Recipient,
			payload,
			n.OccurredAt,
		)
		if err != nil {
			return nil, err
		}

		storable = append(storable, record)
	}

	return storable, nil
}

// NotificationMessageFrom decodes the payload of an outbox record.
func NotificationMessageFrom(record orderstore.StorableNotification) (NotificationMessage, error) {
	var message NotificationMessage

	if err := jsoniter.ConfigFastest.Unmarshal(record.PayloadJSON, &message); err != nil {
		return NotificationMessage{}, errors.Join(ErrUnmarshalingNotificationFailed, err)
	}

	return message, nil
}
