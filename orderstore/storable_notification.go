package orderstore

import (
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var ErrInvalidNotificationPayloadJSON = errors.New("notification payload json is not valid")
var ErrEmptyNotificationRecipient = errors.New("notification recipient is empty")

// StorableNotification is an outbox record: a notification intent persisted in the same transaction
// as the order change that caused it, dispatched later by a relay.
//
// While its properties are exported, new records should be constructed with BuildStorableNotification.
type StorableNotification struct {
	ID          int64
	EventID     string
	OrderID     string
	Kind        string
	Recipient   string
	PayloadJSON []byte
	Attempts    int
	LastError   *string
	CreatedAt   time.Time

	// NextAttemptAt is nil until the first failed dispatch.
	NextAttemptAt *time.Time
}

// BuildStorableNotification is a factory method for StorableNotification.
//
// Returns an error if payloadJSON is not valid JSON or the recipient is empty.
func BuildStorableNotification(
	eventID string,
	orderID string,
	kind string,
	recipient string,
	payloadJSON []byte,
	createdAt time.Time,
) (StorableNotification, error) {

	if !jsoniter.Valid(payloadJSON) {
		return StorableNotification{}, ErrInvalidNotificationPayloadJSON
	}

	if recipient == "" {
		return StorableNotification{}, ErrEmptyNotificationRecipient
	}

	return StorableNotification{
		EventID:     eventID,
		OrderID:     orderID,
		Kind:        kind,
		Recipient:   recipient,
		PayloadJSON: payloadJSON,
		CreatedAt:   createdAt,
	}, nil
}
