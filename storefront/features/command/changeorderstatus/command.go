package changeorderstatus

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/storefront-orders/storefront/core"
)

const (
	commandType = "ChangeOrderStatus"
)

// Command represents the intent of an actor to move an order to a new status.
// NewStatus holds the wire value, e.g. "expediee".
type Command struct {
	OrderID        uuid.UUID
	NewStatus      string
	Actor          core.Actor
	TrackingNumber *string
	Notes          *string
	OccurredAt     core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command; tracking number and notes are optional and admin only.
func BuildCommand(
	orderID uuid.UUID,
	newStatus string,
	actor core.Actor,
	trackingNumber *string,
	notes *string,
	occurredAt time.Time,
) Command {

	return Command{
		OrderID:        orderID,
		NewStatus:      newStatus,
		Actor:          actor,
		TrackingNumber: trackingNumber,
		Notes:          notes,
		OccurredAt:     core.ToOccurredAt(occurredAt),
	}
}
