package confirmorder

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/storefront-orders/storefront/core"
)

const (
	commandType = "ConfirmOrder"
)

// Command represents the intent of an admin to confirm a pending order.
type Command struct {
	OrderID    uuid.UUID
	Actor      core.Actor
	OccurredAt core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(orderID uuid.UUID, actor core.Actor, occurredAt time.Time) Command {
	return Command{
		OrderID:    orderID,
		Actor:      actor,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
