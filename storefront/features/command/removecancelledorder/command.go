package removecancelledorder

import (
	"github.com/google/uuid"

	"github.com/AntonStoeckl/storefront-orders/storefront/core"
)

const (
	commandType = "RemoveCancelledOrder"
)

// Command represents the intent of an admin to delete a cancelled order.
type Command struct {
	OrderID uuid.UUID
	Actor   core.Actor
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(orderID uuid.UUID, actor core.Actor) Command {
	return Command{
		OrderID: orderID,
		Actor:   actor,
	}
}
