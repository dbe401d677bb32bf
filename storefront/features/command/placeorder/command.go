package placeorder

import (
	"io"
	"time"

	"github.com/AntonStoeckl/storefront-orders/storefront/core"
)

const (
	commandType = "PlaceOrder"
)

// Command represents the intent to place an order, as submitted by the checkout.
type Command struct {
	CustomerID       *string   `json:"client_id"`
	FullName         string    `json:"nom_complet" validate:"required,max=200"`
	Email            string    `json:"email" validate:"required,email"`
	Phone            string    `json:"telephone" validate:"required,min=9,max=20"`
	Address          string    `json:"adresse" validate:"required,max=500"`
	City             string    `json:"ville" validate:"max=100"`
	Region           string    `json:"wilaya" validate:"required"`
	Method           string    `json:"methode_livraison" validate:"required,oneof=domicile bureau_a bureau_b"`
	Speed            string    `json:"vitesse_livraison" validate:"required,oneof=express economique"`
	Lines            []Line    `json:"articles"`
	DeclaredSubtotal *int64    `json:"sous_total"`
	Notes            *string   `json:"notes" validate:"omitempty,max=2000"`
	Invoice          io.Reader `json:"-"`
	OccurredAt       core.OccurredAt
}

// Line is one submitted cart line; the unit price is the price frozen in the cart.
type Line struct {
	ProductID int64   `json:"produit_id"`
	Quantity  int     `json:"quantite"`
	UnitPrice int64   `json:"prix_unitaire"`
	Size      *string `json:"taille"`
	Color     string  `json:"couleur"`
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a Command for the given actor. Guests place orders without a customer id.
func BuildCommand(actor core.Actor, lines []Line, occurredAt time.Time) Command {
	command := Command{
		Lines:      lines,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}

	if !actor.IsGuest() && !actor.IsAdmin() {
		id := actor.ID
		command.CustomerID = &id
	}

	return command
}

func (c Command) lineItems() []core.LineItem {
	items := make([]core.LineItem, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, core.LineItem{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Size:      l.Size,
			Color:     l.Color,
		})
	}

	return items
}

func (c Command) productIDs() []int64 {
	ids := make([]int64, 0, len(c.Lines))
	for _, l := range c.Lines {
		ids = append(ids, l.ProductID)
	}

	return ids
}
