package core

import (
	"time"

	"github.com/google/uuid"
)

// Order is an order with its contact snapshot, pricing, lifecycle fields, and frozen article lines.
type Order struct {
	ID               uuid.UUID
	CustomerID       *string
	Contact          Contact
	Method           Method
	Speed            Speed
	Subtotal         int64
	DeliveryFee      int64
	Total            int64
	DeclaredSubtotal *int64
	Status           Status
	TrackingNumber   *string
	Notes            *string
	InvoiceURL       *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeliveredAt      *time.Time
	Articles         []ArticleSnapshot
}

// Contact is the customer data copied into the order, independent of any live profile.
type Contact struct {
	FullName string
	Email    string
	Phone    string
	Address  string
	City     string
	Region   string
}

// ArticleSnapshot is one purchased line, frozen at order creation.
type ArticleSnapshot struct {
	ProductID    int64
	ProductName  string
	UnitPrice    int64
	Quantity     int
	Size         *string
	Color        string
	LineSubtotal int64
}

// BuildArticleSnapshot computes the line subtotal from unit price and quantity.
func BuildArticleSnapshot(productID int64, productName string, unitPrice int64, quantity int, size *string, color string) ArticleSnapshot {
	return ArticleSnapshot{
		ProductID:    productID,
		ProductName:  productName,
		UnitPrice:    unitPrice,
		Quantity:     quantity,
		Size:         size,
		Color:        color,
		LineSubtotal: unitPrice * int64(quantity),
	}
}

// IsGuestOrder reports whether the order was placed without a customer account.
func (o Order) IsGuestOrder() bool {
	return o.CustomerID == nil
}

// IsOwnedBy reports whether the actor is the customer linked to the order.
func (o Order) IsOwnedBy(actor Actor) bool {
	return !actor.IsGuest() && o.CustomerID != nil && *o.CustomerID == actor.ID
}

// ArticleCount returns the number of units over all lines.
func (o Order) ArticleCount() int {
	count := 0
	for _, a := range o.Articles {
		count += a.Quantity
	}

	return count
}

// CanBeViewedBy applies the read rule: admins, the owner, and anyone for guest orders.
func (o Order) CanBeViewedBy(actor Actor) error {
	if actor.IsAdmin() || o.IsGuestOrder() || o.IsOwnedBy(actor) {
		return nil
	}

	return ErrNotOrderOwner
}

// StatusChange is the mutation a successful transition decision applies to an order.
type StatusChange struct {
	OrderID        uuid.UUID
	From           Status
	To             Status
	TrackingNumber *string
	Notes          *string
	DeliveredAt    *time.Time
	OccurredAt     OccurredAt
}

// ApplyTo returns the order as it looks after the change.
func (c StatusChange) ApplyTo(order Order) Order {
	order.Status = c.To
	order.TrackingNumber = c.TrackingNumber
	order.Notes = c.Notes
	order.DeliveredAt = c.DeliveredAt
	order.UpdatedAt = c.OccurredAt

	return order
}
