package orderstore

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidStorableOrder = errors.New("invalid storable order")

// StorableOrder is a DTO used by the OrderStore to persist an order header together with its article snapshots.
//
// It is built on scalars to be agnostic of the domain types of the client code.
// Status, DeliveryMethod, and DeliverySpeed hold the wire values (e.g. "en_attente", "domicile", "express").
type StorableOrder struct {
	ID               string
	CustomerID       *string
	FullName         string
	Email            string
	Phone            string
	Address          string
	City             string
	Region           string
	DeliveryMethod   string
	DeliverySpeed    string
	Subtotal         int64
	DeliveryFee      int64
	Total            int64
	DeclaredSubtotal *int64
	Status           string
	TrackingNumber   *string
	Notes            *string
	InvoiceURL       *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeliveredAt      *time.Time
	Articles         []StorableArticle
}

// StorableArticle is the immutable copy of one purchased line, frozen at order creation.
type StorableArticle struct {
	ProductID    int64
	ProductName  string
	UnitPrice    int64
	Quantity     int
	Size         *string
	Color        string
	LineSubtotal int64
}

// Validate checks the structural invariants every persisted order must satisfy:
// at least one article, positive quantities, line subtotals equal to price times quantity,
// and a subtotal equal to the sum of the line subtotals.
func (o StorableOrder) Validate() error {
	if o.ID == "" {
		return errors.Join(ErrInvalidStorableOrder, errors.New("id is empty"))
	}

	if o.Status == "" {
		return errors.Join(ErrInvalidStorableOrder, errors.New("status is empty"))
	}

	if len(o.Articles) == 0 {
		return errors.Join(ErrInvalidStorableOrder, errors.New("order has no articles"))
	}

	var sum int64

	for i, article := range o.Articles {
		if article.Quantity <= 0 {
			return errors.Join(ErrInvalidStorableOrder, fmt.Errorf("article %d has a non-positive quantity", i))
		}

		if article.LineSubtotal != article.UnitPrice*int64(article.Quantity) {
			return errors.Join(ErrInvalidStorableOrder, fmt.Errorf("article %d line subtotal does not match price times quantity", i))
		}

		sum += article.LineSubtotal
	}

	if o.Subtotal != sum {
		return errors.Join(ErrInvalidStorableOrder, errors.New("subtotal does not match the sum of the line subtotals"))
	}

	if o.Total != o.Subtotal+o.DeliveryFee {
		return errors.Join(ErrInvalidStorableOrder, errors.New("total does not match subtotal plus delivery fee"))
	}

	return nil
}

// StatusUpdate describes a compare-and-swap change of one order's mutable fields.
//
// The update only applies if the persisted status still equals ExpectedStatus.
// TrackingNumber, Notes, and DeliveredAt are written as given (nil clears the column).
type StatusUpdate struct {
	OrderID        string
	ExpectedStatus string
	NewStatus      string
	TrackingNumber *string
	Notes          *string
	DeliveredAt    *time.Time
	UpdatedAt      time.Time
}
