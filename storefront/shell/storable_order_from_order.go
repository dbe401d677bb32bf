package shell

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
	"github.com/AntonStoeckl/storefront-orders/storefront/core"
)

// StorableOrderFrom converts a core order to the persistence DTO.
func StorableOrderFrom(order core.Order) orderstore.StorableOrder {
	articles := make([]orderstore.StorableArticle, 0, len(order.Articles))
	for _, a := range order.Articles {
		articles = append(articles, orderstore.StorableArticle{
			ProductID:    a.ProductID,
			ProductName:  a.ProductName,
			UnitPrice:    a.UnitPrice,
			Quantity:     a.Quantity,
			Size:         a.Size,
			Color:        a.Color,
			LineSubtotal: a.LineSubtotal,
		})
	}

	return orderstore.StorableOrder{
		ID:               order.ID.String(),
		CustomerID:       order.CustomerID,
		FullName:         order.Contact.FullName,
		Email:            order.Contact.Email,
		Phone:            order.Contact.Phone,
		Address:          order.Contact.Address,
		City:             order.Contact.City,
		Region:           order.Contact.Region,
		DeliveryMethod:   string(order.Method),
		DeliverySpeed:    string(order.Speed),
		Subtotal:         order.Subtotal,
		DeliveryFee:      order.DeliveryFee,
		Total:            order.Total,
		DeclaredSubtotal: order.DeclaredSubtotal,
		Status:           string(order.Status),
		TrackingNumber:   order.TrackingNumber,
		Notes:            order.Notes,
		InvoiceURL:       order.InvoiceURL,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
		DeliveredAt:      order.DeliveredAt,
		Articles:         articles,
	}
}

// StatusUpdateFrom converts a core status change to the compare-and-swap DTO of the store.
func StatusUpdateFrom(change core.StatusChange) orderstore.StatusUpdate {
	return orderstore.StatusUpdate{
		OrderID:        change.OrderID.String(),
		ExpectedStatus: string(change.From),
		NewStatus:      string(change.To),
		TrackingNumber: change.TrackingNumber,
		Notes:          change.Notes,
		DeliveredAt:    change.DeliveredAt,
		UpdatedAt:      change.OccurredAt,
	}
}

// OrderFrom converts a persisted order back to the core type.
// It returns ErrInvalidPersistedOrder for unknown ids, statuses, methods, or speeds.
func OrderFrom(stored orderstore.StorableOrder) (core.Order, error) {
	id, err := uuid.Parse(stored.ID)
	if err != nil {
		return core.Order{}, errors.Join(ErrInvalidPersistedOrder, fmt.Errorf("order id %q: %w", stored.ID, err))
	}

	status, ok := core.ParseStatus(stored.Status)
	if !ok {
		return core.Order{}, errors.Join(ErrInvalidPersistedOrder, fmt.Errorf("order %s has unknown status %q", stored.ID, stored.Status))
	}

	method, ok := core.ParseMethod(stored.DeliveryMethod)
	if !ok {
		return core.Order{}, errors.Join(ErrInvalidPersistedOrder, fmt.Errorf("order %s has unknown delivery method %q", stored.ID, stored.DeliveryMethod))
	}

	speed, ok := core.ParseSpeed(stored.DeliverySpeed)
	if !ok {
		return core.Order{}, errors.Join(ErrInvalidPersistedOrder, fmt.Errorf("order %s has unknown delivery speed %q", stored.ID, stored.DeliverySpeed))
	}

	articles := make([]core.ArticleSnapshot, 0, len(stored.Articles))
	for _, a := range stored.Articles {
		articles = append(articles, core.ArticleSnapshot{
			ProductID:    a.ProductID,
			ProductName:  a.ProductName,
			UnitPrice:    a.UnitPrice,
			Quantity:     a.Quantity,
			Size:         a.Size,
			Color:        a.Color,
			LineSubtotal: a.LineSubtotal,
		})
	}

	return core.Order{
		ID:         id,
		CustomerID: stored.CustomerID,
		Contact: core.Contact{
			FullName: stored.FullName,
			Email:    stored.Email,
			Phone:    stored.Phone,
			Address:  stored.Address,
			City:     stored.City,
			Region:   stored.Region,
		},
		Method:           method,
		Speed:            speed,
		Subtotal:         stored.Subtotal,
		DeliveryFee:      stored.DeliveryFee,
		Total:            stored.Total,
		DeclaredSubtotal: stored.DeclaredSubtotal,
		Status:           status,
		TrackingNumber:   stored.TrackingNumber,
		Notes:            stored.Notes,
		InvoiceURL:       stored.InvoiceURL,
		CreatedAt:        stored.CreatedAt,
		UpdatedAt:        stored.UpdatedAt,
		DeliveredAt:      stored.DeliveredAt,
		Articles:         articles,
	}, nil
}

// OrdersFrom converts a slice of persisted orders, failing on the first invalid one.
func OrdersFrom(stored []orderstore.StorableOrder) ([]core.Order, error) {
	orders := make([]core.Order, 0, len(stored))

	for _, s := range stored {
		order, err := OrderFrom(s)
		if err != nil {
			return nil, err
		}

		orders = append(orders, order)
	}

	return orders, nil
}
