package core

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// PlacementRequest is the validated intent to place an order.
type PlacementRequest struct {
	OrderID          uuid.UUID
	CustomerID       *string
	Contact          Contact
	Method           Method
	Speed            Speed
	Lines            []LineItem
	DeclaredSubtotal *int64
	Notes            *string
	InvoiceURL       *string
	OccurredAt       OccurredAt
}

// LineItem is one requested line; UnitPrice is the price frozen in the cart.
type LineItem struct {
	ProductID int64
	Quantity  int
	UnitPrice int64
	Size      *string
	Color     string
}

// ProductStock is what the placement decision needs to know about a catalog product.
// CatalogPrice is the price the catalog charges now, promotions applied.
type ProductStock struct {
	ProductID    int64
	Name         string
	Stock        int
	OutOfStock   bool
	CatalogPrice int64
}

// PriceDeviation is a line whose frozen cart price differs from the current catalog price.
type PriceDeviation struct {
	ProductID    int64
	UnitPrice    int64
	CatalogPrice int64
}

// PriceDeviations lists the lines whose unit price differs from the catalog price of their product.
// The frozen price stays authoritative for the order; deviations are for reconciliation only.
// Lines of unknown products are skipped.
func PriceDeviations(lines []LineItem, products map[int64]ProductStock) []PriceDeviation {
	var deviations []PriceDeviation

	for _, line := range lines {
		product, known := products[line.ProductID]
		if !known || line.UnitPrice == product.CatalogPrice {
			continue
		}

		deviations = append(deviations, PriceDeviation{
			ProductID:    line.ProductID,
			UnitPrice:    line.UnitPrice,
			CatalogPrice: product.CatalogPrice,
		})
	}

	return deviations
}

// DeliveryQuote is the server-side fee for the requested region, method, and speed.
type DeliveryQuote struct {
	Fee       int64
	Available bool
}

// DecidePlacement builds a new pending order from the request.
//
// Business Rules:
//
//	GIVEN: a request with N lines, the current stock of the referenced products, and a delivery quote
//	THEN: a pending order with N article snapshots, subtotal = Σ unit price × quantity, total = subtotal + fee
//	ERROR: ErrValidation if there are no lines, a quantity is not positive, a price is negative,
//	       a product id is unknown, or the summed quantity of a product exceeds its stock
//	ERROR: ErrDeliveryUnavailable if the quote is unavailable
//
// The declared subtotal is kept as given and never used for totals.
func DecidePlacement(request PlacementRequest, products map[int64]ProductStock, quote DeliveryQuote) DecisionResult {
	verr := NewValidationError()

	if len(request.Lines) == 0 {
		verr.Add("articles", "at least one article is required")
		return ErrorDecision(verr)
	}

	requested := make(map[int64]int, len(request.Lines))
	articles := make([]ArticleSnapshot, 0, len(request.Lines))
	var subtotal int64

	for i, line := range request.Lines {
		field := fmt.Sprintf("articles[%d]", i)

		if line.Quantity <= 0 {
			verr.Add(field+".quantite", "quantity must be a positive integer")
			continue
		}

		if line.UnitPrice < 0 {
			verr.Add(field+".prix_unitaire", "unit price must not be negative")
			continue
		}

		product, known := products[line.ProductID]
		if !known {
			verr.Add(field+".produit_id", fmt.Sprintf("product %d does not exist", line.ProductID))
			continue
		}

		if product.OutOfStock {
			verr.Add(field+".quantite", fmt.Sprintf("product %d is out of stock", line.ProductID))
			continue
		}

		requested[line.ProductID] += line.Quantity
		if requested[line.ProductID] > product.Stock {
			verr.Add(field+".quantite", fmt.Sprintf("only %d left in stock for product %d", product.Stock, line.ProductID))
			continue
		}

		article := BuildArticleSnapshot(line.ProductID, product.Name, line.UnitPrice, line.Quantity, line.Size, line.Color)
		articles = append(articles, article)
		subtotal += article.LineSubtotal
	}

	if verr.HasFields() {
		return ErrorDecision(verr)
	}

	if !quote.Available {
		verr.Add("methode_livraison", "delivery is unavailable for this region, method, and speed")
		return ErrorDecision(errors.Join(ErrDeliveryUnavailable, verr))
	}

	order := Order{
		ID:               request.OrderID,
		CustomerID:       request.CustomerID,
		Contact:          request.Contact,
		Method:           request.Method,
		Speed:            request.Speed,
		Subtotal:         subtotal,
		DeliveryFee:      quote.Fee,
		Total:            subtotal + quote.Fee,
		DeclaredSubtotal: request.DeclaredSubtotal,
		Status:           StatusPending,
		Notes:            request.Notes,
		InvoiceURL:       request.InvoiceURL,
		CreatedAt:        request.OccurredAt,
		UpdatedAt:        request.OccurredAt,
		Articles:         articles,
	}

	return SuccessDecision(order, nil, NotificationsForCreation(order))
}
