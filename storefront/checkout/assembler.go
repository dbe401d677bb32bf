package checkout

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
	"github.com/AntonStoeckl/storefront-orders/storefront/cart"
	"github.com/AntonStoeckl/storefront-orders/storefront/core"
	"github.com/AntonStoeckl/storefront-orders/storefront/shell"
)

const (
	logMsgInvoiceRendered = "checkout: invoice rendered"
	logMsgInvoiceFailed   = "checkout: invoice rendering failed"

	logAttrBytes = "bytes"
	logAttrError = "error"
)

var (
	// ErrEmptyCart is returned when checking out a cart without lines.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrRenderingInvoiceFailed is returned when the invoice renderer fails; nothing is submitted then.
	ErrRenderingInvoiceFailed = errors.New("rendering the invoice failed")
)

// CustomerInfo is the contact data typed into the checkout form.
type CustomerInfo struct {
	FullName string  `json:"nom_complet" validate:"required,max=200"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    string  `json:"telephone" validate:"required,min=9,max=20"`
	Address  string  `json:"adresse" validate:"required,max=500"`
	City     string  `json:"ville" validate:"max=100"`
	Notes    *string `json:"notes" validate:"omitempty,max=2000"`
}

// DeliveryChoice is the selected wilaya, method, and speed.
type DeliveryChoice struct {
	Region string `json:"wilaya" validate:"required"`
	Method string `json:"methode_livraison" validate:"required,oneof=domicile bureau_a bureau_b"`
	Speed  string `json:"vitesse_livraison" validate:"required,oneof=express economique"`
}

// LineItem is one cart line as sent to the order API.
type LineItem struct {
	ProductID int64   `json:"produit_id"`
	Quantity  int     `json:"quantite"`
	UnitPrice int64   `json:"prix_unitaire"`
	Size      *string `json:"taille"`
	Color     string  `json:"couleur"`
}

// Document is a rendered invoice ready for upload.
type Document struct {
	FileName string
	Content  []byte
}

// Submission is the complete order payload built from a cart.
type Submission struct {
	Customer    CustomerInfo
	Region      string
	Method      core.Method
	Speed       core.Speed
	Lines       []LineItem
	Subtotal    int64
	DeliveryFee int64
	Total       int64
	Invoice     *Document
}

// FeeTable is the part of the pricing table the assembler needs.
type FeeTable interface {
	IsRegionAvailable(region string) bool
	Fee(region string, method core.Method, speed core.Speed) (int64, bool)
}

// InvoiceRenderer produces the PDF invoice attached to a submission.
type InvoiceRenderer interface {
	Render(ctx context.Context, submission Submission) (Document, error)
}

// Assembler builds submissions. Without a renderer, submissions carry no invoice.
type Assembler struct {
	fees     FeeTable
	renderer InvoiceRenderer
	logger   orderstore.Logger
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithInvoiceRenderer attaches a rendered invoice to every submission.
func WithInvoiceRenderer(renderer InvoiceRenderer) AssemblerOption {
	return func(a *Assembler) {
		a.renderer = renderer
	}
}

// WithAssemblerLogger sets the logger.
func WithAssemblerLogger(logger orderstore.Logger) AssemblerOption {
	return func(a *Assembler) {
		a.logger = logger
	}
}

// NewAssembler creates an Assembler over the given fee table.
func NewAssembler(fees FeeTable, opts ...AssemblerOption) Assembler {
	a := Assembler{fees: fees}

	for _, opt := range opts {
		opt(&a)
	}

	return a
}

// Assemble validates the checkout input and builds the submission.
func (a Assembler) Assemble(ctx context.Context, c *cart.Cart, customer CustomerInfo, delivery DeliveryChoice) (Submission, error) {
	if c == nil || c.IsEmpty() {
		return Submission{}, ErrEmptyCart
	}

	if err := validateInput(customer, delivery); err != nil {
		return Submission{}, err
	}

	method, _ := core.ParseMethod(delivery.Method)
	speed, _ := core.ParseSpeed(delivery.Speed)

	if !a.fees.IsRegionAvailable(delivery.Region) {
		return Submission{}, core.ErrDeliveryUnavailable
	}

	fee, ok := a.fees.Fee(delivery.Region, method, speed)
	if !ok {
		return Submission{}, core.ErrDeliveryUnavailable
	}

	subtotal := c.TotalPrice()

	submission := Submission{
		Customer:    customer,
		Region:      delivery.Region,
		Method:      method,
		Speed:       speed,
		Lines:       lineItemsFrom(c.Lines()),
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal + fee,
	}

	if a.renderer == nil {
		return submission, nil
	}

	document, err := a.renderer.Render(ctx, submission)
	if err != nil {
		if a.logger != nil {
			a.logger.Warn(logMsgInvoiceFailed, logAttrError, err.Error())
		}

		return Submission{}, errors.Join(ErrRenderingInvoiceFailed, err)
	}

	if a.logger != nil {
		a.logger.Debug(logMsgInvoiceRendered, logAttrBytes, len(document.Content))
	}

	submission.Invoice = &document

	return submission, nil
}

// validateInput checks both structs and merges their field errors into one ValidationError.
func validateInput(customer CustomerInfo, delivery DeliveryChoice) error {
	merged := core.NewValidationError()

	for _, input := range []any{customer, delivery} {
		err := shell.ValidateStruct(input)
		if err == nil {
			continue
		}

		var verr *core.ValidationError
		if !errors.As(err, &verr) {
			return err
		}

		for field, msg := range verr.Fields {
			merged.Add(field, msg)
		}
	}

	return merged.OrNil()
}

func lineItemsFrom(lines []cart.Line) []LineItem {
	items := make([]LineItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, LineItem{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Size:      l.Size,
			Color:     l.Color,
		})
	}

	return items
}
