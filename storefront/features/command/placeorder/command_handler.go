package placeorder

import (
	"context"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
	"github.com/AntonStoeckl/storefront-orders/storefront/catalog"
	"github.com/AntonStoeckl/storefront-orders/storefront/core"
	"github.com/AntonStoeckl/storefront-orders/storefront/invoicestore"
	"github.com/AntonStoeckl/storefront-orders/storefront/shell"
)

const (
	logMsgInvoiceUploadFailed = "invoice upload failed, order is created without invoice"
	logMsgPriceDeviation      = "unit price differs from catalog price"
	logAttrOrderID            = "order_id"
	logAttrProductID          = "product_id"
	logAttrUnitPrice          = "unit_price"
	logAttrCatalogPrice       = "catalog_price"
	logAttrError              = "error"
)

// OrderStore defines the interface needed by the CommandHandler to persist a new order.
type OrderStore interface {
	Create(ctx context.Context, order orderstore.StorableOrder, notifications ...orderstore.StorableNotification) error
}

// DeliveryPricing quotes the delivery fee of a region, method, and speed.
type DeliveryPricing interface {
	Quote(region string, method core.Method, speed core.Speed) core.DeliveryQuote
}

// CommandHandler orchestrates the workflow: Validate -> Read stock -> Decide -> Store invoice -> Create.
type CommandHandler struct {
	orderStore       OrderStore
	products         catalog.ProductReader
	pricing          DeliveryPricing
	invoices         invoicestore.FileStorage
	recipients       shell.Recipients
	logger           shell.Logger
	contextualLogger shell.ContextualLogger
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithInvoiceStorage enables storing invoices attached to the command.
// Without it attached invoices are ignored.
func WithInvoiceStorage(storage invoicestore.FileStorage) Option {
	return func(h *CommandHandler) {
		h.invoices = storage
	}
}

// WithLogger sets the logger used for collaborator failures that do not fail the command.
func WithLogger(logger shell.Logger) Option {
	return func(h *CommandHandler) {
		h.logger = logger
	}
}

// WithContextualLogger is the context-aware variant of WithLogger.
func WithContextualLogger(logger shell.ContextualLogger) Option {
	return func(h *CommandHandler) {
		h.contextualLogger = logger
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(
	orderStore OrderStore,
	products catalog.ProductReader,
	pricing DeliveryPricing,
	recipients shell.Recipients,
	opts ...Option,
) CommandHandler {

	handler := CommandHandler{
		orderStore: orderStore,
		products:   products,
		pricing:    pricing,
		recipients: recipients,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle places the order and returns it as persisted.
// Creating a new row cannot conflict, so the command runs exactly once.
func (h CommandHandler) Handle(ctx context.Context, command Command) (core.Order, shell.HandlerResult, error) {
	var order core.Order

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(ctx context.Context) error {
		placed, execErr := h.executeCommand(ctx, command)
		order = placed

		return execErr
	})

	if err != nil {
		return core.Order{}, shell.NewErrorResult(retryMetrics), err
	}

	return order, shell.NewSuccessResult(retryMetrics), nil
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command) (core.Order, error) {
	// Validation phase
	if err := shell.ValidateStruct(command); err != nil {
		return core.Order{}, err
	}

	method, _ := core.ParseMethod(command.Method)
	speed, _ := core.ParseSpeed(command.Speed)

	// Read phase
	stock, err := catalog.StockByID(ctx, h.products, command.productIDs())
	if err != nil {
		return core.Order{}, err
	}

	quote := h.pricing.Quote(command.Region, method, speed)

	orderID, err := uuid.NewV7()
	if err != nil {
		return core.Order{}, err
	}

	// Business logic phase - delegate to pure core function
	result := core.DecidePlacement(
		core.PlacementRequest{
			OrderID:    orderID,
			CustomerID: command.CustomerID,
			Contact: core.Contact{
				FullName: command.FullName,
				Email:    command.Email,
				Phone:    command.Phone,
				Address:  command.Address,
				City:     command.City,
				Region:   command.Region,
			},
			Method:           method,
			Speed:            speed,
			Lines:            command.lineItems(),
			DeclaredSubtotal: command.DeclaredSubtotal,
			Notes:            command.Notes,
			OccurredAt:       command.OccurredAt,
		},
		stock,
		quote,
	)

	if decisionErr := result.HasError(); decisionErr != nil {
		return core.Order{}, decisionErr
	}

	order := result.Order
	notifications := result.Notifications

	for _, deviation := range core.PriceDeviations(command.lineItems(), stock) {
		h.logWarn(
			ctx,
			logMsgPriceDeviation,
			logAttrOrderID, order.ID.String(),
			logAttrProductID, deviation.ProductID,
			logAttrUnitPrice, deviation.UnitPrice,
			logAttrCatalogPrice, deviation.CatalogPrice,
		)
	}

	// Invoice phase - only after the order was accepted, failures never block the order
	if url, stored := h.storeInvoice(ctx, order.ID, command); stored {
		order.InvoiceURL = &url
		notifications = core.NotificationsForCreation(order)
	}

	// Persist phase
	storableNotifications, err := shell.StorableNotificationsFrom(notifications, order, h.recipients)
	if err != nil {
		return core.Order{}, err
	}

	if err = h.orderStore.Create(ctx, shell.StorableOrderFrom(order), storableNotifications...); err != nil {
		return core.Order{}, err
	}

	return order, nil
}

func (h CommandHandler) storeInvoice(ctx context.Context, orderID uuid.UUID, command Command) (string, bool) {
	if h.invoices == nil || command.Invoice == nil {
		return "", false
	}

	url, err := h.invoices.Store(ctx, orderID.String(), command.Invoice)
	if err != nil {
		h.logWarn(ctx, logMsgInvoiceUploadFailed, logAttrOrderID, orderID.String(), logAttrError, err.Error())
		return "", false
	}

	return url, true
}

func (h CommandHandler) logWarn(ctx context.Context, msg string, args ...any) {
	if h.contextualLogger != nil {
		h.contextualLogger.WarnContext(ctx, msg, args...)
		return
	}

	if h.logger != nil {
		h.logger.Warn(msg, args...)
	}
}
