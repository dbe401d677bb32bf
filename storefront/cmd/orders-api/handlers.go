package main

import (
	"fmt"

	"github.com/AntonStoeckl/storefront-orders/orderstore/sqlengine"
	"github.com/AntonStoeckl/storefront-orders/storefront/catalog"
	"github.com/AntonStoeckl/storefront-orders/storefront/core"
	"github.com/AntonStoeckl/storefront-orders/storefront/features/command/changeorderstatus"
	"github.com/AntonStoeckl/storefront-orders/storefront/features/command/confirmorder"
	"github.com/AntonStoeckl/storefront-orders/storefront/features/command/placeorder"
	"github.com/AntonStoeckl/storefront-orders/storefront/features/command/removecancelledorder"
	"github.com/AntonStoeckl/storefront-orders/storefront/features/query/allorders"
	"github.com/AntonStoeckl/storefront-orders/storefront/features/query/customerorders"
	"github.com/AntonStoeckl/storefront-orders/storefront/features/query/orderbyid"
	"github.com/AntonStoeckl/storefront-orders/storefront/httpapi"
	"github.com/AntonStoeckl/storefront-orders/storefront/invoicestore"
	"github.com/AntonStoeckl/storefront-orders/storefront/pricing"
	"github.com/AntonStoeckl/storefront-orders/storefront/shell"
	"github.com/AntonStoeckl/storefront-orders/storefront/shell/config"
	"github.com/AntonStoeckl/storefront-orders/storefront/shell/observable"
)

// buildHandlers creates the feature handlers and wraps each one with the configured observability.
// It also returns the directory the invoices are stored in.
func buildHandlers(
	cfg config.Config,
	store sqlengine.OrderStore,
	products catalog.ProductReader,
	table *pricing.Table,
	obs *observability,
) (httpapi.Handlers, string, error) {

	invoices, err := invoicestore.NewLocalStorage(
		cfg.Invoices.Directory,
		cfg.Invoices.PublicBaseURL,
		invoicestore.WithMaxBytes(cfg.HTTP.MaxUploadBytes),
		invoicestore.WithLogger(obs.logger),
	)
	if err != nil {
		return httpapi.Handlers{}, "", fmt.Errorf("preparing invoice storage: %w", err)
	}

	recipients := shell.Recipients{AdminEmail: cfg.Notifications.AdminEmail}

	placeOrder, err := wrapCommand[placeorder.Command, core.Order](
		placeorder.NewCommandHandler(
			store, products, table, recipients,
			placeorder.WithInvoiceStorage(invoices),
			placeorder.WithLogger(obs.logger),
			placeorder.WithContextualLogger(obs.contextualLogger),
		),
		obs,
	)
	if err != nil {
		return httpapi.Handlers{}, "", err
	}

	changeStatus, err := wrapCommand[changeorderstatus.Command, core.Order](
		changeorderstatus.NewCommandHandler(store, recipients),
		obs,
	)
	if err != nil {
		return httpapi.Handlers{}, "", err
	}

	confirm, err := wrapCommand[confirmorder.Command, core.Order](
		confirmorder.NewCommandHandler(store, recipients),
		obs,
	)
	if err != nil {
		return httpapi.Handlers{}, "", err
	}

	remove, err := wrapCommand[removecancelledorder.Command, core.Order](
		removecancelledorder.NewCommandHandler(store),
		obs,
	)
	if err != nil {
		return httpapi.Handlers{}, "", err
	}

	byID, err := wrapQuery[orderbyid.Query, core.Order](orderbyid.NewQueryHandler(store), obs)
	if err != nil {
		return httpapi.Handlers{}, "", err
	}

	customerOrders, err := wrapQuery[customerorders.Query, shell.OrderList](customerorders.NewQueryHandler(store), obs)
	if err != nil {
		return httpapi.Handlers{}, "", err
	}

	allOrders, err := wrapQuery[allorders.Query, shell.OrderList](allorders.NewQueryHandler(store), obs)
	if err != nil {
		return httpapi.Handlers{}, "", err
	}

	return httpapi.Handlers{
		PlaceOrder:           placeOrder,
		ChangeOrderStatus:    changeStatus,
		ConfirmOrder:         confirm,
		RemoveCancelledOrder: remove,
		OrderByID:            byID,
		CustomerOrders:       customerOrders,
		AllOrders:            allOrders,
	}, invoices.Dir(), nil
}

func wrapCommand[C shell.Command, R any](handler shell.CommandHandler[C, R], obs *observability) (*observable.CommandWrapper[C, R], error) {
	wrapper, err := observable.NewCommandWrapper[C, R](
		handler,
		observable.WithCommandLogging[C, R](obs.logger),
		observable.WithCommandContextualLogging[C, R](obs.contextualLogger),
		observable.WithCommandMetrics[C, R](obs.metrics),
		observable.WithCommandTracing[C, R](obs.tracing),
	)
	if err != nil {
		var zero C
		return nil, fmt.Errorf("wrapping %s handler: %w", zero.CommandType(), err)
	}

	return wrapper, nil
}

func wrapQuery[Q shell.Query, R any](handler shell.QueryHandler[Q, R], obs *observability) (*observable.QueryWrapper[Q, R], error) {
	wrapper, err := observable.NewQueryWrapper[Q, R](
		handler,
		observable.WithQueryLogging[Q, R](obs.logger),
		observable.WithQueryContextualLogging[Q, R](obs.contextualLogger),
		observable.WithQueryMetrics[Q, R](obs.metrics),
		observable.WithQueryTracing[Q, R](obs.tracing),
	)
	if err != nil {
		var zero Q
		return nil, fmt.Errorf("wrapping %s handler: %w", zero.QueryType(), err)
	}

	return wrapper, nil
}
