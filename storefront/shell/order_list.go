package shell

import (
	"github.com/AntonStoeckl/storefront-orders/orderstore"
	"github.com/AntonStoeckl/storefront-orders/storefront/core"
)

// OrderList is one page of orders as returned by the listing queries.
type OrderList struct {
	Orders     []core.Order
	Page       int
	PageSize   int
	TotalCount int
	TotalPages int

	// CountsByStatus holds every status, zero included; it is nil for per-customer listings.
	CountsByStatus map[core.Status]int
}

// OrderListFrom converts a page read from the store.
func OrderListFrom(page orderstore.OrderPage) (OrderList, error) {
	orders, err := OrdersFrom(page.Orders)
	if err != nil {
		return OrderList{}, err
	}

	list := OrderList{
		Orders:     orders,
		Page:       page.Page.Number,
		PageSize:   page.Page.Size,
		TotalCount: page.TotalCount,
		TotalPages: page.TotalPages(),
	}

	if page.CountsByStatus != nil {
		list.CountsByStatus = make(map[core.Status]int, len(core.AllStatuses()))
		for _, status := range core.AllStatuses() {
			list.CountsByStatus[status] = page.CountsByStatus[string(status)]
		}
	}

	return list, nil
}
