// Package orderstore provides the core abstractions and types for persisting storefront orders.
//
// This package defines the scalar DTOs exchanged with the storage engines, the pagination types,
// the observability interfaces and the common error definitions shared by all engine implementations.
//
// Key types:
//   - StorableOrder: an order header with its immutable article snapshots
//   - StatusUpdate: a compare-and-swap status change of one order
//   - StorableNotification: an outbox record written in the same transaction as the order change
//   - Page / OrderPage: pagination request and result
//
// Common usage pattern:
//
//	order := orderstore.StorableOrder{ID: id, Status: "en_attente", Articles: articles, ...}
//	err := store.Create(ctx, order, notifications...)
//
//	err = store.UpdateStatus(ctx, orderstore.StatusUpdate{
//		OrderID:        id,
//		ExpectedStatus: "en_attente",
//		NewStatus:      "annulee",
//		UpdatedAt:      time.Now(),
//	})
//	if errors.Is(err, orderstore.ErrStateConflict) {
//		// re-read the order and decide again
//	}
package orderstore
