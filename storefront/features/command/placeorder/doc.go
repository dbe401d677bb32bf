// Package placeorder implements the "place order" use case.
//
// It validates the order form, reads current stock from the catalog, prices delivery from the
// tariff table, decides the new pending order in the core, stores an attached invoice, and
// persists order, article snapshots, and creation notifications in one transaction.
//
// Subtotal and delivery fee are always recomputed on the server; the subtotal sent by the
// client is kept only as the declared subtotal.
package placeorder
