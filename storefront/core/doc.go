// Package core contains the pure order lifecycle rules of the storefront:
// order and article snapshots, the status transition policy per actor role,
// and the Decide functions for placing, transitioning, quick-confirming, and removing orders.
//
// Nothing in this package performs I/O. Decide functions take the current order state and a command
// and return a DecisionResult that the shell persists together with the notifications it carries.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core
