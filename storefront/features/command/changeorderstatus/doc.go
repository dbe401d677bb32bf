// Package changeorderstatus implements status transitions requested by customers and admins.
//
// The handler reads the order, lets the core decide against the transition policy, and writes the
// change as a compare-and-swap on the status it read, together with the outbox notifications.
// A concurrent change makes the write fail with orderstore.ErrStateConflict; with
// WithConflictRetry the whole read-decide-write cycle is repeated.
package changeorderstatus
