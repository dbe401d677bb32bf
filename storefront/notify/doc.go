// Package notify relays outbox notifications to the notification sink.
//
// Order changes write their notifications to the outbox in the same transaction as the change.
// The Relay polls the outbox, hands each record to a Dispatcher, and records the outcome.
// A failed record is retried on later polls with exponential backoff and abandoned after a
// configured number of attempts; the committed order state is never touched by a dispatch failure.
//
// The Relay keeps its backoff schedule in memory and must run as a single instance per database.
package notify
