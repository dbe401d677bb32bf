package sqlengine

import (
	"github.com/AntonStoeckl/storefront-orders/orderstore"
)

// Option defines a functional option for configuring OrderStore.
type Option func(*OrderStore) error

// WithTableNames sets the table names for orders, article snapshots, and outbox notifications.
func WithTableNames(ordersTable, articlesTable, notificationsTable string) Option {
	return func(s *OrderStore) error {
		if ordersTable == "" || articlesTable == "" || notificationsTable == "" {
			return orderstore.ErrEmptyTableNameSupplied
		}

		s.ordersTable = ordersTable
		s.articlesTable = articlesTable
		s.notificationsTable = notificationsTable

		return nil
	}
}

// WithLogger sets the logger for the OrderStore.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: orders created, status changes, state conflicts (production-safe)
// Warn level: Non-critical issues like rollback or cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger orderstore.Logger) Option {
	return func(s *OrderStore) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the OrderStore.
// Log records then carry trace/span correlation when tracing is enabled.
func WithContextualLogger(logger orderstore.ContextualLogger) Option {
	return func(s *OrderStore) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the OrderStore.
// It receives operation durations, database errors, and state conflicts.
func WithMetrics(collector orderstore.MetricsCollector) Option {
	return func(s *OrderStore) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the OrderStore.
func WithTracing(collector orderstore.TracingCollector) Option {
	return func(s *OrderStore) error {
		s.tracingCollector = collector
		return nil
	}
}
