// Package oteladapters implements the orderstore observability interfaces with OpenTelemetry,
// so an OrderStore and the storefront command handlers can report to any OTel backend:
//   - SlogBridgeLogger and OTelLogger for orderstore.Logger / orderstore.ContextualLogger
//   - MetricsCollector for orderstore.ContextualMetricsCollector
//   - TracingCollector for orderstore.TracingCollector
package oteladapters
