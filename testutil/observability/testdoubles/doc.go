// Package testdoubles provides spies for the observability interfaces of the order store and
// the storefront command handlers:
//   - LoggerSpy: captures plain and contextual log calls
//   - MetricsCollectorSpy: captures durations, counters, and values
//   - TracingCollectorSpy: captures started and finished spans
package testdoubles
