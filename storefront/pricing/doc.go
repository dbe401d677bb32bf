// Package pricing provides the static delivery tariff table: per-wilaya fees by delivery method and speed.
//
// The default table is embedded from tariffs.yaml and loaded once. Lookups are pure and safe for concurrent use.
package pricing
