// Package config loads the storefront service configuration and builds the configured infrastructure:
// database connection pools for the supported drivers and the OpenTelemetry providers.
//
// Configuration is read from an optional YAML file and then overridden by STOREFRONT_* environment
// variables, so containers can run without a file at all.
package config
