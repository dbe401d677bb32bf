// Package shell translates between the pure order core and the persistence edge of the storefront,
// and carries the shared handler plumbing: handler results, conflict retry, and observability helpers.
//
// This package implements the "imperative shell" pattern around the functional core in storefront/core.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'infrastructure' layer.
package shell
