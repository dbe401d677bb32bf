// Package observable decorates storefront command and query handlers with metrics, tracing, and logging.
//
// The wrappers delegate all business logic to the wrapped handler and translate its
// HandlerResult and error into observability signals.
package observable
