// Package adapters provide database adapter implementations for the SQL order store.
//
// This package implements the adapter pattern to support multiple database libraries:
// pgx.Pool, sql.DB, and sqlx.DB. The sql.DB adapter also serves SQLite connections.
// All adapters provide equivalent functionality through a common DBAdapter interface,
// including transactions, so the order store works with any supported connection type.
package adapters
