// Package sqlengine provides the relational implementation of the order store.
//
// The store builds its SQL with goqu and runs it through an adapter that hides the connection
// library (pgx.Pool, sql.DB, sqlx.DB). PostgreSQL is the production target; SQLite (modernc.org/sqlite)
// serves local development and tests with the same schema and semantics.
//
// Writes are transactional: an order header, its article snapshots, and the outbox notifications caused
// by the change are committed together or not at all. Status changes are compare-and-swap updates guarded
// by the expected prior status, so concurrent transitions on one order never silently overwrite each other.
package sqlengine
