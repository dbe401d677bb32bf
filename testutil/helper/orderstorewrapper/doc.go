// Package orderstorewrapper builds an OrderStore for tests on top of the database selected by ADAPTER_TYPE.
//
// ADAPTER_TYPE "" or "sqlite" uses an in-memory SQLite database. "pgxpool", "sqldb", and "sqlx" use the
// PostgreSQL database named by STOREFRONT_TEST_POSTGRES_DSN; tests are skipped when it is not set.
package orderstorewrapper
