package orderstorewrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/storefront-orders/orderstore/sqlengine"
	"github.com/AntonStoeckl/storefront-orders/storefront/shell/config"
)

const (
	typeSQLite  = "sqlite"
	typePGXPool = "pgxpool"
	typeSQLDB   = "sqldb"
	typeSQLX    = "sqlx"

	postgresDSNEnv = "STOREFRONT_TEST_POSTGRES_DSN"
)

// Wrapper abstracts over the different database handles an OrderStore can be built from.
type Wrapper interface {
	GetOrderStore() sqlengine.OrderStore
	Exec(t testing.TB, query string)
	Close()
}

// SQLiteWrapper wraps an in-memory SQLite database.
type SQLiteWrapper struct {
	db    *sql.DB
	store sqlengine.OrderStore
}

func (w *SQLiteWrapper) GetOrderStore() sqlengine.OrderStore { return w.store }

func (w *SQLiteWrapper) Exec(t testing.TB, query string) {
	_, err := w.db.Exec(query)
	require.NoError(t, err, "error executing raw sql in test setup")
}

func (w *SQLiteWrapper) Close() { _ = w.db.Close() }

// PGXPoolWrapper wraps pgxpool-based testing.
type PGXPoolWrapper struct {
	pool  *pgxpool.Pool
	store sqlengine.OrderStore
}

func (w *PGXPoolWrapper) GetOrderStore() sqlengine.OrderStore { return w.store }

func (w *PGXPoolWrapper) Exec(t testing.TB, query string) {
	_, err := w.pool.Exec(context.Background(), query)
	require.NoError(t, err, "error executing raw sql in test setup")
}

func (w *PGXPoolWrapper) Close() { w.pool.Close() }

// SQLDBWrapper wraps sql.DB-based testing on PostgreSQL.
type SQLDBWrapper struct {
	db    *sql.DB
	store sqlengine.OrderStore
}

func (w *SQLDBWrapper) GetOrderStore() sqlengine.OrderStore { return w.store }

func (w *SQLDBWrapper) Exec(t testing.TB, query string) {
	_, err := w.db.Exec(query)
	require.NoError(t, err, "error executing raw sql in test setup")
}

func (w *SQLDBWrapper) Close() { _ = w.db.Close() }

// SQLXWrapper wraps sqlx-based testing on PostgreSQL.
type SQLXWrapper struct {
	db    *sqlx.DB
	store sqlengine.OrderStore
}

func (w *SQLXWrapper) GetOrderStore() sqlengine.OrderStore { return w.store }

func (w *SQLXWrapper) Exec(t testing.TB, query string) {
	_, err := w.db.Exec(query)
	require.NoError(t, err, "error executing raw sql in test setup")
}

func (w *SQLXWrapper) Close() { _ = w.db.Close() }

// CreateWrapperWithTestConfig creates the wrapper selected by ADAPTER_TYPE with a migrated, empty schema.
func CreateWrapperWithTestConfig(t testing.TB, options ...sqlengine.Option) Wrapper {
	t.Helper()

	ctx := context.Background()
	adapterType := strings.ToLower(os.Getenv("ADAPTER_TYPE"))

	var wrapper Wrapper

	switch adapterType {
	case typeSQLite, "":
		db, err := sqlengine.OpenSQLite(":memory:")
		require.NoError(t, err, "error opening sqlite in test setup")
		store, err := sqlengine.NewOrderStoreFromSQLite(db, options...)
		require.NoError(t, err)
		wrapper = &SQLiteWrapper{db: db, store: store}

	case typePGXPool:
		pool, err := config.NewPGXPool(ctx, postgresTestConfig(t))
		require.NoError(t, err, "error connecting to DB pool in test setup")
		store, err := sqlengine.NewOrderStoreFromPGXPool(pool, options...)
		require.NoError(t, err)
		wrapper = &PGXPoolWrapper{pool: pool, store: store}

	case typeSQLDB:
		db, err := config.PostgresSQLDB(ctx, postgresTestConfig(t))
		require.NoError(t, err, "error connecting to DB in test setup")
		store, err := sqlengine.NewOrderStoreFromSQLDB(db, options...)
		require.NoError(t, err)
		wrapper = &SQLDBWrapper{db: db, store: store}

	case typeSQLX:
		db, err := config.PostgresSQLX(ctx, postgresTestConfig(t))
		require.NoError(t, err, "error connecting to DB in test setup")
		store, err := sqlengine.NewOrderStoreFromSQLX(db, options...)
		require.NoError(t, err)
		wrapper = &SQLXWrapper{db: db, store: store}

	default:
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterType))
	}

	require.NoError(t, wrapper.GetOrderStore().Migrate(ctx), "error migrating schema in test setup")
	CleanUp(t, wrapper)

	return wrapper
}

// CleanUp removes all rows written by a test; the schema itself stays.
func CleanUp(t testing.TB, wrapper Wrapper) {
	switch wrapper.(type) {
	case *SQLiteWrapper:
		wrapper.Exec(t, "DELETE FROM order_notifications")
		wrapper.Exec(t, "DELETE FROM order_articles")
		wrapper.Exec(t, "DELETE FROM orders")

	case *PGXPoolWrapper, *SQLDBWrapper, *SQLXWrapper:
		wrapper.Exec(t, "TRUNCATE TABLE order_notifications, order_articles, orders RESTART IDENTITY")

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", wrapper))
	}
}

func postgresTestConfig(t testing.TB) config.DatabaseConfig {
	dsn := os.Getenv(postgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s is not set", postgresDSNEnv)
	}

	db := config.Default().Database
	db.DSN = dsn
	db.ConnectTimeout = 5 * time.Second

	return db
}
