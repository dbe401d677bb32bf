package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
	"github.com/AntonStoeckl/storefront-orders/orderstore/sqlengine/internal/adapters"
)

const (
	defaultOrdersTableName        = "orders"
	defaultArticlesTableName      = "order_articles"
	defaultNotificationsTableName = "order_notifications"
	defaultMigrationsTableName    = "order_schema_versions"

	// DialectPostgres selects PostgreSQL DDL and SQL rendering.
	DialectPostgres = "postgres"

	// DialectSQLite selects SQLite DDL and SQL rendering.
	DialectSQLite = "sqlite3"
)

const (
	colID               = "id"
	colCustomerID       = "customer_id"
	colFullName         = "full_name"
	colEmail            = "email"
	colPhone            = "phone"
	colAddress          = "address"
	colCity             = "city"
	colRegion           = "region"
	colDeliveryMethod   = "delivery_method"
	colDeliverySpeed    = "delivery_speed"
	colSubtotal         = "subtotal"
	colDeliveryFee      = "delivery_fee"
	colTotal            = "total"
	colDeclaredSubtotal = "declared_subtotal"
	colStatus           = "status"
	colTrackingNumber   = "tracking_number"
	colNotes            = "notes"
	colInvoiceURL       = "invoice_url"
	colCreatedAt        = "created_at"
	colUpdatedAt        = "updated_at"
	colDeliveredAt      = "delivered_at"

	colOrderID      = "order_id"
	colPosition     = "position"
	colProductID    = "product_id"
	colProductName  = "product_name"
	colUnitPrice    = "unit_price"
	colQuantity     = "quantity"
	colSize         = "size"
	colColor        = "color"
	colLineSubtotal = "line_subtotal"

	colEventID     = "event_id"
	colKind        = "kind"
	colRecipient   = "recipient"
	colPayload     = "payload"
	colAttempts    = "attempts"
	colLastError   = "last_error"
	colSentAt      = "sent_at"
	colAbandonedAt = "abandoned_at"

	colNextAttemptAt = "next_attempt_at"

	aliasCount = "cnt"
)

type sqlBuilder interface {
	ToSQL() (string, []interface{}, error)
}

// OrderStore persists orders, their article snapshots, and the outbox notifications caused by order changes.
// It leverages a database adapter and supports customizable logging, metrics, tracing, and table names.
type OrderStore struct {
	db                 adapters.DBAdapter
	dialect            string
	prepared           bool
	ordersTable        string
	articlesTable      string
	notificationsTable string
	migrationsTable    string
	logger             orderstore.Logger
	contextualLogger   orderstore.ContextualLogger
	metricsCollector   orderstore.MetricsCollector
	tracingCollector   orderstore.TracingCollector
}

// NewOrderStoreFromPGXPool creates a new OrderStore using a pgx Pool with optional configuration.
func NewOrderStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (OrderStore, error) {
	if db == nil {
		return OrderStore{}, orderstore.ErrNilDatabaseConnection
	}

	return newOrderStore(adapters.NewPGXAdapter(db), DialectPostgres, options...)
}

// NewOrderStoreFromPGXPoolWithReplica creates a new OrderStore that sends reads to a replica pool.
// Reads done inside a write transaction still use the primary.
func NewOrderStoreFromPGXPoolWithReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (OrderStore, error) {
	if db == nil || replica == nil {
		return OrderStore{}, orderstore.ErrNilDatabaseConnection
	}

	return newOrderStore(adapters.NewPGXAdapterWithReplica(db, replica), DialectPostgres, options...)
}

// NewOrderStoreFromSQLDB creates a new OrderStore using a PostgreSQL sql.DB with optional configuration.
func NewOrderStoreFromSQLDB(db *sql.DB, options ...Option) (OrderStore, error) {
	if db == nil {
		return OrderStore{}, orderstore.ErrNilDatabaseConnection
	}

	return newOrderStore(adapters.NewSQLAdapter(db), DialectPostgres, options...)
}

// NewOrderStoreFromSQLX creates a new OrderStore using a PostgreSQL sqlx.DB with optional configuration.
func NewOrderStoreFromSQLX(db *sqlx.DB, options ...Option) (OrderStore, error) {
	if db == nil {
		return OrderStore{}, orderstore.ErrNilDatabaseConnection
	}

	return newOrderStore(adapters.NewSQLXAdapter(db), DialectPostgres, options...)
}

// NewOrderStoreFromSQLite creates a new OrderStore using a sql.DB opened with the modernc.org/sqlite driver.
// In-memory databases must be limited to one open connection by the caller, otherwise every
// connection sees its own empty database.
func NewOrderStoreFromSQLite(db *sql.DB, options ...Option) (OrderStore, error) {
	if db == nil {
		return OrderStore{}, orderstore.ErrNilDatabaseConnection
	}

	return newOrderStore(adapters.NewSQLAdapter(db), DialectSQLite, options...)
}

func newOrderStore(db adapters.DBAdapter, dialect string, options ...Option) (OrderStore, error) {
	s := OrderStore{
		db:                 db,
		dialect:            dialect,
		prepared:           dialect == DialectSQLite,
		ordersTable:        defaultOrdersTableName,
		articlesTable:      defaultArticlesTableName,
		notificationsTable: defaultNotificationsTableName,
		migrationsTable:    defaultMigrationsTableName,
	}

	for _, option := range options {
		if err := option(&s); err != nil {
			return OrderStore{}, err
		}
	}

	return s, nil
}

// Dialect returns the SQL dialect the store renders statements for.
func (s OrderStore) Dialect() string {
	return s.dialect
}

func (s OrderStore) builder() goqu.DialectWrapper {
	return goqu.Dialect(s.dialect)
}

// toSQL renders a goqu statement, interpolated for PostgreSQL and with bind parameters for SQLite.
func (s OrderStore) toSQL(stmt sqlBuilder) (string, []any, error) {
	sqlQuery, args, err := stmt.ToSQL()
	if err != nil {
		return "", nil, errors.Join(orderstore.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, args, nil
}

// query renders and runs a SELECT statement and returns the open rows.
func (s OrderStore) query(ctx context.Context, q adapters.Querier, action string, stmt sqlBuilder) (adapters.DBRows, error) {
	sqlQuery, args, buildErr := s.toSQL(stmt)
	if buildErr != nil {
		s.logError(ctx, logMsgBuildQueryFailed, buildErr, logAttrAction, action)
		return nil, buildErr
	}

	start := time.Now()
	rows, queryErr := q.Query(ctx, sqlQuery, args...)
	s.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return nil, errors.Join(orderstore.ErrQueryingOrdersFailed, queryErr)
	}

	return rows, nil
}

// exec renders and runs a write statement and returns the number of affected rows.
func (s OrderStore) exec(ctx context.Context, q adapters.Querier, action string, stmt sqlBuilder) (int64, error) {
	sqlQuery, args, buildErr := s.toSQL(stmt)
	if buildErr != nil {
		s.logError(ctx, logMsgBuildQueryFailed, buildErr, logAttrAction, action)
		return 0, buildErr
	}

	start := time.Now()
	result, execErr := q.Exec(ctx, sqlQuery, args...)
	s.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))

	if execErr != nil {
		s.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		return 0, errors.Join(orderstore.ErrWritingOrderFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		s.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		return 0, errors.Join(orderstore.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, nil
}

// inTx runs fn inside a transaction, committing on success and rolling back on any error.
func (s OrderStore) inTx(ctx context.Context, fn func(tx adapters.DBTx) error) error {
	tx, beginErr := s.db.BeginTx(ctx)
	if beginErr != nil {
		s.logError(ctx, logMsgBeginTxFailed, beginErr)
		return errors.Join(orderstore.ErrTransactionFailed, beginErr)
	}

	if err := fn(tx); err != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			s.logWarn(ctx, logMsgRollbackFailed, logAttrError, rollbackErr.Error())
		}

		return err
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		s.logError(ctx, logMsgCommitFailed, commitErr)
		return errors.Join(orderstore.ErrTransactionFailed, commitErr)
	}

	return nil
}

// closeRows safely closes database rows and logs any errors.
func (s OrderStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// nullable turns a nil pointer into a SQL NULL and dereferences everything else.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}

	return *p
}

// utc normalizes timestamps before they are written so both dialects store comparable values.
func utc(t time.Time) time.Time {
	return t.UTC()
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}

	return utc(*t)
}
