package sqlengine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/doug-martin/goqu/v9"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
	"github.com/AntonStoeckl/storefront-orders/orderstore/sqlengine/internal/adapters"
)

const colVersion = "version"
const colAppliedAt = "applied_at"

// migration is one versioned schema step. Statements use %[1]s, %[2]s, %[3]s for the
// orders, articles, and notifications table names.
type migration struct {
	version  string
	postgres []string
	sqlite   []string
}

var migrations = []migration{
	{
		version: "1.0.0",
		postgres: []string{
			`CREATE TABLE IF NOT EXISTS %[1]s (
				id UUID PRIMARY KEY,
				customer_id TEXT NULL,
				full_name TEXT NOT NULL,
				email TEXT NOT NULL,
				phone TEXT NOT NULL,
				address TEXT NOT NULL,
				city TEXT NOT NULL DEFAULT '',
				region TEXT NOT NULL,
				delivery_method TEXT NOT NULL,
				delivery_speed TEXT NOT NULL,
				subtotal BIGINT NOT NULL,
				delivery_fee BIGINT NOT NULL,
				total BIGINT NOT NULL,
				declared_subtotal BIGINT NULL,
				status TEXT NOT NULL,
				tracking_number TEXT NULL,
				notes TEXT NULL,
				invoice_url TEXT NULL,
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL,
				delivered_at TIMESTAMPTZ NULL
			)`,
			`CREATE INDEX IF NOT EXISTS %[1]s_customer_created_idx ON %[1]s (customer_id, created_at DESC)`,
			`CREATE INDEX IF NOT EXISTS %[1]s_created_idx ON %[1]s (created_at DESC)`,
			`CREATE TABLE IF NOT EXISTS %[2]s (
				id BIGSERIAL PRIMARY KEY,
				order_id UUID NOT NULL REFERENCES %[1]s (id) ON DELETE CASCADE,
				position INTEGER NOT NULL,
				product_id BIGINT NOT NULL,
				product_name TEXT NOT NULL,
				unit_price BIGINT NOT NULL,
				quantity INTEGER NOT NULL CHECK (quantity > 0),
				size TEXT NULL,
				color TEXT NOT NULL,
				line_subtotal BIGINT NOT NULL,
				CHECK (line_subtotal = unit_price * quantity)
			)`,
			`CREATE INDEX IF NOT EXISTS %[2]s_order_idx ON %[2]s (order_id, position)`,
			`CREATE TABLE IF NOT EXISTS %[3]s (
				id BIGSERIAL PRIMARY KEY,
				event_id UUID NOT NULL UNIQUE,
				order_id UUID NOT NULL,
				kind TEXT NOT NULL,
				recipient TEXT NOT NULL,
				payload JSONB NOT NULL,
				attempts INTEGER NOT NULL DEFAULT 0,
				last_error TEXT NULL,
				created_at TIMESTAMPTZ NOT NULL,
				sent_at TIMESTAMPTZ NULL,
				abandoned_at TIMESTAMPTZ NULL
			)`,
		},
		sqlite: []string{
			`CREATE TABLE IF NOT EXISTS %[1]s (
				id TEXT PRIMARY KEY,
				customer_id TEXT NULL,
				full_name TEXT NOT NULL,
				email TEXT NOT NULL,
				phone TEXT NOT NULL,
				address TEXT NOT NULL,
				city TEXT NOT NULL DEFAULT '',
				region TEXT NOT NULL,
				delivery_method TEXT NOT NULL,
				delivery_speed TEXT NOT NULL,
				subtotal INTEGER NOT NULL,
				delivery_fee INTEGER NOT NULL,
				total INTEGER NOT NULL,
				declared_subtotal INTEGER NULL,
				status TEXT NOT NULL,
				tracking_number TEXT NULL,
				notes TEXT NULL,
				invoice_url TEXT NULL,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL,
				delivered_at TIMESTAMP NULL
			)`,
			`CREATE INDEX IF NOT EXISTS %[1]s_customer_created_idx ON %[1]s (customer_id, created_at DESC)`,
			`CREATE INDEX IF NOT EXISTS %[1]s_created_idx ON %[1]s (created_at DESC)`,
			`CREATE TABLE IF NOT EXISTS %[2]s (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				order_id TEXT NOT NULL REFERENCES %[1]s (id) ON DELETE CASCADE,
				position INTEGER NOT NULL,
				product_id INTEGER NOT NULL,
				product_name TEXT NOT NULL,
				unit_price INTEGER NOT NULL,
				quantity INTEGER NOT NULL CHECK (quantity > 0),
				size TEXT NULL,
				color TEXT NOT NULL,
				line_subtotal INTEGER NOT NULL,
				CHECK (line_subtotal = unit_price * quantity)
			)`,
			`CREATE INDEX IF NOT EXISTS %[2]s_order_idx ON %[2]s (order_id, position)`,
			`CREATE TABLE IF NOT EXISTS %[3]s (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				event_id TEXT NOT NULL UNIQUE,
				order_id TEXT NOT NULL,
				kind TEXT NOT NULL,
				recipient TEXT NOT NULL,
				payload TEXT NOT NULL,
				attempts INTEGER NOT NULL DEFAULT 0,
				last_error TEXT NULL,
				created_at TIMESTAMP NOT NULL,
				sent_at TIMESTAMP NULL,
				abandoned_at TIMESTAMP NULL
			)`,
		},
	},
	{
		version: "1.1.0",
		postgres: []string{
			`CREATE INDEX IF NOT EXISTS %[3]s_pending_idx ON %[3]s (id) WHERE sent_at IS NULL AND abandoned_at IS NULL`,
			`CREATE INDEX IF NOT EXISTS %[1]s_status_idx ON %[1]s (status)`,
		},
		sqlite: []string{
			`CREATE INDEX IF NOT EXISTS %[3]s_pending_idx ON %[3]s (id) WHERE sent_at IS NULL AND abandoned_at IS NULL`,
			`CREATE INDEX IF NOT EXISTS %[1]s_status_idx ON %[1]s (status)`,
		},
	},
	{
		version: "1.2.0",
		postgres: []string{
			`ALTER TABLE %[3]s ADD COLUMN IF NOT EXISTS next_attempt_at TIMESTAMPTZ NULL`,
		},
		sqlite: []string{
			`ALTER TABLE %[3]s ADD COLUMN next_attempt_at TIMESTAMP NULL`,
		},
	},
}

// Migrate applies all schema migrations newer than the highest recorded version.
// Each migration runs in its own transaction together with its version record.
func (s OrderStore) Migrate(ctx context.Context) error {
	if err := s.ensureMigrationsTable(ctx); err != nil {
		return err
	}

	current, err := s.currentSchemaVersion(ctx)
	if err != nil {
		return err
	}

	pending, err := pendingMigrations(current)
	if err != nil {
		return err
	}

	for _, m := range pending {
		if applyErr := s.applyMigration(ctx, m); applyErr != nil {
			return applyErr
		}

		s.logOperation(ctx, logMsgMigrationApplied, logAttrVersion, m.version)
	}

	return nil
}

// SchemaVersion returns the highest applied schema version, "0.0.0" when nothing was applied yet.
func (s OrderStore) SchemaVersion(ctx context.Context) (string, error) {
	if err := s.ensureMigrationsTable(ctx); err != nil {
		return "", err
	}

	current, err := s.currentSchemaVersion(ctx)
	if err != nil {
		return "", err
	}

	return current.String(), nil
}

func (s OrderStore) ensureMigrationsTable(ctx context.Context) error {
	timestampType := "TIMESTAMPTZ"
	if s.dialect == DialectSQLite {
		timestampType = "TIMESTAMP"
	}

	ddl := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (version TEXT PRIMARY KEY, applied_at %s NOT NULL)`,
		s.migrationsTable,
		timestampType,
	)

	return s.execDDL(ctx, s.db, ddl)
}

func (s OrderStore) currentSchemaVersion(ctx context.Context) (*semver.Version, error) {
	stmt := s.builder().From(s.migrationsTable).Select(colVersion).Prepared(s.prepared)

	rows, err := s.query(ctx, s.db, logActionMigrate, stmt)
	if err != nil {
		return nil, errors.Join(orderstore.ErrMigrationFailed, err)
	}
	defer s.closeRows(ctx, rows)

	current := semver.MustParse("0.0.0")

	for rows.Next() {
		var raw string
		if scanErr := rows.Scan(&raw); scanErr != nil {
			return nil, errors.Join(orderstore.ErrMigrationFailed, orderstore.ErrScanningDBRowFailed, scanErr)
		}

		v, parseErr := semver.NewVersion(raw)
		if parseErr != nil {
			return nil, errors.Join(orderstore.ErrMigrationFailed, fmt.Errorf("invalid recorded schema version %q: %w", raw, parseErr))
		}

		if v.GreaterThan(current) {
			current = v
		}
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, errors.Join(orderstore.ErrMigrationFailed, rowsErr)
	}

	return current, nil
}

// pendingMigrations returns the migrations newer than current, ordered by version.
func pendingMigrations(current *semver.Version) ([]migration, error) {
	type versioned struct {
		v *semver.Version
		m migration
	}

	pending := make([]versioned, 0, len(migrations))

	for _, m := range migrations {
		v, err := semver.NewVersion(m.version)
		if err != nil {
			return nil, errors.Join(orderstore.ErrMigrationFailed, fmt.Errorf("invalid migration version %q: %w", m.version, err))
		}

		if current.LessThan(v) {
			pending = append(pending, versioned{v: v, m: m})
		}
	}

	sort.Slice(pending, func(i, j int) bool { return pending[i].v.LessThan(pending[j].v) })

	result := make([]migration, 0, len(pending))
	for _, p := range pending {
		result = append(result, p.m)
	}

	return result, nil
}

func (s OrderStore) applyMigration(ctx context.Context, m migration) error {
	statements := m.postgres
	if s.dialect == DialectSQLite {
		statements = m.sqlite
	}

	return s.inTx(ctx, func(tx adapters.DBTx) error {
		for _, statement := range statements {
			ddl := fmt.Sprintf(statement, s.ordersTable, s.articlesTable, s.notificationsTable)
			if err := s.execDDL(ctx, tx, ddl); err != nil {
				return err
			}
		}

		record := s.builder().
			Insert(s.migrationsTable).
			Rows(goqu.Record{colVersion: m.version, colAppliedAt: utc(time.Now())}).
			Prepared(s.prepared)

		if _, err := s.exec(ctx, tx, logActionMigrate, record); err != nil {
			return errors.Join(orderstore.ErrMigrationFailed, err)
		}

		return nil
	})
}

func (s OrderStore) execDDL(ctx context.Context, q adapters.Querier, ddl string) error {
	start := time.Now()
	_, err := q.Exec(ctx, ddl)
	s.logQueryWithDuration(ctx, ddl, logActionMigrate, time.Since(start))

	if err != nil {
		s.logError(ctx, logMsgDBExecFailed, err, logAttrQuery, ddl)
		return errors.Join(orderstore.ErrMigrationFailed, err)
	}

	return nil
}
