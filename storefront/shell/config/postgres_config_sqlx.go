package config

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

// PostgresSQLX opens a configured *sqlx.DB using lib/pq and verifies the connection.
func PostgresSQLX(ctx context.Context, db DatabaseConfig) (*sqlx.DB, error) {
	sqlxDB, err := sqlx.Open("postgres", db.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database connection: %w", err)
	}

	configurePool(sqlxDB.DB, db)

	if pingErr := sqlxDB.PingContext(ctx); pingErr != nil {
		_ = sqlxDB.Close()
		return nil, fmt.Errorf("pinging database: %w", pingErr)
	}

	return sqlxDB, nil
}
