package config

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // postgres driver
)

// PostgresSQLDB opens a configured *sql.DB using lib/pq and verifies the connection.
func PostgresSQLDB(ctx context.Context, db DatabaseConfig) (*sql.DB, error) {
	sqlDB, err := sql.Open("postgres", db.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database connection: %w", err)
	}

	configurePool(sqlDB, db)

	if pingErr := sqlDB.PingContext(ctx); pingErr != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", pingErr)
	}

	return sqlDB, nil
}

// configurePool applies the pool settings shared by the database/sql based drivers.
func configurePool(sqlDB *sql.DB, db DatabaseConfig) {
	sqlDB.SetMaxOpenConns(int(db.MaxConns))
	sqlDB.SetMaxIdleConns(int(db.MinConns))
	sqlDB.SetConnMaxLifetime(db.MaxConnLifetime)
	sqlDB.SetConnMaxIdleTime(db.MaxConnIdleTime)
}
