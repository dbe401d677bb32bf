package config

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultHealthCheckPeriod = time.Minute

// PostgresPGXPoolConfig creates a pgxpool.Config for the configured database.
func PostgresPGXPoolConfig(db DatabaseConfig) (*pgxpool.Config, error) {
	dbConfig, err := pgxpool.ParseConfig(db.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing pgxpool config: %w", err)
	}

	dbConfig.MaxConns = db.MaxConns
	dbConfig.MinConns = db.MinConns
	dbConfig.MaxConnLifetime = db.MaxConnLifetime
	dbConfig.MaxConnIdleTime = db.MaxConnIdleTime
	dbConfig.HealthCheckPeriod = defaultHealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = db.ConnectTimeout

	return dbConfig, nil
}

// NewPGXPool connects a pgx pool and verifies the connection.
func NewPGXPool(ctx context.Context, db DatabaseConfig) (*pgxpool.Pool, error) {
	dbConfig, err := PostgresPGXPoolConfig(db)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, fmt.Errorf("connecting pgx pool: %w", err)
	}

	if pingErr := pool.Ping(ctx); pingErr != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", pingErr)
	}

	return pool, nil
}
