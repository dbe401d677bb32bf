package main

import (
	"context"
	"fmt"
	"os"

	"github.com/AntonStoeckl/storefront-orders/orderstore/sqlengine"
	"github.com/AntonStoeckl/storefront-orders/storefront/catalog"
	"github.com/AntonStoeckl/storefront-orders/storefront/shell/config"
)

type orderStoreHandle struct {
	orders sqlengine.OrderStore
	ping   func(ctx context.Context) error
	close  func()
}

// openOrderStore connects the order store through the configured database driver.
func openOrderStore(ctx context.Context, cfg config.DatabaseConfig, obs *observability) (orderStoreHandle, error) {
	options := []sqlengine.Option{
		sqlengine.WithLogger(obs.logger),
		sqlengine.WithContextualLogger(obs.contextualLogger),
	}

	if obs.metrics != nil {
		options = append(options, sqlengine.WithMetrics(obs.metrics))
	}

	if obs.tracing != nil {
		options = append(options, sqlengine.WithTracing(obs.tracing))
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	var handle orderStoreHandle
	var err error

	switch cfg.Driver {
	case config.DriverPGXPool:
		pool, poolErr := config.NewPGXPool(connectCtx, cfg)
		if poolErr != nil {
			return orderStoreHandle{}, poolErr
		}

		handle.ping, handle.close = pool.Ping, pool.Close
		handle.orders, err = sqlengine.NewOrderStoreFromPGXPool(pool, options...)

	case config.DriverSQLDB:
		db, dbErr := config.PostgresSQLDB(connectCtx, cfg)
		if dbErr != nil {
			return orderStoreHandle{}, dbErr
		}

		handle.ping, handle.close = db.PingContext, func() { _ = db.Close() }
		handle.orders, err = sqlengine.NewOrderStoreFromSQLDB(db, options...)

	case config.DriverSQLX:
		db, dbErr := config.PostgresSQLX(connectCtx, cfg)
		if dbErr != nil {
			return orderStoreHandle{}, dbErr
		}

		handle.ping, handle.close = db.PingContext, func() { _ = db.Close() }
		handle.orders, err = sqlengine.NewOrderStoreFromSQLX(db, options...)

	default:
		db, dbErr := sqlengine.OpenSQLite(cfg.SQLitePath)
		if dbErr != nil {
			return orderStoreHandle{}, fmt.Errorf("opening sqlite database: %w", dbErr)
		}

		handle.ping, handle.close = db.PingContext, func() { _ = db.Close() }
		handle.orders, err = sqlengine.NewOrderStoreFromSQLite(db, options...)
	}

	if err != nil {
		handle.close()
		return orderStoreHandle{}, fmt.Errorf("creating order store: %w", err)
	}

	return handle, nil
}

// openCatalog reads products from the catalog database, or from the seed file when no DSN is set.
func openCatalog(cfg config.CatalogConfig, obs *observability) (catalog.ProductReader, func(), error) {
	if cfg.DSN != "" {
		db, err := catalog.OpenPostgres(cfg.DSN, 4, 0)
		if err != nil {
			return nil, nil, err
		}

		closeDB := func() {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				_ = sqlDB.Close()
			}
		}

		return catalog.NewGormReader(db, catalog.WithGormReaderLogger(obs.logger)), closeDB, nil
	}

	if cfg.SeedFile == "" {
		obs.logger.Warn("no catalog configured, every product will be reported as unknown")
		return catalog.NewMemoryReader(), func() {}, nil
	}

	file, err := os.Open(cfg.SeedFile)
	if err != nil {
		return nil, nil, fmt.Errorf("opening catalog seed file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader, err := catalog.LoadSeed(file)
	if err != nil {
		return nil, nil, err
	}

	return reader, func() {}, nil
}
