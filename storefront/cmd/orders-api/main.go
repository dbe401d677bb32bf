// Command orders-api serves the storefront order API and relays order notifications.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/AntonStoeckl/storefront-orders/storefront/httpapi"
	"github.com/AntonStoeckl/storefront-orders/storefront/notify"
	"github.com/AntonStoeckl/storefront-orders/storefront/pricing"
	"github.com/AntonStoeckl/storefront-orders/storefront/shell/config"
)

var version = "dev"

func main() {
	configPath := flag.String("config", os.Getenv("STOREFRONT_CONFIG"), "path to the YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatalf("orders-api failed: %v", err)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obs, err := setupObservability(ctx, cfg.Observability)
	if err != nil {
		return fmt.Errorf("setting up observability: %w", err)
	}
	defer obs.shutdown(context.Background())

	store, err := openOrderStore(ctx, cfg.Database, obs)
	if err != nil {
		return err
	}
	defer store.close()

	if cfg.Database.Migrate {
		if migrateErr := store.orders.Migrate(ctx); migrateErr != nil {
			return fmt.Errorf("migrating order store: %w", migrateErr)
		}
	}

	products, closeCatalog, err := openCatalog(cfg.Catalog, obs)
	if err != nil {
		return err
	}
	defer closeCatalog()

	table, err := pricing.DefaultTable()
	if err != nil {
		return fmt.Errorf("loading delivery tariffs: %w", err)
	}

	handlers, invoiceDir, err := buildHandlers(cfg, store.orders, products, table, obs)
	if err != nil {
		return err
	}

	policy, err := httpapi.NewRoutePolicy()
	if err != nil {
		return err
	}

	httpMetrics, err := httpapi.NewHTTPMetrics(obs.registry, obs.namespace)
	if err != nil {
		return fmt.Errorf("registering http metrics: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)

	router := httpapi.NewRouter(
		handlers,
		table,
		httpapi.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		policy,
		httpapi.WithHTTPMetrics(httpMetrics),
		httpapi.WithMetricsHandler(obs.metricsHandler()),
		httpapi.WithHealthCheck(store.ping),
		httpapi.WithMaxUploadBytes(cfg.HTTP.MaxUploadBytes),
		httpapi.WithInvoiceFiles(invoiceDir),
		httpapi.WithLogger(obs.logger),
	)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	dispatcher, closeDispatcher := buildDispatcher(cfg.Notifications, obs)
	defer closeDispatcher()

	relay := notify.NewRelay(
		store.orders,
		dispatcher,
		notify.WithInterval(cfg.Notifications.RelayInterval),
		notify.WithBatchSize(cfg.Notifications.BatchSize),
		notify.WithMaxAttempts(cfg.Notifications.MaxAttempts),
		notify.WithLogger(obs.logger),
		notify.WithMetrics(obs.metrics),
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		obs.logger.Info("http server listening", "addr", cfg.HTTP.Addr, "version", version)

		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", serveErr)
		}

		return nil
	})

	group.Go(func() error {
		return relay.Run(groupCtx)
	})

	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()

		obs.logger.Info("shutting down http server")

		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

func buildDispatcher(cfg config.NotificationsConfig, obs *observability) (notify.Dispatcher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		obs.logger.Warn("no kafka brokers configured, notifications are only logged")
		return notify.NewLogDispatcher(obs.logger), func() {}
	}

	dispatcher := notify.NewKafkaDispatcher(notify.NewKafkaWriter(cfg.KafkaBrokers, cfg.Topic))

	return dispatcher, func() {
		if err := dispatcher.Close(); err != nil {
			obs.logger.Error("closing kafka writer failed", "error", err)
		}
	}
}
