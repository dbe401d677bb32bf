package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AntonStoeckl/storefront-orders/orderstore/oteladapters"
	"github.com/AntonStoeckl/storefront-orders/orderstore/promadapters"
	"github.com/AntonStoeckl/storefront-orders/storefront/shell"
	"github.com/AntonStoeckl/storefront-orders/storefront/shell/config"
)

const metricsNamespace = "storefront"

// observability bundles what every component receives for logging, metrics, and tracing.
// metrics and tracing stay nil when the backend is disabled.
type observability struct {
	logger           shell.Logger
	contextualLogger shell.ContextualLogger
	metrics          shell.MetricsCollector
	tracing          shell.TracingCollector
	registry         *prometheus.Registry
	namespace        string
	providers        *config.ObservabilityProviders
}

func setupObservability(ctx context.Context, cfg config.ObservabilityConfig) (*observability, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	logger := oteladapters.NewSlogBridgeLoggerWithHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	obs := &observability{
		logger:           logger,
		contextualLogger: logger,
		registry:         registry,
		namespace:        metricsNamespace,
	}

	switch cfg.MetricsBackend {
	case config.MetricsBackendPrometheus:
		obs.metrics = promadapters.NewMetricsCollector(registry, metricsNamespace)

	case config.MetricsBackendOTel:
		providers, err := config.NewObservabilityProviders(ctx, cfg, version)
		if err != nil {
			return nil, err
		}

		obs.providers = providers
		obs.metrics = oteladapters.NewMetricsCollector(providers.MeterProvider.Meter(cfg.ServiceName))
		obs.tracing = oteladapters.NewTracingCollector(providers.TracerProvider.Tracer(cfg.ServiceName))
	}

	return obs, nil
}

func (o *observability) metricsHandler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{Registry: o.registry})
}

func (o *observability) shutdown(ctx context.Context) {
	if o.providers == nil {
		return
	}

	if err := o.providers.Shutdown(ctx); err != nil {
		o.logger.Error("shutting down telemetry providers failed", "error", err)
	}
}
