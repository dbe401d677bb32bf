package oteladapters_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/log/noop"

	"github.com/AntonStoeckl/storefront-orders/orderstore/oteladapters"
)

func Test_SlogBridgeLogger_WritesAllLevelsWithAttributes(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(
		slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "executed sql for: create", "duration_ms", 1.25)
	logger.InfoContext(ctx, "orderstore operation: order created", "order_id", "o-1", "article_count", 2)
	logger.Warn("failed to close database rows")
	logger.ErrorContext(ctx, "command handler failed", "retried", true)

	// assert
	output := buf.String()
	assert.Contains(t, output, `"level":"DEBUG"`)
	assert.Contains(t, output, `"duration_ms":1.25`)
	assert.Contains(t, output, `"order_id":"o-1"`)
	assert.Contains(t, output, `"article_count":2`)
	assert.Contains(t, output, `"level":"WARN"`)
	assert.Contains(t, output, `"retried":true`)
}

func Test_SlogBridgeLogger_ExposesSlog(t *testing.T) {
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewTextHandler(&buf, nil))

	logger.Slog().Info("relay started")

	assert.Contains(t, buf.String(), "relay started")
}

func Test_SlogBridgeLogger_UsesGlobalProvider(t *testing.T) {
	logger := oteladapters.NewSlogBridgeLogger("storefront-orders")

	assert.NotPanics(t, func() {
		logger.InfoContext(context.Background(), "order created", "order_id", "o-1")
	})
}

func Test_OTelLogger_HandlesArgumentShapes(t *testing.T) {
	logger := oteladapters.NewOTelLogger(noop.NewLoggerProvider().Logger("test"))
	ctx := context.Background()

	assert.NotPanics(t, func() {
		logger.DebugContext(ctx, "debug")
		logger.InfoContext(ctx, "typed", "total", int64(7590), "express", true)
		logger.WarnContext(ctx, "odd args", "key1", "value1", "dangling")
		logger.ErrorContext(ctx, "non-string key", 42, "ignored")
	})
}
