package oteladapters_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/AntonStoeckl/storefront-orders/orderstore/oteladapters"
)

func newMetricsCollector() (*oteladapters.MetricsCollector, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	return oteladapters.NewMetricsCollector(provider.Meter("test")), reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader, name string) metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m
			}
		}
	}

	t.Fatalf("metric %s not found", name)

	return metricdata.Metrics{}
}

func Test_MetricsCollector_RecordDuration_UsesSecondsHistogram(t *testing.T) {
	// arrange
	collector, reader := newMetricsCollector()
	labels := map[string]string{"operation": "create", "status": "success"}

	// act
	collector.RecordDurationContext(context.Background(), "orderstore_operation_duration_seconds", 150*time.Millisecond, labels)

	// assert
	m := collect(t, reader, "orderstore_operation_duration_seconds")
	assert.Equal(t, "s", m.Unit)
	histogram, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, histogram.DataPoints, 1)
	assert.Equal(t, uint64(1), histogram.DataPoints[0].Count)
	assert.InDelta(t, 0.15, histogram.DataPoints[0].Sum, 0.001)

	expected := attribute.NewSet(attribute.String("operation", "create"), attribute.String("status", "success"))
	assert.True(t, histogram.DataPoints[0].Attributes.Equals(&expected))
}

func Test_MetricsCollector_IncrementCounter_Accumulates(t *testing.T) {
	// arrange
	collector, reader := newMetricsCollector()
	labels := map[string]string{"operation": "update_status"}

	// act
	collector.IncrementCounter("orderstore_state_conflicts_total", labels)
	collector.IncrementCounterContext(context.Background(), "orderstore_state_conflicts_total", labels)

	// assert
	sum, ok := collect(t, reader, "orderstore_state_conflicts_total").Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)
}

func Test_MetricsCollector_RecordValue_KeepsLastValue(t *testing.T) {
	// arrange
	collector, reader := newMetricsCollector()
	labels := map[string]string{"queue": "outbox"}

	// act
	collector.RecordValue("notification_outbox_pending", 12, labels)
	collector.RecordValue("notification_outbox_pending", 3, labels)

	// assert
	gauge, ok := collect(t, reader, "notification_outbox_pending").Data.(metricdata.Gauge[float64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.InDelta(t, 3.0, gauge.DataPoints[0].Value, 0.0001)
}

func Test_MetricsCollector_IsSafeForConcurrentUse(t *testing.T) {
	collector, reader := newMetricsCollector()
	done := make(chan struct{})

	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			collector.IncrementCounter("orderstore_orders_created_total", nil)
		}()
	}

	for i := 0; i < 8; i++ {
		<-done
	}

	sum, ok := collect(t, reader, "orderstore_orders_created_total").Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(8), sum.DataPoints[0].Value)
}
