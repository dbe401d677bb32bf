package promadapters_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/storefront-orders/orderstore/promadapters"
)

func Test_MetricsCollector_IncrementCounter(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry, "storefront")
	labels := map[string]string{"operation": "update_status"}

	// act
	collector.IncrementCounter("orderstore_state_conflicts_total", labels)
	collector.IncrementCounter("orderstore_state_conflicts_total", labels)

	// assert
	count, err := testutil.GatherAndCount(registry, "storefront_orderstore_state_conflicts_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "one series")

	families, err := registry.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.InDelta(t, 2.0, families[0].GetMetric()[0].GetCounter().GetValue(), 0.0001)
}

func Test_MetricsCollector_RecordDurationAndValue(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry, "")

	// act
	collector.RecordDuration("orderstore_operation_duration_seconds", 250*time.Millisecond, map[string]string{"operation": "create", "status": "success"})
	collector.RecordValue("notification_outbox_pending", 4, map[string]string{"queue": "outbox"})

	// assert
	families, err := registry.Gather()
	require.NoError(t, err)
	require.Len(t, families, 2)

	for _, family := range families {
		switch family.GetName() {
		case "orderstore_operation_duration_seconds":
			histogram := family.GetMetric()[0].GetHistogram()
			assert.Equal(t, uint64(1), histogram.GetSampleCount())
			assert.InDelta(t, 0.25, histogram.GetSampleSum(), 0.0001)
		case "notification_outbox_pending":
			assert.InDelta(t, 4.0, family.GetMetric()[0].GetGauge().GetValue(), 0.0001)
		default:
			t.Fatalf("unexpected metric family %s", family.GetName())
		}
	}
}

func Test_MetricsCollector_DropsMismatchingLabelSets(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := promadapters.NewMetricsCollector(registry, "")

	collector.IncrementCounter("orders_total", map[string]string{"status": "success"})

	assert.NotPanics(t, func() {
		collector.IncrementCounter("orders_total", map[string]string{"other": "x"})
	})

	count, err := testutil.GatherAndCount(registry, "orders_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func Test_MetricsCollector_SharesVectorsAcrossInstances(t *testing.T) {
	// arrange
	registry := prometheus.NewRegistry()
	first := promadapters.NewMetricsCollector(registry, "")
	second := promadapters.NewMetricsCollector(registry, "")
	labels := map[string]string{"command_type": "PlaceOrder"}

	// act
	first.IncrementCounter("commandhandler_handle_calls_total", labels)
	second.IncrementCounter("commandhandler_handle_calls_total", labels)

	// assert
	families, err := registry.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.InDelta(t, 2.0, families[0].GetMetric()[0].GetCounter().GetValue(), 0.0001)
}
