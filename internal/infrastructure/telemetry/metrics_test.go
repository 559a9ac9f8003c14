package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"

	"github.com/stockroom/backend/internal/domain/inventory"
	"github.com/stockroom/backend/internal/infrastructure/telemetry"
)

type lowStockFunc func(ctx context.Context) (int64, error)

func (f lowStockFunc) CountLowStockItems(ctx context.Context) (int64, error) { return f(ctx) }

func newManualMeterProvider(t *testing.T) (*telemetry.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()
	previous := otel.GetMeterProvider()
	t.Cleanup(func() { otel.SetMeterProvider(previous) })

	reader := sdkmetric.NewManualReader()
	mp, err := telemetry.NewMeterProviderWithReader(telemetry.MetricsConfig{ServiceName: "stockroom-test"}, reader, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

// int64Value sums every data point of the named counter or gauge
func int64Value(rm metricdata.ResourceMetrics, name string) (int64, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			var total int64
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					total += dp.Value
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					total += dp.Value
				}
			}
			return total, true
		}
	}
	return 0, false
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "test-service",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("noop"))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestCounterAndHistogram(t *testing.T) {
	mp, reader := newManualMeterProvider(t)
	assert.True(t, mp.IsEnabled())
	meter := mp.Meter("test")
	ctx := context.Background()

	c, err := telemetry.NewCounter(meter, "uploads_total", "Uploads", "{files}")
	require.NoError(t, err)
	c.Inc(ctx)
	c.Add(ctx, 4)

	h, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:       "render_seconds",
		Unit:       "s",
		Boundaries: telemetry.HTTPDurationBuckets,
	})
	require.NoError(t, err)
	h.Record(ctx, 0.2)

	rm := collect(t, reader)
	total, ok := int64Value(rm, "uploads_total")
	require.True(t, ok)
	assert.Equal(t, int64(5), total)

	var found bool
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "render_seconds" {
				found = true
				hist, ok := m.Data.(metricdata.Histogram[float64])
				require.True(t, ok)
				require.Len(t, hist.DataPoints, 1)
				assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
			}
		}
	}
	assert.True(t, found)
}

func TestStockMetrics(t *testing.T) {
	mp, reader := newManualMeterProvider(t)
	ctx := context.Background()

	metrics, err := telemetry.NewStockMetrics(mp.Meter("stockroom"), lowStockFunc(func(context.Context) (int64, error) {
		return 3, nil
	}), zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Contains(t, metrics.EventTypes(), inventory.EventTypeStockReceived)

	stock, err := inventory.NewStock(uuid.New())
	require.NoError(t, err)

	require.NoError(t, metrics.Handle(ctx, inventory.NewStockReceivedEvent(stock, 4)))
	require.NoError(t, metrics.Handle(ctx, inventory.NewStockReceivedEvent(stock, 2)))
	require.NoError(t, metrics.Handle(ctx, inventory.NewStockItemsRemovedEvent(stock.ID, []uuid.UUID{uuid.New(), uuid.New()})))
	require.NoError(t, metrics.Handle(ctx, inventory.NewStockFinalizedEvent(stock)))

	rm := collect(t, reader)
	for name, want := range map[string]int64{
		"stockroom_stock_received_total":      2,
		"stockroom_line_items_received_total": 6,
		"stockroom_products_removed_total":    2,
		"stockroom_stock_finalized_total":     1,
		"stockroom_ledger_events_total":       4,
		"stockroom_low_stock_items":           3,
	} {
		got, ok := int64Value(rm, name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
}

func TestStockMetrics_LowStockCountFailureSkipsObservation(t *testing.T) {
	mp, reader := newManualMeterProvider(t)

	_, err := telemetry.NewStockMetrics(mp.Meter("stockroom"), lowStockFunc(func(context.Context) (int64, error) {
		return 0, errors.New("database unavailable")
	}), zaptest.NewLogger(t))
	require.NoError(t, err)

	rm := collect(t, reader)
	got, _ := int64Value(rm, "stockroom_low_stock_items")
	assert.Zero(t, got)
}
