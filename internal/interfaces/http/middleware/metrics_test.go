package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"

	"github.com/stockroom/backend/internal/infrastructure/telemetry"
)

func TestHTTPMetrics_Disabled(t *testing.T) {
	mw, err := HTTPMetrics(nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	newEngine(mw).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHTTPMetrics(t *testing.T) {
	previous := otel.GetMeterProvider()
	t.Cleanup(func() { otel.SetMeterProvider(previous) })

	reader := sdkmetric.NewManualReader()
	mp, err := telemetry.NewMeterProviderWithReader(telemetry.MetricsConfig{ServiceName: "test"}, reader, zaptest.NewLogger(t))
	require.NoError(t, err)

	mw, err := HTTPMetrics(mp)
	require.NoError(t, err)
	r := newEngine(mw)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/ping", nil),
		httptest.NewRequest(http.MethodGet, "/ping", nil),
		httptest.NewRequest(http.MethodPost, "/ping", nil),
		httptest.NewRequest(http.MethodGet, "/missing", nil),
	} {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "http_server_request_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				method, _ := dp.Attributes.Value(attribute.Key("http.method"))
				route, _ := dp.Attributes.Value(attribute.Key("http.route"))
				status, _ := dp.Attributes.Value(attribute.Key("http.status_code"))
				counts[method.AsString()+" "+route.AsString()+" "+status.Emit()] += dp.Value
			}
		}
	}

	assert.Equal(t, map[string]int64{
		"GET /ping 200":     2,
		"POST /ping 201":    1,
		"GET unmatched 404": 1,
	}, counts)
}
