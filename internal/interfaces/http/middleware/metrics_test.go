package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestHTTPMetrics_NilMeter(t *testing.T) {
	handler, err := HTTPMetrics(nil)
	require.NoError(t, err)

	engine := newTestEngine(handler)
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHTTPMetrics_RecordsByRoutePattern(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	handler, err := HTTPMetrics(provider.Meter("http.server"))
	require.NoError(t, err)

	engine := newTestEngine(handler)
	engine.GET("/api/v1/parties/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	for _, id := range []string{"a", "b", "c"} {
		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/parties/"+id, nil))
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	var total metricdata.Sum[int64]
	var duration metricdata.Histogram[float64]
	for _, m := range rm.ScopeMetrics[0].Metrics {
		switch m.Name {
		case "http_server_request_total":
			total = m.Data.(metricdata.Sum[int64])
		case "http_server_request_duration_seconds":
			duration = m.Data.(metricdata.Histogram[float64])
		}
	}

	require.Len(t, total.DataPoints, 1)
	assert.Equal(t, int64(3), total.DataPoints[0].Value)
	route, ok := total.DataPoints[0].Attributes.Value("http.route")
	require.True(t, ok)
	assert.Equal(t, "/api/v1/parties/:id", route.AsString())

	require.Len(t, duration.DataPoints, 1)
	assert.Equal(t, uint64(3), duration.DataPoints[0].Count)
}
