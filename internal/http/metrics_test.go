package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fyrsmithlabs/pestid/internal/telemetry"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMetricsMiddleware(t *testing.T) {
	tel := telemetry.NewTestTelemetry()
	tel.Install(t)

	e := echo.New()
	e.Use(NewHTTPMetrics(nil).MetricsMiddleware())
	e.GET("/api/v1/tracking/:id", func(c echo.Context) error {
		if c.Param("id") == "missing" {
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		return c.String(http.StatusOK, "ok")
	})

	for _, id := range []string{"a1", "b2", "missing"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tracking/"+id, nil))
	}

	m, ok := tel.FindMetric(t, "pestid.http.requests_total")
	require.True(t, ok)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	byStatus := map[int64]int64{}
	for _, dp := range sum.DataPoints {
		endpoint, _ := dp.Attributes.Value(attribute.Key("endpoint"))
		assert.Equal(t, "/api/v1/tracking/:id", endpoint.AsString(), "ids must not become labels")
		status, _ := dp.Attributes.Value(attribute.Key("status"))
		byStatus[status.AsInt64()] += dp.Value
	}
	assert.Equal(t, int64(2), byStatus[http.StatusOK])
	assert.Equal(t, int64(1), byStatus[http.StatusNotFound])

	_, ok = tel.FindMetric(t, "pestid.http.request_duration_seconds")
	assert.True(t, ok)
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "unmatched", routeLabel(""))
	assert.Equal(t, "/health", routeLabel("/health"))
}
