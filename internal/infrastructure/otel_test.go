package infrastructure

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"tabclean/internal/config"
)

func TestInitializeOTelDisabled(t *testing.T) {
	providers, err := InitializeOTel(config.TelemetryConfig{
		ServiceName:   "tabclean",
		TraceExporter: "none",
	}, "test", nil)
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)
	assert.NotNil(t, providers.Tracer)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTelPrometheus(t *testing.T) {
	providers, err := InitializeOTel(config.TelemetryConfig{
		ServiceName:   "tabclean",
		TraceExporter: "none",
		Metrics:       true,
	}, "test", nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	require.NotNil(t, providers.MeterProvider)
	require.NotNil(t, providers.PrometheusHTTP)

	counter, err := otel.Meter("tabclean.test").Int64Counter("tabclean_test_rows_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 3, metric.WithAttributes())

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tabclean_test_rows_total")
}

func TestInitializeOTelStdoutTracing(t *testing.T) {
	providers, err := InitializeOTel(config.TelemetryConfig{
		ServiceName:   "tabclean",
		Tracing:       true,
		TraceExporter: "stdout",
	}, "test", nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	require.NotNil(t, providers.TracerProvider)

	ctx, span := providers.Tracer.Start(context.Background(), "split_rows")
	assert.True(t, span.SpanContext().IsValid())
	assert.Equal(t, span.SpanContext().TraceID().String(), GetTraceID(ctx))
	span.End()
}
