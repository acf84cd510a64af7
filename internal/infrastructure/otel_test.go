package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(nil, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelInitialization_Disabled(t *testing.T) {
	cfg := &OTelConfig{ServiceName: ServiceName, TraceExporter: "none", MetricExporter: "none"}
	providers, err := InitializeOTel(cfg, discardLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)
	assert.NotNil(t, providers.Meter, "noop meter expected")

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	RecordUpload(context.Background(), metrics, UploadOutcome{RowsRead: 3})
}

func TestOTelInitialization_UnsupportedExporter(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{TraceExporter: "zipkin"}, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported trace exporter")

	_, err = InitializeOTel(&OTelConfig{MetricExporter: "statsd"}, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported metric exporter")
}

func TestRecordUpload_ExposedOnPrometheus(t *testing.T) {
	providers, err := InitializeOTel(nil, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	RecordUpload(ctx, metrics, UploadOutcome{RowsRead: 10, SummaryRemoved: 2, EmptyRemoved: 1, Duration: 50 * time.Millisecond})
	RecordUpload(ctx, metrics, UploadOutcome{Err: errors.New("missing column")})
	RecordUpload(ctx, nil, UploadOutcome{})

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "uploads_total")
	assert.Contains(t, body, "upload_failures_total")
	assert.Contains(t, body, "asset_rows_removed_total")
	assert.Contains(t, body, `reason="summary"`)
	assert.Contains(t, body, "go_goroutines")
}
