package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awantoch/contentkit/config"
)

func TestInit(t *testing.T) {
	ctx := context.Background()

	shutdown, err := Init(ctx, &config.Config{})
	require.NoError(t, err)
	require.NoError(t, shutdown(ctx))

	shutdown, err = Init(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, shutdown(ctx))

	shutdown, err = Init(ctx, &config.Config{Tracing: &config.TracingConfig{ServiceName: "test-service", Exporter: "stdout"}})
	require.NoError(t, err)
	require.NoError(t, shutdown(ctx))

	shutdown, err = Init(ctx, &config.Config{Tracing: &config.TracingConfig{Exporter: "otlp", Endpoint: "http://localhost:4318"}})
	require.NoError(t, err)
	assert.NotNil(t, shutdown)

	shutdown, err = Init(ctx, &config.Config{Tracing: &config.TracingConfig{Exporter: "otlp"}})
	require.NoError(t, err)
	assert.NotNil(t, shutdown)

	_, err = Init(ctx, &config.Config{Tracing: &config.TracingConfig{Exporter: "jaeger"}})
	require.Error(t, err)
}

func TestObserveRender(t *testing.T) {
	before := testutil.ToFloat64(templateRendersTotal.WithLabelValues("evaluation_error"))
	ObserveRender("evaluation_error", time.Millisecond)
	after := testutil.ToFloat64(templateRendersTotal.WithLabelValues("evaluation_error"))
	assert.Equal(t, before+1, after)
}

func TestWrapHandler(t *testing.T) {
	h := WrapHandler("create-test", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("part1"))
		_, _ = w.Write([]byte("part2"))
	}))

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("create-test", "POST", "201"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/create", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "part1part2", rec.Body.String())
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("create-test", "POST", "201")))
}

func TestMetricsHandler(t *testing.T) {
	ObserveRender("ok", time.Microsecond)

	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "contentkit_template_renders_total")
}
