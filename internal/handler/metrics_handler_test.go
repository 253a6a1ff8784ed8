package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dance-studio-api/internal/service"
)

func TestMetricsHandlerReady(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	c, w := newTestContext(http.MethodGet, "/ready", "")
	NewMetricsHandler(nil, map[string]Pinger{"postgres": ok, "redis": ok}).Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newTestContext(http.MethodGet, "/ready", "")
	NewMetricsHandler(nil, map[string]Pinger{"postgres": ok, "redis": down}).Ready(c)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/metrics", "")
	NewMetricsHandler(nil, nil).Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	metrics := service.NewMetricsService()
	metrics.RecordEnrollmentOperation("create", "success")
	c, w = newTestContext(http.MethodGet, "/metrics", "")
	NewMetricsHandler(metrics, nil).Prometheus(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `enrollment_operations_total{operation="create",outcome="success"} 1`)
}
