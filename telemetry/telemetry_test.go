package telemetry_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/kasuganosora/tilecombat/config"
	"github.com/kasuganosora/tilecombat/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_Disabled(t *testing.T) {
	tp, shutdown, err := telemetry.Setup(context.Background(), config.TelemetryConfig{})
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_ExportsToCollector(t *testing.T) {
	var hits atomic.Int32
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/traces" {
			hits.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer collector.Close()

	tp, shutdown, err := telemetry.Setup(context.Background(), config.TelemetryConfig{
		Enabled:  true,
		Endpoint: strings.TrimPrefix(collector.URL, "http://"),
		Insecure: true,
	})
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "combat")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	// Shutdown flushes the batcher synchronously.
	require.NoError(t, shutdown(context.Background()))
	assert.Equal(t, int32(1), hits.Load())
}
