package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func init() { gin.SetMode(gin.TestMode) }

func newTraceRouter(tracer trace.Tracer) *gin.Engine {
	r := gin.New()
	r.Use(TraceID(tracer))
	r.GET("/trace", func(c *gin.Context) {
		c.String(http.StatusOK, GetTraceID(c))
	})
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusBadGateway) })
	return r
}

func get(r http.Handler, path string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTraceID_GeneratedWithoutTracer(t *testing.T) {
	w := get(newTraceRouter(nil), "/trace", nil)
	require.Equal(t, http.StatusOK, w.Code)
	id := w.Body.String()
	assert.Len(t, id, 36)
	assert.Equal(t, id, w.Header().Get(TraceIDHeader))
}

func TestTraceID_Provided(t *testing.T) {
	w := get(newTraceRouter(nil), "/trace", map[string]string{TraceIDHeader: "my-custom-trace"})
	assert.Equal(t, "my-custom-trace", w.Body.String())
	assert.Equal(t, "my-custom-trace", w.Header().Get(TraceIDHeader))
}

func TestTraceID_UniquePerRequest(t *testing.T) {
	r := newTraceRouter(nil)
	assert.NotEqual(t, get(r, "/trace", nil).Body.String(), get(r, "/trace", nil).Body.String())
}

func TestTraceID_UsesSpanTraceID(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	r := newTraceRouter(tp.Tracer("test"))

	w := get(r, "/trace", nil)
	id := w.Body.String()
	assert.Len(t, id, 32)

	get(r, "/fail", nil)
	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "GET /trace", spans[0].Name())
	assert.Equal(t, id, spans[0].SpanContext().TraceID().String())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())
	assert.Equal(t, "GET /fail", spans[1].Name())
	assert.Equal(t, "Error", spans[1].Status().Code.String())
}

func TestGetTraceID_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "", GetTraceID(c))
}
