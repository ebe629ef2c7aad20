package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	TraceIDKey    = "trace_id"
	TraceIDHeader = "X-Trace-ID"
)

// TraceID opens a server span for every request and tags the request with
// a trace id: the caller's X-Trace-ID if given, else the span's trace id
// when it is being recorded, else a fresh UUID. A nil tracer only tags.
func TraceID(tracer trace.Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var span trace.Span
		if tracer != nil {
			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			ctx, s := tracer.Start(c.Request.Context(), c.Request.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", c.Request.Method),
					attribute.String("http.route", route),
				))
			span = s
			c.Request = c.Request.WithContext(ctx)
			defer span.End()
		}

		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" && span != nil && span.SpanContext().HasTraceID() {
			traceID = span.SpanContext().TraceID().String()
		}
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)
		c.Next()

		if span != nil {
			status := c.Writer.Status()
			span.SetAttributes(attribute.Int("http.status_code", status))
			if status >= 500 {
				span.SetStatus(codes.Error, "server error")
			}
		}
	}
}

// GetTraceID retrieves the trace ID from the Gin context.
func GetTraceID(c *gin.Context) string {
	return c.GetString(TraceIDKey)
}
