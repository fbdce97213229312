package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pattycroche/storefront/internal/infrastructure/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing returns the server span middleware chain for service: the otelgin
// handler followed by annotateSpan. An empty service disables tracing and
// returns no handlers. RequestID and Session must run first.
func Tracing(service string) []gin.HandlerFunc {
	if service == "" {
		return nil
	}
	return []gin.HandlerFunc{
		otelgin.Middleware(service, otelgin.WithSpanNameFormatter(spanName)),
		annotateSpan,
	}
}

// spanName yields "HTTP GET /api/v1/catalog/products/:id", falling back to
// the raw path for unmatched routes.
func spanName(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	return "HTTP " + c.Request.Method + " " + route
}

// annotateSpan tags the server span with the correlation ids. Client errors
// are not failures for otelgin, so a 4xx carrying a gin error marks the span.
func annotateSpan(c *gin.Context) {
	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		c.Next()
		return
	}

	if id := GetRequestID(c); id != "" {
		span.SetAttributes(attribute.String("request_id", id))
	}
	if id := GetSessionID(c); id != "" {
		span.SetAttributes(telemetry.AttrSessionID.String(id))
	}

	c.Next()

	status := c.Writer.Status()
	if status < http.StatusBadRequest || status >= http.StatusInternalServerError {
		return
	}
	span.SetAttributes(attribute.Int("http.status_code", status))
	if last := c.Errors.Last(); last != nil {
		span.SetStatus(codes.Error, last.Error())
	}
}
