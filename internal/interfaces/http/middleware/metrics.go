package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pattycroche/storefront/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// HTTPMetrics records request count, latency, response size and in-flight
// requests per route pattern. A nil meter or an instrument failure yields
// a pass-through middleware.
func HTTPMetrics(meter metric.Meter, logger *zap.Logger) gin.HandlerFunc {
	if meter == nil {
		return passThrough
	}

	in := telemetry.NewInstruments(meter)
	requests := in.Counter("http_server_request_total", "HTTP requests served", "{request}")
	latency := in.Histogram("http_server_request_duration_seconds", "HTTP request latency", "s",
		telemetry.HTTPDurationBuckets...)
	size := in.Histogram("http_server_response_size_bytes", "HTTP response body size", "By",
		telemetry.ResponseSizeBuckets...)
	inFlight := in.Gauge("http_server_active_requests", "HTTP requests in progress", "{request}")
	if err := in.Err(); err != nil {
		if logger != nil {
			logger.Warn("HTTP metrics disabled", zap.Error(err))
		}
		return passThrough
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		inFlight.Add(ctx, 1)
		defer inFlight.Add(ctx, -1)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		byRoute := metric.WithAttributes(
			telemetry.AttrHTTPMethod.String(c.Request.Method),
			telemetry.AttrHTTPRoute.String(route),
		)
		requests.Add(ctx, 1, byRoute, metric.WithAttributes(telemetry.AttrHTTPStatusCode.Int(c.Writer.Status())))
		latency.Record(ctx, time.Since(start).Seconds(), byRoute)
		if n := c.Writer.Size(); n > 0 {
			size.Record(ctx, float64(n), byRoute)
		}
	}
}

func passThrough(c *gin.Context) { c.Next() }
