package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
	return sr
}

func attrsOf(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestTracing_EmptyServiceDisables(t *testing.T) {
	sr := recordSpans(t)
	assert.Empty(t, Tracing(""))

	router := gin.New()
	router.Use(Tracing("")...)
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_NamesSpanAfterRoute(t *testing.T) {
	sr := recordSpans(t)

	router := gin.New()
	router.Use(RequestID(), Session())
	router.Use(Tracing("storefront-test")...)
	router.GET("/api/v1/catalog/products/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products/42", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	req.Header.Set(SessionIDHeader, "sess-1")
	router.ServeHTTP(httptest.NewRecorder(), req)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "HTTP GET /api/v1/catalog/products/:id", spans[0].Name())

	attrs := attrsOf(spans[0])
	assert.Equal(t, "req-1", attrs["request_id"].AsString())
	assert.Equal(t, "sess-1", attrs["session_id"].AsString())
}

func TestTracing_ClientErrors(t *testing.T) {
	tests := []struct {
		name       string
		withError  bool
		wantStatus codes.Code
	}{
		{name: "conflict with gin error", withError: true, wantStatus: codes.Error},
		{name: "plain not found", withError: false, wantStatus: codes.Unset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := recordSpans(t)

			router := gin.New()
			router.Use(Tracing("storefront-test")...)
			router.POST("/checkout/orders", func(c *gin.Context) {
				if tt.withError {
					_ = c.Error(assert.AnError)
					c.Status(http.StatusConflict)
					return
				}
				c.Status(http.StatusNotFound)
			})

			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/checkout/orders", nil))

			spans := sr.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, tt.wantStatus, spans[0].Status().Code)
			assert.NotZero(t, attrsOf(spans[0])["http.status_code"].AsInt64())
		})
	}
}
