package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pattycroche/storefront/internal/infrastructure/ratelimit"
	"github.com/pattycroche/storefront/internal/interfaces/http/handler"
	"github.com/pattycroche/storefront/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAPI_Mount(t *testing.T) {
	var hits []string
	record := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) {
			hits = append(hits, name)
			c.Status(http.StatusOK)
		}
	}
	api := API{Version: "v2", Areas: []Area{{
		Prefix: "/cart",
		Middleware: []gin.HandlerFunc{func(c *gin.Context) {
			hits = append(hits, "mw")
			c.Next()
		}},
		Routes: []Route{
			Get("", record("get")),
			Post("/items", record("post")),
			Put("/items/:id", record("put")),
			Delete("/items/:id", record("delete")),
		},
	}}}

	engine := gin.New()
	api.Mount(engine)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v2/cart"},
		{http.MethodPost, "/api/v2/cart/items"},
		{http.MethodPut, "/api/v2/cart/items/1"},
		{http.MethodDelete, "/api/v2/cart/items/1"},
	} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusOK, w.Code, tc.method+" "+tc.path)
	}
	assert.Equal(t, []string{"mw", "get", "mw", "post", "mw", "put", "mw", "delete"}, hits)
}

func TestAPI_Endpoints(t *testing.T) {
	noop := func(*gin.Context) {}
	api := API{Areas: []Area{
		{Prefix: "/cart", Routes: []Route{Get("", noop), Delete("/items/:id", noop)}},
		{Prefix: "/shipping", Routes: []Route{Post("/quotes", noop)}},
	}}

	assert.Equal(t, "/api/v1", api.Base())
	assert.Equal(t, []string{
		"GET /api/v1/cart",
		"DELETE /api/v1/cart/items/:id",
		"POST /api/v1/shipping/quotes",
	}, api.Endpoints())
}

func TestNewEngine_Routes(t *testing.T) {
	h := Handlers{
		Catalog:  handler.NewCatalogHandler(nil),
		Cart:     handler.NewCartHandler(nil),
		Shipping: handler.NewShippingHandler(nil),
		Checkout: handler.NewCheckoutHandler(nil, nil),
		Health:   handler.NewHealthHandler("test", nil),
	}
	engine := NewEngine(EngineConfig{ServiceName: "storefront"}, h, zap.NewNop())

	registered := map[string]bool{}
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}
	for _, want := range []string{
		"GET /health",
		"GET /api/v1/catalog/products",
		"GET /api/v1/catalog/products/:id",
		"GET /api/v1/catalog/products/:id/listing-prices",
		"GET /api/v1/catalog/categories",
		"GET /api/v1/cart",
		"DELETE /api/v1/cart",
		"POST /api/v1/cart/items",
		"PUT /api/v1/cart/items/:id",
		"DELETE /api/v1/cart/items/:id",
		"GET /api/v1/shipping/address/:postalCode",
		"POST /api/v1/shipping/quotes",
		"POST /api/v1/checkout/orders",
		"POST /api/v1/checkout/channel",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func TestNewEngine_MiddlewareStack(t *testing.T) {
	check := func(context.Context) error { return nil }
	h := Handlers{Health: handler.NewHealthHandler("test", map[string]handler.HealthCheck{"database": check})}
	engine := NewEngine(EngineConfig{
		ServiceName: "storefront",
		CORS:        middleware.NewCORSPolicy([]string{"https://pattycroche.com.br"}, nil, nil),
		MaxBodySize: 1024,
	}, h, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://pattycroche.com.br")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.NotEmpty(t, w.Header().Get(middleware.SessionIDHeader))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "https://pattycroche.com.br", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewEngine_SubmitLimiter(t *testing.T) {
	limiter := ratelimit.NewMemory(1, time.Minute)

	h := Handlers{Checkout: handler.NewCheckoutHandler(nil, nil)}
	engine := NewEngine(EngineConfig{SubmitLimiter: limiter}, h, zap.NewNop())

	// invalid bodies never reach the service, which keeps the nil submitter safe
	first := httptest.NewRecorder()
	engine.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/v1/checkout/orders", nil))
	assert.Equal(t, http.StatusBadRequest, first.Code)

	second := httptest.NewRecorder()
	engine.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/v1/checkout/orders", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestNewEngine_RecoversPanics(t *testing.T) {
	engine := NewEngine(EngineConfig{}, Handlers{}, zap.NewNop())
	engine.GET("/panic", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestNewEngine_Swagger(t *testing.T) {
	t.Run("disabled by default", func(t *testing.T) {
		engine := NewEngine(EngineConfig{}, Handlers{}, zap.NewNop())
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("serves the UI when enabled", func(t *testing.T) {
		engine := NewEngine(EngineConfig{Swagger: true}, Handlers{}, zap.NewNop())
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "swagger")
	})
}
