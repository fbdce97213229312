package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okRouter(mw ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(mw...)
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return router
}

func TestNewCORSPolicy_Defaults(t *testing.T) {
	p := NewCORSPolicy(nil, nil, nil)
	assert.Contains(t, p.Methods, http.MethodPut)
	assert.Contains(t, p.Headers, SessionIDHeader)
	assert.Contains(t, p.Expose, SessionIDHeader)

	custom := NewCORSPolicy([]string{"https://a.example"}, []string{"GET"}, []string{"X-Custom"})
	assert.Equal(t, []string{"GET"}, custom.Methods)
	assert.Equal(t, []string{"X-Custom"}, custom.Headers)
}

func TestCORS(t *testing.T) {
	const shop = "https://pattycroche.com.br"

	tests := []struct {
		name        string
		origins     []string
		credentials bool
		method      string
		origin      string
		wantStatus  int
		wantOrigin  string
		wantCreds   string
	}{
		{name: "no origins configured", method: http.MethodGet, origin: shop, wantStatus: http.StatusOK},
		{name: "preflight without origins", method: http.MethodOptions, origin: shop, wantStatus: http.StatusNoContent},
		{name: "listed origin", origins: []string{shop}, credentials: true, method: http.MethodGet, origin: shop,
			wantStatus: http.StatusOK, wantOrigin: shop, wantCreds: "true"},
		{name: "unlisted origin", origins: []string{shop}, method: http.MethodGet, origin: "https://evil.example",
			wantStatus: http.StatusOK},
		{name: "wildcard drops credentials", origins: []string{"*"}, credentials: true, method: http.MethodOptions,
			origin: "https://any.example", wantStatus: http.StatusNoContent, wantOrigin: "*"},
		{name: "same-origin request", origins: []string{"*"}, method: http.MethodGet, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewCORSPolicy(tt.origins, nil, nil)
			p.Credentials = tt.credentials
			router := okRouter(CORS(p))

			req := httptest.NewRequest(tt.method, "/ping", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCreds, w.Header().Get("Access-Control-Allow-Credentials"))
			if tt.wantOrigin != "" {
				assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
				assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), SessionIDHeader)
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Methods"))
			}
		})
	}
}
