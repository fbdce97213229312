// Package middleware holds the gin middleware of the storefront API.
package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CORSPolicy lists what cross-origin callers may do. With no Origins every
// cross-origin request is refused; "*" admits any origin but never with
// credentials.
type CORSPolicy struct {
	Origins     []string
	Methods     []string
	Headers     []string
	Expose      []string
	Credentials bool
	MaxAge      time.Duration
}

// NewCORSPolicy fills in the storefront methods and headers when the
// configuration leaves them empty.
func NewCORSPolicy(origins, methods, headers []string) CORSPolicy {
	p := CORSPolicy{
		Origins: origins,
		Methods: methods,
		Headers: headers,
		Expose:  []string{RequestIDHeader, SessionIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:  12 * time.Hour,
	}
	if len(p.Methods) == 0 {
		p.Methods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	}
	if len(p.Headers) == 0 {
		p.Headers = []string{"Content-Type", "Accept", "Origin", RequestIDHeader, SessionIDHeader}
	}
	return p
}

// allow returns the Access-Control-Allow-Origin value for origin, or "".
func (p CORSPolicy) allow(origin string) string {
	switch {
	case origin == "":
		return ""
	case slices.Contains(p.Origins, "*"):
		return "*"
	case slices.Contains(p.Origins, origin):
		return origin
	}
	return ""
}

// CORS answers preflights with 204 and decorates admitted origins.
func CORS(p CORSPolicy) gin.HandlerFunc {
	fixed := http.Header{}
	fixed.Set("Access-Control-Allow-Methods", strings.Join(p.Methods, ", "))
	fixed.Set("Access-Control-Allow-Headers", strings.Join(p.Headers, ", "))
	if len(p.Expose) > 0 {
		fixed.Set("Access-Control-Expose-Headers", strings.Join(p.Expose, ", "))
	}
	if p.MaxAge > 0 {
		fixed.Set("Access-Control-Max-Age", strconv.Itoa(int(p.MaxAge/time.Second)))
	}

	return func(c *gin.Context) {
		if allowed := p.allow(c.GetHeader("Origin")); allowed != "" {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", allowed)
			h.Add("Vary", "Origin")
			if p.Credentials && allowed != "*" {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			for k, v := range fixed {
				h[k] = v
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
