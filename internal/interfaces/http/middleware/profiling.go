package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pattycroche/storefront/internal/infrastructure/telemetry"
)

// Profiling labels CPU samples of matched API routes with the method, the
// route pattern and its resource so profiles can be split per endpoint.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return passThrough
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || route == "/health" {
			c.Next()
			return
		}
		telemetry.Labeled(c.Request.Context(), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		},
			telemetry.LabelMethod, c.Request.Method,
			telemetry.LabelRoute, route,
			telemetry.LabelResource, resource(route),
		)
	}
}

// resource is the first literal segment after "/api/vN":
// "/api/v1/shipping/quotes" gives "shipping".
func resource(route string) string {
	rest := strings.TrimPrefix(route, "/")
	if after, ok := strings.CutPrefix(rest, "api/"); ok {
		rest = after
		if version, tail, found := strings.Cut(rest, "/"); found && isVersion(version) {
			rest = tail
		} else if isVersion(rest) {
			rest = ""
		}
	}
	head, _, _ := strings.Cut(rest, "/")
	if strings.HasPrefix(head, ":") || strings.HasPrefix(head, "*") {
		return ""
	}
	return head
}

func isVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	return strings.Trim(s[1:], "0123456789") == ""
}
