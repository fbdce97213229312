package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pattycroche/storefront/internal/infrastructure/logger"
	"github.com/pattycroche/storefront/internal/infrastructure/ratelimit"
	"github.com/pattycroche/storefront/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// RateLimit throttles callers by client IP. When the limiter fails the
// request is let through and the failure logged.
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := limiter.Take(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.GetGinLogger(c).Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(q.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(q.Remaining))
		if !q.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(q.RetryAfter.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.Fail(
				dto.ErrCodeRateLimited,
				"Too many orders in a short time, please wait a moment",
				GetRequestID(c),
			))
			return
		}
		c.Next()
	}
}
