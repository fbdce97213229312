package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pattycroche/storefront/internal/interfaces/http/dto"
)

// BodyLimit caps request bodies at limit bytes. A declared Content-Length
// over the limit is refused with 413 up front. Bodies of unknown length are
// wrapped so reading past the limit fails with *http.MaxBytesError, which
// handlers report as 413 too. GET, HEAD and OPTIONS pass untouched.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.Fail(
				dto.ErrCodeRequestTooLarge, "Request body is too large", GetRequestID(c)))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
