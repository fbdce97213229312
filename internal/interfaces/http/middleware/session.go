package middleware

import (
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pattycroche/storefront/internal/infrastructure/logger"
)

// MaxSessionIDLength bounds client supplied session ids
const MaxSessionIDLength = 128

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Session resolves the shopper session from the X-Session-ID header. A
// missing or malformed id is replaced by a fresh one, which is echoed back
// so the client can keep using it.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionIDHeader)
		if !ValidSessionID(sessionID) {
			sessionID = uuid.NewString()
		}
		c.Set(logger.GinSessionIDKey, sessionID)
		c.Writer.Header().Set(SessionIDHeader, sessionID)
		c.Next()
	}
}

// ValidSessionID reports whether id is acceptable as a session key
func ValidSessionID(id string) bool {
	return id != "" && len(id) <= MaxSessionIDLength && sessionIDPattern.MatchString(id)
}

// GetSessionID returns the session id resolved by Session
func GetSessionID(c *gin.Context) string {
	return c.GetString(logger.GinSessionIDKey)
}
