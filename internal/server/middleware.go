package server

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	HeaderUserID     = "X-User-ID"
	HeaderTimezone   = "X-Timezone"
	contextUserIDKey = "user_id"
)

// UserRequired trusts the user id set by the gateway after authentication.
func (s *Server) UserRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderUserID)))
		if userID == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(contextUserIDKey, userID)
		c.Next()
	}
}

func userIDFromContext(c *gin.Context) string {
	return c.GetString(contextUserIDKey)
}

// requestTimezone prefers the body value, then the timezone query
// parameter, then the X-Timezone header.
func requestTimezone(c *gin.Context, fromBody string) string {
	if tz := strings.TrimSpace(fromBody); tz != "" {
		return tz
	}
	if tz := strings.TrimSpace(c.Query("timezone")); tz != "" {
		return tz
	}
	return strings.TrimSpace(c.GetHeader(HeaderTimezone))
}
