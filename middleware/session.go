package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ContextSessionID = "sessionId"
	SessionHeader    = "X-Session-ID"
)

// SessionMiddleware assigns an X-Session-ID when the client did not send one.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionId := c.GetHeader(SessionHeader)
		if sessionId == "" {
			sessionId = uuid.NewString()
		}

		c.Set(ContextSessionID, sessionId)
		c.Writer.Header().Set(SessionHeader, sessionId)

		c.Next()
	}
}

func SessionID(c *gin.Context) string {
	return c.GetString(ContextSessionID)
}
