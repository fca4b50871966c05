package middleware

import (
	"time"

	"makazi/services/logger"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request, tagged with the session id.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		entry := log.WithField("session", SessionID(c)).
			WithField("status", c.Writer.Status()).
			WithField("latency", time.Since(start).String())
		if len(c.Errors) > 0 {
			entry.Warn("%s %s: %s", c.Request.Method, path, c.Errors.String())
			return
		}
		if c.Writer.Status() >= 500 {
			entry.Error("%s %s", c.Request.Method, path)
			return
		}
		entry.Info("%s %s", c.Request.Method, path)
	}
}
