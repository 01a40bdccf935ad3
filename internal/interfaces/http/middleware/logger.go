package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/pkg/logger"
)

// LoggerMiddleware logs every HTTP request through the structured logger.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		if raw != "" {
			path = path + "?" + raw
		}

		logger.LogRequest(c.Request.Context(), c.Request.Method, path, c.Writer.Status(), latency, c.ClientIP())
	}
}
