package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// apiKeyHeader carries the shared secret on every protected request.
const apiKeyHeader = "X-API-Key"

// RequireAPIKey guards a route group with a shared-secret header check. A
// missing server-side key is a deployment fault and answers 500 so the
// endpoints never run unprotected; a wrong or absent client key answers 401.
func RequireAPIKey(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expected == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				gin.H{"error": "API key is not configured on the server"})
			return
		}
		if c.GetHeader(apiKeyHeader) != expected {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"error": "Invalid or missing API key"})
			return
		}
		c.Next()
	}
}

// RequestLogger emits one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
