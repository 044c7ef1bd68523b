package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"autochase/internal/logging"
)

const requestIDKey = "request_id"

// RequestIDMiddleware assigns each request a correlation id, honoring one
// supplied by the caller.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

func RequestLoggingMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		logger.WithRequest(c.GetString(requestIDKey)).
			Infof("Request: %s %s, Status: %d, Latency: %v", method, path, status, latency)
	}
}
