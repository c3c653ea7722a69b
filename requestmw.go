package main

import (
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-Id"

// validRequestID bounds what a caller may put into our logs and headers.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9-]{1,128}$`)

// RequestLogger tags each request with an id (the caller's X-Request-Id when
// it is well formed, a fresh UUID otherwise) and writes one access log line
// once the handler returns.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if !validRequestID.MatchString(id) {
			id = uuid.New().String()
		}
		c.Set("requestID", id)
		c.Header(requestIDHeader, id)

		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func requestID(c *gin.Context) string {
	return c.GetString("requestID")
}
