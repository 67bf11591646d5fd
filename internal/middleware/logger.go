package middleware

import (
	"time"

	"ghpool-go/internal/logging"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// RequestLogger logs every HTTP request with latency and status.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		extras := log.Fields{
			"status":     c.Writer.Status(),
			"latency_ms": logging.DurationMS(latency),
			"user_agent": c.Request.UserAgent(),
			"method":     method,
			"path":       path,
		}
		logging.WithReq(c, extras).Info("http_request")
	}
}
