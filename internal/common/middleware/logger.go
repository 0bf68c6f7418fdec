package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/open-builders/giveaway-bot/internal/common/logger"
	"github.com/open-builders/giveaway-bot/internal/common/metrics"
)

func Logger() gin.HandlerFunc {
	log := logger.Component("http")
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		log.Info().
			Str("request_id", getRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Int("body_size", c.Writer.Size()).
			Msg("Request processed")
	}
}

// Metrics records request counts and latency per route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.RequestCounter.WithLabelValues(status, c.Request.Method, path).Inc()
		metrics.RequestDuration.WithLabelValues(status, c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
