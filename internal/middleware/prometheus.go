package middleware

import (
	"strconv"
	"time"

	"marketplace/internal/observability"

	"github.com/gin-gonic/gin"
)

// PrometheusMiddleware tracks request counts, latency and in-flight requests
func PrometheusMiddleware(metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Websocket subscriptions live for minutes and would skew latency.
		if c.GetHeader("Upgrade") == "websocket" {
			c.Next()
			return
		}

		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()

		method := c.Request.Method
		endpoint := c.FullPath() // route pattern, e.g. /api/v1/tasks/:id
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
	}
}
