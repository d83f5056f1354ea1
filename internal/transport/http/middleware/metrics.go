package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/ErlanBelekov/social-discovery/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency per route. Event streams stay
// open for minutes, so they are tracked as a gauge and kept out of the
// latency histogram.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		streaming := strings.Contains(c.GetHeader("Accept"), "text/event-stream")
		if streaming {
			metrics.EventStreamsActive.Inc()
			defer metrics.EventStreamsActive.Dec()
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		if !streaming {
			metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		}
	}
}
