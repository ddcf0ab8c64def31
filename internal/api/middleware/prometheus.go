package middleware

import (
	"strconv"
	"time"

	"github.com/Domenick1991/hotelbooking/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// Prometheus records request count and latency labelled by route template,
// so /reservation/by-room/3 and /reservation/by-room/4 share a series.
func Prometheus(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
