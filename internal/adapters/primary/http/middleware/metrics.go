package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "artifact_versions",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by route and status.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route", "status"})

// Metrics records request latency labelled by the matched route template, so
// ids in the path do not create new series.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
