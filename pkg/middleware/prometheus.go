package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feyabloom/studio/pkg/metrics"
)

// PrometheusMiddleware Prometheus监控中间件.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		metrics.ActiveConnections.Inc()
		defer metrics.ActiveConnections.Dec()

		c.Next()

		// 使用路由模板作为标签，避免路径参数导致标签爆炸
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.RequestCounter.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.RequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
