package middleware

import (
	"strconv"
	"time"

	"zipcheck-go/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics 는 요청 수와 지연 시간을 Prometheus 지표로 기록하는 미들웨어다.
// path 레이블에는 카디널리티 폭발을 막기 위해 라우트 템플릿을 쓴다.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(startTime).Seconds())
	}
}
