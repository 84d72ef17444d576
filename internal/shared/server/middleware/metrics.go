package middleware

import (
	"github.com/gin-gonic/gin"

	"resume-analyzer/internal/shared/metrics"
)

// Metrics counts requests by route template so ids do not explode label cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status())
	}
}
