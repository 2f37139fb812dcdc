package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/examsync-backend/internal/observability"
)

// Metrics records per-route request counts and latency. Requests to skipRoutes (scrapes and
// probes) pass through uncounted so they do not drown out client traffic.
func Metrics(m *observability.Metrics, skipRoutes ...string) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	skip := make(map[string]struct{}, len(skipRoutes))
	for _, r := range skipRoutes {
		skip[r] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := skip[c.FullPath()]; ok {
			c.Next()
			return
		}
		m.ApiInflightInc()
		start := time.Now()
		defer func() {
			m.ApiInflightDec()
			// Unmatched paths share one label to keep route cardinality bounded.
			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveAPI(c.Request.Method, route, observability.StatusLabel(c.Writer.Status()), time.Since(start))
		}()
		c.Next()
	}
}
