package middleware

import (
	"strconv"
	"time"

	"github.com/bengalurutaxi/btc-backend/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency per route template, so
// /api/rides/accept/:rideId is one series rather than one per ride.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.RequestStarted()
		defer func() {
			path := c.FullPath()
			if path == "" {
				path = "unmatched"
			}
			metrics.RequestFinished(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
		}()

		c.Next()
	}
}

// NoCache marks API responses as not cacheable.
func NoCache() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store, no-cache, must-revalidate, private")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Next()
	}
}

func formatUint(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
