package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gridgate-dev/gridgate/internal/ratelimit"
)

// HandleLimiter returns per-bucket rate limiter state
func HandleLimiter(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"throttled": limiter.IsThrottled(),
			"buckets":   limiter.Snapshots(),
		})
	}
}
