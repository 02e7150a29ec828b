package middleware

import (
	"net/http"
	"strconv"

	"github.com/yourorg/tag-service/internal/cooldown"
	"github.com/yourorg/tag-service/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Cooldown gates a route group behind the tiered limiter. The caller
// identity comes from the X-Caller-ID header set by the command layer.
// Store failures fail open: a broken limiter must not take tag reads down
// with it.
func Cooldown(gate *cooldown.Gate, tier cooldown.Tier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, err := strconv.ParseInt(c.GetHeader(CallerIDHeader), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid " + CallerIDHeader + " header"})
			c.Abort()
			return
		}
		c.Set("callerID", callerID)

		err = gate.Check(c.Request.Context(), callerID, tier)
		if err == nil {
			c.Next()
			return
		}

		if rle, ok := model.IsRateLimited(err); ok {
			c.Header("Retry-After", strconv.FormatFloat(rle.RetryAfter.Seconds(), 'f', 3, 64))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Cooldown not elapsed",
				"retry_after": rle.RetryAfter.Seconds(),
			})
			c.Abort()
			return
		}

		logger.Error("Cooldown check failed, allowing request", zap.Error(err),
			zap.Int64("caller_id", callerID), zap.String("tier", tier.String()))
		c.Next()
	}
}

// CallerID returns the caller identity stored by the Cooldown middleware.
func CallerID(c *gin.Context) int64 {
	id, _ := c.Get("callerID")
	callerID, _ := id.(int64)
	return callerID
}
