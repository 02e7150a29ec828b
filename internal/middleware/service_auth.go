package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CallerIDHeader carries the end-caller identity forward from the command
// layer, which owns authentication of actual users.
const CallerIDHeader = "X-Caller-ID"

// serviceKeyHeader authenticates the calling service itself.
const serviceKeyHeader = "X-Service-Key"

// ServiceAuth verifies the shared service key on every request. The
// command layer is the only expected consumer of this API.
func ServiceAuth(serviceKey string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(serviceKeyHeader)
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(serviceKey)) != 1 {
			logger.Warn("Rejected request with invalid service key",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid service key"})
			c.Abort()
			return
		}

		c.Next()
	}
}
