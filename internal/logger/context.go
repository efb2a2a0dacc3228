package logger

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const RequestIDKey = "X-Request-ID"

// FromContext returns the global logger tagged with the request ID that the
// request-ID middleware stored on the gin context.
func FromContext(c *gin.Context) *zap.Logger {
	requestID := "unknown"
	if v, ok := c.Get(RequestIDKey); ok {
		if s, ok := v.(string); ok {
			requestID = s
		}
	} else if header := c.GetHeader(RequestIDKey); header != "" {
		requestID = header
	}
	return GetLogger().With(zap.String("request_id", requestID))
}
