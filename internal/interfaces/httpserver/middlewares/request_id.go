package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"justiniano-server/chat-gateway/internal/utils/platformerrors"
)

const requestIDHeader = "X-Request-Id"

// RequestID propagates the caller's request id, minting one when absent. The
// id is echoed on the response, kept in the gin context for log correlation,
// and stored in the request context so error responses carry it too.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}

		c.Writer.Header().Set(requestIDHeader, id)
		c.Set(requestIDHeader, id)
		c.Request = c.Request.WithContext(
			platformerrors.WithRequestID(c.Request.Context(), id))

		c.Next()
	}
}

// RequestIDFromContext returns the request id stored in the gin context.
func RequestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDHeader); ok {
		if id, ok := val.(string); ok {
			return id
		}
	}
	return ""
}
