package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerRequestID  = "X-Request-ID"
	contextRequestID = "request_id"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(contextRequestID, requestID)
		c.Header(headerRequestID, requestID)

		c.Next()
	}
}
