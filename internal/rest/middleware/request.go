package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kennelworks/kennelworks/internal/types"
)

// RequestIDMiddleware tags every request with an identifier that flows
// through the context into structured logs.
func RequestIDMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUID()
	}

	ctx = types.SetRequestID(ctx, requestID)
	c.Request = c.Request.WithContext(ctx)

	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}
