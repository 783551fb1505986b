package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is the Gin context key for the request ID.
const ContextKeyRequestID = "request_id"

// maxRequestIDLen caps forwarded request ids so a client cannot inflate
// logs or response metadata with arbitrary payloads.
const maxRequestIDLen = 64

// RequestIDMiddleware tags every request with an ID, honoring a sane
// X-Request-ID from the client (proxies forward their own) and minting a
// uuid otherwise. The ID is echoed in the response header and in the
// envelope metadata.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" || len(reqID) > maxRequestIDLen {
			reqID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, reqID)
		c.Header("X-Request-ID", reqID)
		c.Next()
	}
}
