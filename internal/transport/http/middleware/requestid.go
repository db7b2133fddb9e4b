package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// GetRequestID returns the id assigned by RequestID, "" outside of it.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDHeader)
}

// RequestID tags every request with a correlation id. A caller-supplied
// X-Request-ID is trusted as long as it parses as a UUID; anything else
// is replaced so log lines cannot be forged onto a foreign trace.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.Request.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(rid); err != nil {
			rid = uuid.NewString()
		}
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Set(requestIDHeader, rid)
		c.Next()
	}
}
