package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	traceIDKey    = "trace_id"
	TraceIDHeader = "X-Trace-ID"
)

// TraceID tags each request with a trace ID, honoring one supplied by the
// caller and minting a UUID otherwise. The ID is echoed in the response
// header so clients can quote it in bug reports.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(TraceIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(traceIDKey, id)
		c.Header(TraceIDHeader, id)
		c.Next()
	}
}

// GetTraceID returns the request's trace ID, or "" outside a traced request.
func GetTraceID(c *gin.Context) string {
	return c.GetString(traceIDKey)
}
