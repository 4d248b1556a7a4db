package server

import (
	"time"

	"github.com/danmuck/docwire/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Context keys the document handlers fill in for the middleware below.
const (
	ctxSchema    = "docwire.schema"
	ctxField     = "docwire.field"
	ctxWireBytes = "docwire.wire_bytes"
)

// markPayload records which registered schema a request resolved to and
// how many wire bytes it carried.
func markPayload(c *gin.Context, schemaName string, n int) {
	c.Set(ctxSchema, schemaName)
	c.Set(ctxWireBytes, n)
}

func markField(c *gin.Context, path string) {
	c.Set(ctxField, path)
}

// requestSchema is empty for routes that do not address a registered schema,
// which keeps unknown names out of metric labels.
func requestSchema(c *gin.Context) string {
	return c.GetString(ctxSchema)
}

func routePath(c *gin.Context, fallback string) string {
	if path := c.FullPath(); path != "" {
		return path
	}
	return fallback
}

// RequestLogger writes one line per request. Document routes add the schema,
// the payload size and, on rejection, the offending field path.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400:
			event = logger.Warn()
		}

		event = event.
			Str("method", c.Request.Method).
			Str("path", routePath(c, c.Request.URL.Path)).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Int("bytes", c.Writer.Size())
		if name := requestSchema(c); name != "" {
			event = event.Str("schema", name).Int("wire_bytes", c.GetInt(ctxWireBytes))
		}
		if field := c.GetString(ctxField); field != "" {
			event = event.Str("field", field)
		}
		event.Msg("http_request")
	}
}

func RequestMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		observability.RecordHTTPRequest(
			c.Request.Method,
			routePath(c, "unmatched"),
			requestSchema(c),
			c.Writer.Status(),
			time.Since(start),
		)
	}
}
