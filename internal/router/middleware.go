package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shopa-beauty/storefront-api/pkg/global"
	"github.com/shopa-beauty/storefront-api/pkg/logging"
	"github.com/shopa-beauty/storefront-api/pkg/metrics"
)

const (
	RequestIDHeader   = "X-Request-ID"
	IdempotencyHeader = "Idempotency-Key"
	ReplayedHeader    = "Idempotent-Replayed"
)

// RequestIDMiddleware reuses the caller's X-Request-ID or mints one, and puts
// it on the request context for structured logs.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func MetricsMiddleware(m *metrics.ServerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		handler := c.FullPath()
		if handler == "" {
			handler = "unmatched"
		}
		m.Requests.WithLabelValues(handler, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
	}
}

// RequireUintQuery rejects the request unless the query parameter is a
// positive integer, and stores the parsed value under the same name.
func RequireUintQuery(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query(name)
		if raw == "" {
			c.JSON(http.StatusBadRequest, global.FieldError(name+" query parameter required", name, "required"))
			c.Abort()
			return
		}

		value, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || value == 0 {
			c.JSON(http.StatusBadRequest, global.FieldError("Invalid "+name, name, "invalid_format"))
			c.Abort()
			return
		}

		c.Set(name, uint(value))
		c.Next()
	}
}
