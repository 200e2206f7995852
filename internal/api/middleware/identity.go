package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/themobileprof/medcompanion-be/internal/logger"
)

const (
	HeaderUserID    = "X-User-ID"
	HeaderRequestID = "X-Request-ID"

	userIDKey    = "user_id"
	requestIDKey = "request_id"
)

// UserIdentity resolves the caller's user identifier for this request.
// The X-User-ID header wins, then the user_id query parameter (websocket
// clients cannot set headers), then defaultID. Invalid values are ignored.
func UserIdentity(defaultID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := defaultID
		for _, raw := range []string{c.GetHeader(HeaderUserID), c.Query("user_id")} {
			if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
				id = n
				break
			}
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

// UserID returns the identifier set by UserIdentity
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// RequestID tags each request with an id, reusing the caller's X-Request-ID when present
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// GetRequestID returns the id set by RequestID
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLogger writes one operational log line per request
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		kv := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"request_id", GetRequestID(c),
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "errors", c.Errors.String())
		}

		switch {
		case c.Writer.Status() >= 500:
			log.Error("HTTP request", kv...)
		case c.Writer.Status() >= 400:
			log.Warn("HTTP request", kv...)
		default:
			log.Info("HTTP request", kv...)
		}
	}
}
