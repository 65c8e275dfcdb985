package middleware

import (
	"strings"
	"time"

	"github.com/agencyops/agencyops/internal/logger"
	"github.com/agencyops/agencyops/internal/types"
	"github.com/gin-gonic/gin"
)

// RequestIDMiddleware tags the request with an id and the acting user. The
// user defaults to types.SystemUserID when X-User-ID is absent.
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST)
	}
	userID := strings.TrimSpace(c.GetHeader(types.HeaderUserID))
	if userID == "" {
		userID = types.SystemUserID
	}

	ctx := types.SetRequestID(c.Request.Context(), requestID)
	ctx = types.SetUserID(ctx, userID)
	c.Request = c.Request.WithContext(ctx)

	// Add headers for response
	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}

// RequestLogger logs one structured line per request
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", types.GetRequestID(c.Request.Context()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "error", c.Errors.Last().Error())
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			log.Errorw("request failed", fields...)
		case status >= 400:
			log.Warnw("request rejected", fields...)
		default:
			log.Infow("request served", fields...)
		}
	}
}
