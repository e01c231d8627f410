package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/resensebox/Mindful-Libraries-sub000/common/logger"
)

// Logger writes one line per request. Query strings are left out since the
// form fields carry personal details.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		if route := c.FullPath(); route != "" {
			ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{Route: &route})
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()

		status := c.Writer.Status()
		ctx := c.Request.Context()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}

		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			slog.ErrorContext(ctx, "request failed", attrs...)
		case status >= 400:
			slog.WarnContext(ctx, "request error", attrs...)
		default:
			slog.InfoContext(ctx, "request", attrs...)
		}
	}
}
