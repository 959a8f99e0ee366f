package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storefront/orderflow/internal/pkg/ctxutil"
	"github.com/storefront/orderflow/internal/platform/logger"
)

func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil {
			return
		}

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if principal := ctxutil.GetPrincipal(c.Request.Context()); principal != nil {
			fields = append(fields, "user_id", principal.ID.String())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
