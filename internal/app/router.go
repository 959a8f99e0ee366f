package app

import (
	"github.com/gin-gonic/gin"

	"github.com/storefront/orderflow/internal/platform/logger"
	"github.com/storefront/orderflow/internal/server"
)

func wireRouter(log *logger.Logger, cfg Config, h Handlers, mw Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		Log:            log,
		AuthHandler:    h.Auth,
		OrderHandler:   h.Order,
		ProductHandler: h.Product,
		StatusHandler:  h.Status,
		AuthMiddleware: mw.Auth,
		AllowOrigins:   cfg.AllowOrigins,
	})
}
