package app

import (
	"github.com/storefront/orderflow/internal/http/middleware"
	"github.com/storefront/orderflow/internal/platform/logger"
)

type Middleware struct {
	Auth *middleware.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, svcs Services) Middleware {
	return Middleware{
		Auth: middleware.NewAuthMiddleware(log, svcs.Auth),
	}
}
