package app

import (
	"github.com/storefront/orderflow/internal/http/handlers"
	"github.com/storefront/orderflow/internal/platform/logger"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Order   *handlers.OrderHandler
	Product *handlers.ProductHandler
	Status  *handlers.StatusWSHandler
}

func wireHandlers(log *logger.Logger, svcs Services) Handlers {
	return Handlers{
		Auth:    handlers.NewAuthHandler(svcs.Auth),
		Order:   handlers.NewOrderHandler(svcs.OrderCommands, svcs.OrderQueries),
		Product: handlers.NewProductHandler(svcs.Catalog),
		Status:  handlers.NewStatusWSHandler(log, svcs.StatusFeed),
	}
}
