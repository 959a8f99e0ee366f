package app

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/storefront/orderflow/internal/platform/logger"
	"github.com/storefront/orderflow/internal/services"
)

type Services struct {
	Auth          services.AuthService
	Catalog       services.CatalogService
	OrderCommands services.OrderCommandService
	OrderQueries  services.OrderQueryService
	StatusFeed    services.StatusFeedService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos) Services {
	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		log.Info("Catalog cache enabled", "addr", cfg.RedisAddr)
	}

	catalog := services.NewCatalogService(log, repos.Product, cache)

	return Services{
		Auth:          services.NewAuthService(db, log, repos.User, cfg.JWTSecretKey, cfg.TokenTTL),
		Catalog:       catalog,
		OrderCommands: services.NewOrderCommandService(db, log, repos.Order, catalog),
		OrderQueries:  services.NewOrderQueryService(db, log, repos.Order, repos.OrderEvents, cfg.PageSize),
		StatusFeed:    services.NewStatusFeedService(log, repos.OrderEvents, cfg.PollInterval, cfg.HeartbeatTimeout),
	}
}
