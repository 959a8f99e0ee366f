package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/storefront/orderflow/internal/http/handlers"
	"github.com/storefront/orderflow/internal/http/middleware"
	"github.com/storefront/orderflow/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthHandler    *handlers.AuthHandler
	OrderHandler   *handlers.OrderHandler
	ProductHandler *handlers.ProductHandler
	StatusHandler  *handlers.StatusWSHandler
	AuthMiddleware *middleware.AuthMiddleware
	AllowOrigins   []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Log))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/auth/register", cfg.AuthHandler.Register)
	router.POST("/auth/token", cfg.AuthHandler.Token)

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	protected.GET("/products", cfg.ProductHandler.ListByCategory)
	protected.GET("/products/:product_id", cfg.ProductHandler.Get)

	orders := protected.Group("/orders")
	orders.POST("/new", cfg.OrderHandler.Create)
	orders.GET("/list", cfg.OrderHandler.ListMine)
	orders.GET("/:order_id", cfg.OrderHandler.Get)
	orders.PATCH("/:order_id", cfg.OrderHandler.Update)
	orders.GET("/:order_id/ws", cfg.StatusHandler.Subscribe)
	orders.POST("/:order_id/begin", cfg.OrderHandler.Begin)
	orders.POST("/:order_id/ready", cfg.OrderHandler.Ready)
	orders.POST("/:order_id/delivery", cfg.OrderHandler.Delivery)
	orders.POST("/:order_id/complete", cfg.OrderHandler.Complete)
	orders.POST("/:order_id/cancel", cfg.OrderHandler.Cancel)

	// Only the full listing is a staff operation; transitions guard
	// themselves through the status machine.
	elevated := orders.Group("/")
	elevated.Use(cfg.AuthMiddleware.RequireElevated())
	elevated.GET("/all", cfg.OrderHandler.ListAll)

	return router
}
