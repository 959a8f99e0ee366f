package app

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/storefront/orderflow/internal/data/db"
	"github.com/storefront/orderflow/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet)
	handlerset := wireHandlers(log, serviceset)
	middleware := wireMiddleware(log, serviceset)
	router := wireRouter(log, cfg, handlerset, middleware)

	return &App{
		Log:      log,
		DB:       theDB,
		Router:   router,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
	}, nil
}

func (a *App) Run() error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Starting HTTP server", "addr", a.Cfg.HTTPAddr)
	return a.Router.Run(a.Cfg.HTTPAddr)
}

func (a *App) Close() {
	if a == nil || a.Log == nil {
		return
	}
	a.Log.Sync()
}
