package app

import (
	"gorm.io/gorm"

	catalogrepo "github.com/storefront/orderflow/internal/data/repos/catalog"
	orderrepo "github.com/storefront/orderflow/internal/data/repos/order"
	userrepo "github.com/storefront/orderflow/internal/data/repos/user"
	"github.com/storefront/orderflow/internal/platform/logger"
)

type Repos struct {
	User        userrepo.Repo
	Product     catalogrepo.ProductRepo
	Order       orderrepo.Repo
	OrderEvents orderrepo.EventStore
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	events := orderrepo.NewEventStore(db, log)
	return Repos{
		User:        userrepo.NewRepo(db, log),
		Product:     catalogrepo.NewProductRepo(db, log),
		Order:       orderrepo.NewRepo(db, events, log),
		OrderEvents: events,
	}
}
