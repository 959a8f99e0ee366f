package db

import (
	"gorm.io/gorm"

	"github.com/storefront/orderflow/internal/data/repos/order"
	"github.com/storefront/orderflow/internal/domain/catalog"
	"github.com/storefront/orderflow/internal/domain/user"
)

func AutoMigrateAll(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&user.User{},

		&catalog.Category{},
		&catalog.Product{},

		&order.DeliveryInfoModel{},
		&order.Model{},
		&order.EventModel{},
	)
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	return nil
}
