package testutil

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	orderrepo "github.com/storefront/orderflow/internal/data/repos/order"
	"github.com/storefront/orderflow/internal/domain/catalog"
	"github.com/storefront/orderflow/internal/domain/user"
	"github.com/storefront/orderflow/internal/platform/logger"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB opens a fresh in-memory sqlite database per test. Shared-cache DSN keeps
// the schema visible across the pooled connections gorm opens.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("failed to open test db: %v", err)
	}

	if err := autoMigrateAll(db); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}

	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

func autoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},

		&catalog.Category{},
		&catalog.Product{},

		&orderrepo.DeliveryInfoModel{},
		&orderrepo.Model{},
		&orderrepo.EventModel{},
	)
}
