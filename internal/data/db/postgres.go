package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/storefront/orderflow/internal/platform/logger"
	"github.com/storefront/orderflow/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	host := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	port := utils.GetEnv("POSTGRES_PORT", "5432", log)
	user := utils.GetEnv("POSTGRES_USER", "postgres", log)
	password := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	name := utils.GetEnv("POSTGRES_NAME", "orderflow", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)

	serviceLog.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
