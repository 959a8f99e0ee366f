package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/storefront/orderflow/internal/domain/catalog"
	"github.com/storefront/orderflow/internal/platform/logger"
)

var ErrProductNotFound = errors.New("product is absent")

type ProductRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Product, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Product, error)
	ListByCategoryName(ctx context.Context, tx *gorm.DB, categoryName string) ([]*domain.Product, error)
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	repoLog := baseLog.With("repo", "ProductRepo")
	return &productRepo{db: db, log: repoLog}
}

func (pr *productRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var p domain.Product
	err := transaction.WithContext(ctx).
		Select("products.*, categories.name AS category_name").
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Where("products.id = ?", id).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (pr *productRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*domain.Product
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *productRepo) ListByCategoryName(ctx context.Context, tx *gorm.DB, categoryName string) ([]*domain.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*domain.Product
	if err := transaction.WithContext(ctx).
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("categories.name = ?", categoryName).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
