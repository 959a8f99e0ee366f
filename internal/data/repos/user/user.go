package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/storefront/orderflow/internal/domain/user"
	"github.com/storefront/orderflow/internal/platform/logger"
)

type Repo interface {
	Create(ctx context.Context, tx *gorm.DB, u *domain.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*domain.User, error)
	UsernameExists(ctx context.Context, tx *gorm.DB, username string) (bool, error)
}

type repo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepo(db *gorm.DB, baseLog *logger.Logger) Repo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &repo{db: db, log: repoLog}
}

func (ur *repo) Create(ctx context.Context, tx *gorm.DB, u *domain.User) error {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	return transaction.WithContext(ctx).Create(u).Error
}

func (ur *repo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var u domain.User
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (ur *repo) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*domain.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var u domain.User
	err := transaction.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (ur *repo) UsernameExists(ctx context.Context, tx *gorm.DB, username string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&domain.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
