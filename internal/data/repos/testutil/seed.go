package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/orderflow/internal/domain/catalog"
	"github.com/storefront/orderflow/internal/domain/user"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username string, role user.Role) *user.User {
	tb.Helper()
	u := &user.User{
		ID:        uuid.New(),
		Username:  username,
		Password:  "$2a$10$BqS2ZHcouIbhTEG.X093yOYdKGA8YmZomjJRTGsObkoZggXyRYOIS", // bcrypt("secret")
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCategory(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *catalog.Category {
	tb.Helper()
	c := &catalog.Category{ID: uuid.New(), Name: name}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	return c
}

func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, categoryID uuid.UUID, name string, price float64) *catalog.Product {
	tb.Helper()
	p := &catalog.Product{
		ID:         uuid.New(),
		Name:       name,
		Price:      price,
		CategoryID: categoryID,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}
