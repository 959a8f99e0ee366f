package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	catalogrepo "github.com/storefront/orderflow/internal/data/repos/catalog"
	"github.com/storefront/orderflow/internal/domain/catalog"
	"github.com/storefront/orderflow/internal/platform/logger"
)

const productCacheTTL = 5 * time.Minute

type CatalogService interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	ListByCategory(ctx context.Context, categoryName string) ([]*catalog.Product, error)
	ResolveMany(ctx context.Context, ids []uuid.UUID) ([]*catalog.Product, error)
}

type catalogService struct {
	log         *logger.Logger
	productRepo catalogrepo.ProductRepo
	cache       *redis.Client // nil disables caching
}

func NewCatalogService(log *logger.Logger, productRepo catalogrepo.ProductRepo, cache *redis.Client) CatalogService {
	serviceLog := log.With("service", "CatalogService")
	return &catalogService{log: serviceLog, productRepo: productRepo, cache: cache}
}

func (cs *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	if p := cs.cacheGet(ctx, id); p != nil {
		return p, nil
	}
	p, err := cs.productRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	cs.cachePut(ctx, p)
	return p, nil
}

func (cs *catalogService) ListByCategory(ctx context.Context, categoryName string) ([]*catalog.Product, error) {
	return cs.productRepo.ListByCategoryName(ctx, nil, categoryName)
}

// ResolveMany looks up products by id, serving cache hits from redis and the
// rest from the store. The result order is unspecified; callers match by id.
func (cs *catalogService) ResolveMany(ctx context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	resolved := make([]*catalog.Product, 0, len(ids))
	missing := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if p := cs.cacheGet(ctx, id); p != nil {
			resolved = append(resolved, p)
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) > 0 {
		fromDB, err := cs.productRepo.GetByIDs(ctx, nil, missing)
		if err != nil {
			return nil, err
		}
		for _, p := range fromDB {
			cs.cachePut(ctx, p)
		}
		resolved = append(resolved, fromDB...)
	}
	return resolved, nil
}

func (cs *catalogService) cacheGet(ctx context.Context, id uuid.UUID) *catalog.Product {
	if cs.cache == nil {
		return nil
	}
	raw, err := cs.cache.Get(ctx, productCacheKey(id)).Bytes()
	if err != nil {
		return nil
	}
	var p catalog.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil
	}
	return &p
}

func (cs *catalogService) cachePut(ctx context.Context, p *catalog.Product) {
	if cs.cache == nil || p == nil {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := cs.cache.Set(ctx, productCacheKey(p.ID), raw, productCacheTTL).Err(); err != nil {
		cs.log.Warn("Product cache write failed", "product_id", p.ID, "error", err)
	}
}

func productCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("product:%s", id)
}
