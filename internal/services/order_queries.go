package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	orderrepo "github.com/storefront/orderflow/internal/data/repos/order"
	"github.com/storefront/orderflow/internal/domain/order"
	"github.com/storefront/orderflow/internal/platform/logger"
)

type OrderPage struct {
	Orders  []*order.Order `json:"orders"`
	HasMore bool           `json:"has_more"`
}

type OrderQueryService interface {
	GetByID(ctx context.Context, orderID uuid.UUID) (*order.Order, error)
	ListByCustomer(ctx context.Context, customerName string) ([]*order.Order, error)
	ListPaged(ctx context.Context, page int) (*OrderPage, error)
	EventTimeline(ctx context.Context, orderID uuid.UUID) ([]order.Event, error)
}

type orderQueryService struct {
	db        *gorm.DB
	log       *logger.Logger
	orderRepo orderrepo.Repo
	events    orderrepo.EventStore
	pageSize  int
}

func NewOrderQueryService(db *gorm.DB, log *logger.Logger, orderRepo orderrepo.Repo, events orderrepo.EventStore, pageSize int) OrderQueryService {
	serviceLog := log.With("service", "OrderQueryService")
	return &orderQueryService{
		db:        db,
		log:       serviceLog,
		orderRepo: orderRepo,
		events:    events,
		pageSize:  pageSize,
	}
}

func (oqs *orderQueryService) GetByID(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	return oqs.orderRepo.GetByID(ctx, nil, orderID)
}

func (oqs *orderQueryService) ListByCustomer(ctx context.Context, customerName string) ([]*order.Order, error) {
	return oqs.orderRepo.ListByCustomer(ctx, nil, customerName)
}

// ListPaged fetches one row past the page size to compute the has-more flag
// without a count query.
func (oqs *orderQueryService) ListPaged(ctx context.Context, page int) (*OrderPage, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * oqs.pageSize

	orders, err := oqs.orderRepo.ListPage(ctx, nil, offset, oqs.pageSize+1)
	if err != nil {
		return nil, err
	}

	hasMore := len(orders) > oqs.pageSize
	if hasMore {
		orders = orders[:oqs.pageSize]
	}
	return &OrderPage{Orders: orders, HasMore: hasMore}, nil
}

func (oqs *orderQueryService) EventTimeline(ctx context.Context, orderID uuid.UUID) ([]order.Event, error) {
	return oqs.events.ListByOrder(ctx, nil, orderID)
}
