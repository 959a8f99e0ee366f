package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	orderrepo "github.com/storefront/orderflow/internal/data/repos/order"
	"github.com/storefront/orderflow/internal/domain/order"
	"github.com/storefront/orderflow/internal/platform/logger"
)

// ErrUnresolvedProducts signals that at least one requested product id does
// not exist in the catalog.
var ErrUnresolvedProducts = errors.New("one or more products could not be resolved")

type ItemInput struct {
	ProductID uuid.UUID `json:"id"`
	Quantity  int       `json:"quantity"`
}

type CreateOrderInput struct {
	CustomerName string      `json:"customer_name"`
	Address      string      `json:"address"`
	Items        []ItemInput `json:"items"`
}

type UpdateOrderInput struct {
	Items   []ItemInput `json:"items,omitempty"`
	Address string      `json:"address,omitempty"`
}

type OrderCommandService interface {
	CreateNew(ctx context.Context, input CreateOrderInput) (*order.Order, error)
	Update(ctx context.Context, orderID uuid.UUID, input UpdateOrderInput) error
	Transition(ctx context.Context, orderID uuid.UUID, apply func(*order.Order) error) (*order.Order, error)
}

type orderCommandService struct {
	db        *gorm.DB
	log       *logger.Logger
	orderRepo orderrepo.Repo
	catalog   CatalogService
}

func NewOrderCommandService(db *gorm.DB, log *logger.Logger, orderRepo orderrepo.Repo, catalog CatalogService) OrderCommandService {
	serviceLog := log.With("service", "OrderCommandService")
	return &orderCommandService{
		db:        db,
		log:       serviceLog,
		orderRepo: orderRepo,
		catalog:   catalog,
	}
}

func (ocs *orderCommandService) CreateNew(ctx context.Context, input CreateOrderInput) (*order.Order, error) {
	items, err := ocs.formItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	ord := order.New(input.CustomerName, input.Address, items)

	if err := ocs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return ocs.orderRepo.Add(ctx, tx, ord)
	}); err != nil {
		return nil, err
	}
	ord.ClearPendingEvents()

	ocs.log.Info("Order created", "order_id", ord.ID, "total_price", ord.TotalPrice)
	return ord, nil
}

func (ocs *orderCommandService) Update(ctx context.Context, orderID uuid.UUID, input UpdateOrderInput) error {
	var items []order.Item
	if len(input.Items) > 0 {
		formed, err := ocs.formItems(ctx, input.Items)
		if err != nil {
			return err
		}
		items = formed
	}

	var ord *order.Order
	err := ocs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loaded, err := ocs.orderRepo.GetByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		ord = loaded

		if len(items) > 0 {
			if err := ord.UpdateItems(items); err != nil {
				return err
			}
			if err := ocs.orderRepo.ChangeOrderData(ctx, tx, ord); err != nil {
				return err
			}
		}

		if input.Address != "" {
			if err := ord.UpdateAddress(input.Address); err != nil {
				return err
			}
			if err := ocs.orderRepo.ChangeDeliveryInfo(ctx, tx, ord); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	ord.ClearPendingEvents()

	ocs.log.Info("Order updated", "order_id", orderID)
	return nil
}

// Transition is the atomic unit behind every status endpoint: load the
// aggregate, apply exactly one state-machine call, persist status and events,
// commit.
func (ocs *orderCommandService) Transition(ctx context.Context, orderID uuid.UUID, apply func(*order.Order) error) (*order.Order, error) {
	var ord *order.Order
	err := ocs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loaded, err := ocs.orderRepo.GetByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		ord = loaded

		if err := apply(ord); err != nil {
			return err
		}
		return ocs.orderRepo.ChangeStatus(ctx, tx, ord)
	})
	if err != nil {
		return nil, err
	}
	ord.ClearPendingEvents()

	ocs.log.Info("Order status changed", "order_id", orderID, "status", ord.Status)
	return ord, nil
}

// formItems resolves requested products and builds order items carrying the
// catalog name and current unit price. A count mismatch between distinct
// requested ids and resolved products means an unknown product id.
func (ocs *orderCommandService) formItems(ctx context.Context, inputs []ItemInput) ([]order.Item, error) {
	byID := make(map[uuid.UUID]ItemInput, len(inputs))
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, in := range inputs {
		if _, seen := byID[in.ProductID]; !seen {
			ids = append(ids, in.ProductID)
		}
		byID[in.ProductID] = in
	}

	products, err := ocs.catalog.ResolveMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(products) != len(ids) {
		return nil, ErrUnresolvedProducts
	}

	items := make([]order.Item, 0, len(products))
	for _, p := range products {
		requested := byID[p.ID]
		items = append(items, order.Item{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  requested.Quantity,
			UnitPrice: p.Price,
		})
	}
	return items, nil
}
