package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/storefront/orderflow/internal/domain/order"
	"github.com/storefront/orderflow/internal/platform/logger"
)

type Repo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Order, error)
	Add(ctx context.Context, tx *gorm.DB, entity *domain.Order) error
	ChangeOrderData(ctx context.Context, tx *gorm.DB, entity *domain.Order) error
	ChangeDeliveryInfo(ctx context.Context, tx *gorm.DB, entity *domain.Order) error
	ChangeStatus(ctx context.Context, tx *gorm.DB, entity *domain.Order) error
	ListByCustomer(ctx context.Context, tx *gorm.DB, customerName string) ([]*domain.Order, error)
	ListPage(ctx context.Context, tx *gorm.DB, offset, limit int) ([]*domain.Order, error)
}

type repo struct {
	db     *gorm.DB
	events EventStore
	log    *logger.Logger
}

func NewRepo(db *gorm.DB, events EventStore, baseLog *logger.Logger) Repo {
	repoLog := baseLog.With("repo", "OrderRepo")
	return &repo{db: db, events: events, log: repoLog}
}

func (r *repo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Order, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var m Model
	err := transaction.WithContext(ctx).
		Preload("DeliveryInfo").
		Where("id = ?", id).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return modelToEntity(&m)
}

// Add inserts the delivery info row, the order row and the pending events.
// The caller owns the transaction boundary and clears the aggregate's event
// buffer once the commit succeeds.
func (r *repo) Add(ctx context.Context, tx *gorm.DB, entity *domain.Order) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	m, err := entityToModel(entity)
	if err != nil {
		return err
	}

	if err := transaction.WithContext(ctx).Create(&m.DeliveryInfo).Error; err != nil {
		return err
	}
	if err := transaction.WithContext(ctx).Omit("DeliveryInfo").Create(m).Error; err != nil {
		return err
	}
	return r.events.Save(ctx, transaction, entity.PendingEvents())
}

func (r *repo) ChangeOrderData(ctx context.Context, tx *gorm.DB, entity *domain.Order) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	m, err := entityToModel(entity)
	if err != nil {
		return err
	}

	if err := r.casUpdate(ctx, transaction, entity, map[string]any{
		"data":       m.Data,
		"updated_at": entity.UpdatedAt,
	}); err != nil {
		return err
	}
	return r.events.Save(ctx, transaction, entity.PendingEvents())
}

func (r *repo) ChangeDeliveryInfo(ctx context.Context, tx *gorm.DB, entity *domain.Order) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	info := entity.DeliveryInfo
	if err := transaction.WithContext(ctx).
		Model(&DeliveryInfoModel{}).
		Where("id = ?", info.ID).
		Updates(map[string]any{
			"address":    info.Address,
			"courier_id": info.CourierID,
		}).Error; err != nil {
		return err
	}
	return r.events.Save(ctx, transaction, entity.PendingEvents())
}

func (r *repo) ChangeStatus(ctx context.Context, tx *gorm.DB, entity *domain.Order) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := r.casUpdate(ctx, transaction, entity, map[string]any{
		"status":     string(entity.Status),
		"updated_at": entity.UpdatedAt,
	}); err != nil {
		return err
	}
	return r.events.Save(ctx, transaction, entity.PendingEvents())
}

// casUpdate applies a field-level update guarded by the version counter.
// Zero affected rows means a concurrent writer got there first.
func (r *repo) casUpdate(ctx context.Context, tx *gorm.DB, entity *domain.Order, fields map[string]any) error {
	fields["version"] = entity.Version + 1
	res := tx.WithContext(ctx).
		Model(&Model{}).
		Where("id = ? AND version = ?", entity.ID, entity.Version).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrVersionConflict
	}
	entity.Version++
	return nil
}

func (r *repo) ListByCustomer(ctx context.Context, tx *gorm.DB, customerName string) ([]*domain.Order, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var models []*Model
	if err := transaction.WithContext(ctx).
		Preload("DeliveryInfo").
		Where("customer_name = ?", customerName).
		Order("created_at desc").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return mapModels(models)
}

func (r *repo) ListPage(ctx context.Context, tx *gorm.DB, offset, limit int) ([]*domain.Order, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var models []*Model
	if err := transaction.WithContext(ctx).
		Preload("DeliveryInfo").
		Order("updated_at desc").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	return mapModels(models)
}

func mapModels(models []*Model) ([]*domain.Order, error) {
	out := make([]*domain.Order, 0, len(models))
	for _, m := range models {
		e, err := modelToEntity(m)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
