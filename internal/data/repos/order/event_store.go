package order

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/storefront/orderflow/internal/domain/order"
	"github.com/storefront/orderflow/internal/platform/logger"
)

type EventStore interface {
	Save(ctx context.Context, tx *gorm.DB, events []domain.Event) error
	ListByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]domain.Event, error)
}

type eventStore struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEventStore(db *gorm.DB, baseLog *logger.Logger) EventStore {
	storeLog := baseLog.With("repo", "OrderEventStore")
	return &eventStore{db: db, log: storeLog}
}

// Save appends events inside the caller's transaction. Event ids are unique,
// so re-saving an already flushed buffer within one unit of work is a no-op.
func (es *eventStore) Save(ctx context.Context, tx *gorm.DB, events []domain.Event) error {
	transaction := tx
	if transaction == nil {
		transaction = es.db
	}

	if len(events) == 0 {
		return nil
	}

	rows := make([]*EventModel, 0, len(events))
	for _, ev := range events {
		var data datatypes.JSON
		if ev.Payload != nil {
			raw, err := json.Marshal(ev.Payload)
			if err != nil {
				return fmt.Errorf("marshal event payload: %w", err)
			}
			data = datatypes.JSON(raw)
		}
		rows = append(rows, &EventModel{
			ID:        ev.ID,
			OrderID:   ev.OrderID,
			Name:      ev.Name,
			Data:      data,
			CreatedAt: ev.CreatedAt,
		})
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (es *eventStore) ListByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]domain.Event, error) {
	transaction := tx
	if transaction == nil {
		transaction = es.db
	}

	var rows []*EventModel
	if err := transaction.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	events := make([]domain.Event, 0, len(rows))
	for _, r := range rows {
		var payload map[string]any
		if len(r.Data) > 0 {
			if err := json.Unmarshal(r.Data, &payload); err != nil {
				return nil, fmt.Errorf("unmarshal event payload: %w", err)
			}
		}
		events = append(events, domain.Event{
			ID:        r.ID,
			OrderID:   r.OrderID,
			Name:      r.Name,
			Payload:   payload,
			CreatedAt: r.CreatedAt,
		})
	}
	return events, nil
}
