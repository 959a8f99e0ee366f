package order

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	domain "github.com/storefront/orderflow/internal/domain/order"
)

// Model is the persisted shape of the aggregate. Items and total price live
// in one JSON snapshot rather than normalized rows; the aggregate is the unit
// of consistency, not the line items.
type Model struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey"`
	CustomerName   string            `gorm:"not null;column:customer_name;index"`
	DeliveryInfoID uuid.UUID         `gorm:"type:uuid;not null;column:delivery_info_id"`
	DeliveryInfo   DeliveryInfoModel `gorm:"foreignKey:DeliveryInfoID"`
	Data           datatypes.JSON    `gorm:"column:data"`
	Status         string            `gorm:"not null;column:status"`
	Version        int64             `gorm:"not null;default:0;column:version"`
	CreatedAt      time.Time         `gorm:"not null"`
	UpdatedAt      time.Time         `gorm:"not null;index"`
}

func (Model) TableName() string { return "orders" }

type DeliveryInfoModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Address   string     `gorm:"not null;column:address"`
	CourierID *uuid.UUID `gorm:"type:uuid;column:courier_id"`
}

func (DeliveryInfoModel) TableName() string { return "delivery_info" }

// EventModel rows are append-only; no update or delete path exists.
type EventModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID      `gorm:"type:uuid;not null;index;column:order_id"`
	Name      string         `gorm:"not null;column:name"`
	Data      datatypes.JSON `gorm:"column:data"`
	CreatedAt time.Time      `gorm:"not null;index"`
}

func (EventModel) TableName() string { return "order_events" }

type dataPayload struct {
	Products   []domain.Item `json:"products"`
	TotalPrice float64       `json:"total_price"`
}

func entityToModel(e *domain.Order) (*Model, error) {
	raw, err := json.Marshal(dataPayload{Products: e.Items, TotalPrice: e.TotalPrice})
	if err != nil {
		return nil, fmt.Errorf("marshal order data: %w", err)
	}
	return &Model{
		ID:             e.ID,
		CustomerName:   e.CustomerName,
		DeliveryInfoID: e.DeliveryInfo.ID,
		DeliveryInfo: DeliveryInfoModel{
			ID:        e.DeliveryInfo.ID,
			Address:   e.DeliveryInfo.Address,
			CourierID: e.DeliveryInfo.CourierID,
		},
		Data:      datatypes.JSON(raw),
		Status:    string(e.Status),
		Version:   e.Version,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}, nil
}

func modelToEntity(m *Model) (*domain.Order, error) {
	var payload dataPayload
	if len(m.Data) > 0 {
		if err := json.Unmarshal(m.Data, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal order data: %w", err)
		}
	}
	info := domain.DeliveryInfo{
		ID:        m.DeliveryInfo.ID,
		Address:   m.DeliveryInfo.Address,
		CourierID: m.DeliveryInfo.CourierID,
	}
	return domain.Restore(m.ID, m.CustomerName, info, payload.Products,
		payload.TotalPrice, domain.Status(m.Status), m.Version, m.CreatedAt, m.UpdatedAt), nil
}
