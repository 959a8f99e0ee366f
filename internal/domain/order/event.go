package order

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventOrderCreated        = "OrderCreated"
	EventOrderItemsUpdated   = "OrderItemsUpdated"
	EventOrderAddressUpdated = "OrderAddressUpdated"
	EventOrderStarted        = "OrderStarted"
	EventOrderReady          = "OrderReady"
	EventOrderDelivering     = "OrderDelivering"
	EventOrderCompleted      = "OrderCompleted"
	EventOrderCancelled      = "OrderCancelled"
)

// Event is an immutable record of one aggregate mutation. Events are
// appended, never updated or deleted.
type Event struct {
	ID        uuid.UUID      `json:"id"`
	OrderID   uuid.UUID      `json:"order_id"`
	Name      string         `json:"name"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func newEvent(orderID uuid.UUID, name string, payload map[string]any) Event {
	return Event{
		ID:        uuid.New(),
		OrderID:   orderID,
		Name:      name,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
}
