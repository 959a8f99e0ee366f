package order

import (
	"time"

	"github.com/google/uuid"
)

// MinTotal is the smallest order value Begin accepts, in currency units.
const MinTotal = 1.0

type DeliveryInfo struct {
	ID        uuid.UUID  `json:"id"`
	Address   string     `json:"address"`
	CourierID *uuid.UUID `json:"courier_id,omitempty"`
}

// Order is the aggregate root. All mutations go through its methods; each
// successful mutation appends exactly one domain event to the pending buffer
// and bumps UpdatedAt. The buffer survives until the persistence layer has
// committed, so a rolled-back flush can be retried.
type Order struct {
	ID           uuid.UUID    `json:"id"`
	CustomerName string       `json:"customer_name"`
	DeliveryInfo DeliveryInfo `json:"delivery_info"`
	Items        []Item       `json:"items"`
	TotalPrice   float64      `json:"total_price"`
	Status       Status       `json:"status"`
	Version      int64        `json:"version"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	pending []Event
}

// New builds a fresh aggregate in CREATED status and records OrderCreated.
// Item validation is the caller's concern.
func New(customerName, address string, items []Item) *Order {
	now := time.Now().UTC()
	o := &Order{
		ID:           uuid.New(),
		CustomerName: customerName,
		DeliveryInfo: DeliveryInfo{ID: uuid.New(), Address: address},
		Items:        items,
		TotalPrice:   TotalPrice(items),
		Status:       StatusCreated,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	o.emit(EventOrderCreated, o.itemsPayload())
	return o
}

// Restore rebuilds an aggregate from its persisted state without emitting
// events. Used by the repository mapper.
func Restore(id uuid.UUID, customerName string, info DeliveryInfo, items []Item,
	totalPrice float64, status Status, version int64, createdAt, updatedAt time.Time) *Order {
	return &Order{
		ID:           id,
		CustomerName: customerName,
		DeliveryInfo: info,
		Items:        items,
		TotalPrice:   totalPrice,
		Status:       status,
		Version:      version,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// UpdateItems replaces the item list as a whole and recomputes the total.
func (o *Order) UpdateItems(items []Item) error {
	if !o.Status.Amendable() {
		return ErrNotAmendable
	}
	o.Items = items
	o.TotalPrice = TotalPrice(items)
	o.touch()
	o.emit(EventOrderItemsUpdated, o.itemsPayload())
	return nil
}

func (o *Order) UpdateAddress(address string) error {
	if !o.Status.Amendable() {
		return ErrNotAmendable
	}
	o.DeliveryInfo.Address = address
	o.touch()
	o.emit(EventOrderAddressUpdated, map[string]any{"address": address})
	return nil
}

// Begin moves the order into preparation. Requires at least one item and a
// total of MinTotal or more.
func (o *Order) Begin() error {
	if len(o.Items) == 0 || o.TotalPrice < MinTotal {
		return ErrEmptyOrder
	}
	return o.advance(StatusCreated, StatusStarted, EventOrderStarted)
}

func (o *Order) Ready() error {
	return o.advance(StatusStarted, StatusReadyToDelivery, EventOrderReady)
}

func (o *Order) Delivery() error {
	return o.advance(StatusReadyToDelivery, StatusDelivering, EventOrderDelivering)
}

func (o *Order) Complete() error {
	return o.advance(StatusDelivering, StatusCompleted, EventOrderCompleted)
}

// Cancel succeeds from any status except COMPLETED. Cancelling an already
// canceled order succeeds again and records another event.
func (o *Order) Cancel() error {
	if o.Status == StatusCompleted {
		return ErrOrderCompleted
	}
	o.Status = StatusCanceled
	o.touch()
	o.emit(EventOrderCancelled, nil)
	return nil
}

func (o *Order) advance(from, to Status, eventName string) error {
	if o.Status != from {
		return &TransitionError{Attempted: to, Actual: o.Status, Expected: from}
	}
	o.Status = to
	o.touch()
	o.emit(eventName, nil)
	return nil
}

// PendingEvents returns a copy of the unflushed event buffer in append order.
// The aggregate keeps sole ownership of the buffer itself.
func (o *Order) PendingEvents() []Event {
	out := make([]Event, len(o.pending))
	copy(out, o.pending)
	return out
}

// ClearPendingEvents empties the buffer. Callers invoke it only after the
// store has committed the flush.
func (o *Order) ClearPendingEvents() {
	o.pending = nil
}

func (o *Order) emit(name string, payload map[string]any) {
	o.pending = append(o.pending, newEvent(o.ID, name, payload))
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}

func (o *Order) itemsPayload() map[string]any {
	products := make([]map[string]any, 0, len(o.Items))
	for _, it := range o.Items {
		products = append(products, map[string]any{
			"product_id": it.ProductID.String(),
			"name":       it.Name,
			"quantity":   it.Quantity,
			"unit_price": it.UnitPrice,
		})
	}
	return map[string]any{
		"products":    products,
		"total_price": o.TotalPrice,
	}
}
