package order

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals an absent order.
	ErrNotFound = errors.New("order is absent")
	// ErrNotAmendable signals an item or address change after the order left
	// its amendable statuses.
	ErrNotAmendable = errors.New("unable to update order due to status")
	// ErrEmptyOrder signals a begin attempt with no items or a total below
	// the minimum order value.
	ErrEmptyOrder = errors.New("order has no items or is below the minimum total")
	// ErrOrderCompleted signals a cancel attempt on a completed order.
	ErrOrderCompleted = errors.New("completed order cannot be canceled")
	// ErrVersionConflict signals a lost-update race detected by the store.
	ErrVersionConflict = errors.New("order was modified concurrently")
)

// TransitionError reports an out-of-order status change with enough context
// for the client to correct itself.
type TransitionError struct {
	Attempted Status
	Actual    Status
	Expected  Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("unable to change the order status to %s, the status now is %s but expected %s",
		e.Attempted, e.Actual, e.Expected)
}
