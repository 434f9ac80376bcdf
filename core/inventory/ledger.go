// Package inventory owns the sold counter of every ticket type. Reserve and
// Release are the only code paths allowed to move it.
package inventory

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrTicketTypeNotFound    = errors.New("ticket type not found")
	ErrInvalidQuantity       = errors.New("quantity must be at least 1")
)

type InsufficientInventoryError struct {
	TicketTypeID string
	Requested    int32
	Available    int32
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("ticket type %s: requested %d, available %d", e.TicketTypeID, e.Requested, e.Available)
}

func (e *InsufficientInventoryError) Unwrap() error {
	return ErrInsufficientInventory
}

// Reservation is a claim of Quantity units against a ticket type. Token is
// what Release takes back.
type Reservation struct {
	Token        string
	TicketTypeID string
	Quantity     int32
}

type Ledger interface {
	// Reserve increments sold by quantity only if the result stays within the
	// ticket type's quantity. The check and the increment are one step.
	Reserve(ctx context.Context, ticketTypeID string, quantity int32) (Reservation, error)

	// Release undoes a reservation. Releasing the same token twice is a no-op.
	Release(ctx context.Context, token string) error

	Available(ctx context.Context, ticketTypeID string) (int32, error)
}
