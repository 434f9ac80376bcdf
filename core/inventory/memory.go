package inventory

import (
	"context"
	"sync"
	"ticket-market/common/metrics"

	"github.com/oklog/ulid/v2"
)

type stock struct {
	quantity int32
	sold     int32
}

// MemoryLedger keeps counters in process. It backs tests and single-node tooling.
type MemoryLedger struct {
	mu           sync.Mutex
	stocks       map[string]*stock
	reservations map[string]Reservation
	released     map[string]bool
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		stocks:       make(map[string]*stock),
		reservations: make(map[string]Reservation),
		released:     make(map[string]bool),
	}
}

// Stock registers a ticket type. sold starts at the given value and is never
// written from outside afterwards.
func (l *MemoryLedger) Stock(ticketTypeID string, quantity, sold int32) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stocks[ticketTypeID] = &stock{quantity: quantity, sold: sold}
}

func (l *MemoryLedger) Reserve(_ context.Context, ticketTypeID string, quantity int32) (Reservation, error) {
	if quantity < 1 {
		return Reservation{}, ErrInvalidQuantity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.stocks[ticketTypeID]
	if !ok {
		return Reservation{}, ErrTicketTypeNotFound
	}

	if quantity > s.quantity-s.sold {
		metrics.InventoryReservations.WithLabelValues(metrics.OutcomeInsufficient).Inc()
		return Reservation{}, &InsufficientInventoryError{
			TicketTypeID: ticketTypeID,
			Requested:    quantity,
			Available:    s.quantity - s.sold,
		}
	}

	s.sold += quantity
	r := Reservation{Token: ulid.Make().String(), TicketTypeID: ticketTypeID, Quantity: quantity}
	l.reservations[r.Token] = r

	metrics.InventoryReservations.WithLabelValues(metrics.OutcomeSuccess).Inc()

	return r, nil
}

func (l *MemoryLedger) Release(_ context.Context, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.reservations[token]
	if !ok || l.released[token] {
		return nil
	}

	l.released[token] = true
	l.stocks[r.TicketTypeID].sold -= r.Quantity

	metrics.InventoryReleases.Inc()

	return nil
}

func (l *MemoryLedger) Available(_ context.Context, ticketTypeID string) (int32, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.stocks[ticketTypeID]
	if !ok {
		return 0, ErrTicketTypeNotFound
	}

	return s.quantity - s.sold, nil
}

// Sold reports the current counter.
func (l *MemoryLedger) Sold(ticketTypeID string) int32 {
	l.mu.Lock()
	defer l.mu.Unlock()

	if s, ok := l.stocks[ticketTypeID]; ok {
		return s.sold
	}

	return 0
}
