package vars

import (
	"sync/atomic"
	"ticket-market/model"
	"time"
)

// availabilitySnapshot is replaced wholesale on every refresh and never mutated
// after it is stored.
type availabilitySnapshot struct {
	events      map[string][]model.TicketTypeAvailability
	refreshedAt time.Time
}

var availability atomic.Pointer[availabilitySnapshot]

// GetEventAvailability returns the last refreshed ticket type counters of an
// event. It is a read model only; purchases never consult it.
func GetEventAvailability(eventID string) ([]model.TicketTypeAvailability, time.Time, bool) {
	snap := availability.Load()
	if snap == nil {
		return nil, time.Time{}, false
	}

	types, ok := snap.events[eventID]
	if !ok {
		return nil, snap.refreshedAt, false
	}

	out := make([]model.TicketTypeAvailability, len(types))
	copy(out, types)

	return out, snap.refreshedAt, true
}

// SetAvailability swaps in a new snapshot. Pass nil to clear it.
func SetAvailability(events map[string][]model.TicketTypeAvailability, refreshedAt time.Time) {
	if events == nil {
		availability.Store(nil)
		return
	}

	eventsCopy := make(map[string][]model.TicketTypeAvailability, len(events))
	for id, types := range events {
		eventsCopy[id] = append([]model.TicketTypeAvailability(nil), types...)
	}

	availability.Store(&availabilitySnapshot{events: eventsCopy, refreshedAt: refreshedAt})
}
