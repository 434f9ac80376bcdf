package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TicketTypeAvailability struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int32           `json:"quantity"`
	Sold      int32           `json:"sold"`
	Available int32           `json:"available"`
}

type EventAvailabilityResponse struct {
	EventID     string                   `json:"event_id"`
	TicketTypes []TicketTypeAvailability `json:"ticket_types"`
	RefreshedAt time.Time                `json:"refreshed_at"`
}
