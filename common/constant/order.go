package constant

import "time"

const (
	DefaultTaxRate             = "0.21"
	DefaultTicketInsertRetries = 3

	TicketNumberPrefix = "TKT-"
	TicketCodePrefix   = "ticket:"
	OrderRefPrefix     = "ORD-"
)

const (
	DefaultReservationTTL        = 15 * time.Minute
	DefaultReservationSweepEvery = time.Minute
	DefaultReservationSweepBatch = 500
)
