package lifecycle

type TicketStatus string

const (
	TicketValid     TicketStatus = "valid"
	TicketUsed      TicketStatus = "used"
	TicketCancelled TicketStatus = "cancelled"
)

type TicketAction string

const (
	TicketRedeem TicketAction = "redeem"
	TicketCancel TicketAction = "cancel"
)

var TicketStatuses = []TicketStatus{TicketValid, TicketUsed, TicketCancelled}

var TicketActions = []TicketAction{TicketRedeem, TicketCancel}

var ticketTable = table[TicketStatus, TicketAction]{
	TicketValid: {
		TicketRedeem: TicketUsed,
		TicketCancel: TicketCancelled,
	},
	TicketUsed:      {},
	TicketCancelled: {},
}

func TransitionTicket(state TicketStatus, action TicketAction) (TicketStatus, error) {
	return ticketTable.transition(EntityTicket, state, action)
}

func ParseTicketStatus(s string) (TicketStatus, error) {
	return parse(ticketTable, EntityTicket, s)
}
