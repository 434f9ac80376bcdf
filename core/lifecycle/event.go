package lifecycle

type EventStatus string

const (
	EventDraft           EventStatus = "draft"
	EventPendingApproval EventStatus = "pending_approval"
	EventApproved        EventStatus = "approved"
	EventOnSale          EventStatus = "on_sale"
	EventSoldOut         EventStatus = "sold_out"
	EventCancelled       EventStatus = "cancelled"
)

type EventAction string

const (
	EventSubmit    EventAction = "submit"
	EventApprove   EventAction = "approve"
	EventOpenSales EventAction = "openSales"
	EventExhaust   EventAction = "exhaust"
	EventCancel    EventAction = "cancel"
)

var EventStatuses = []EventStatus{
	EventDraft, EventPendingApproval, EventApproved, EventOnSale, EventSoldOut, EventCancelled,
}

var EventActions = []EventAction{
	EventSubmit, EventApprove, EventOpenSales, EventExhaust, EventCancel,
}

var eventTable = table[EventStatus, EventAction]{
	EventDraft: {
		EventSubmit: EventPendingApproval,
		EventCancel: EventCancelled,
	},
	EventPendingApproval: {
		EventApprove: EventApproved,
		EventCancel:  EventCancelled,
	},
	EventApproved: {
		EventOpenSales: EventOnSale,
		EventCancel:    EventCancelled,
	},
	EventOnSale: {
		EventExhaust: EventSoldOut,
		EventCancel:  EventCancelled,
	},
	EventSoldOut: {
		EventCancel: EventCancelled,
	},
	EventCancelled: {},
}

func TransitionEvent(state EventStatus, action EventAction) (EventStatus, error) {
	return eventTable.transition(EntityEvent, state, action)
}

// Purchasable reports whether customers may buy tickets for an event in this state.
func (s EventStatus) Purchasable() bool {
	return s == EventApproved || s == EventOnSale
}

func EventActionRequiresAdmin(action EventAction) bool {
	return action == EventApprove
}

// EventActionIsInternal marks actions the system fires itself; callers cannot request them.
func EventActionIsInternal(action EventAction) bool {
	return action == EventExhaust
}

func ParseEventStatus(s string) (EventStatus, error) {
	return parse(eventTable, EntityEvent, s)
}

func ParseEventAction(s string) (EventAction, error) {
	return parseAction(EventActions, EntityEvent, s)
}
