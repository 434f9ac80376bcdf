package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertIllegal(t *testing.T, err error, entity, state, action string) {
	t.Helper()

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIllegalTransition))

	var illegal *IllegalTransitionError
	require.True(t, errors.As(err, &illegal))
	assert.Equal(t, entity, illegal.Entity)
	assert.Equal(t, state, illegal.State)
	assert.Equal(t, action, illegal.Action)
}

func TestTransitionOrganization(t *testing.T) {
	allowed := map[OrganizationStatus]map[OrganizationAction]OrganizationStatus{
		OrganizationPending:   {OrganizationApprove: OrganizationActive, OrganizationReject: OrganizationRejected},
		OrganizationActive:    {OrganizationSuspend: OrganizationSuspended},
		OrganizationSuspended: {OrganizationReactivate: OrganizationActive},
		OrganizationRejected:  {OrganizationApprove: OrganizationActive},
	}

	for _, state := range OrganizationStatuses {
		for _, action := range OrganizationActions {
			t.Run(string(state)+"/"+string(action), func(t *testing.T) {
				next, err := TransitionOrganization(state, action)

				want, ok := allowed[state][action]
				if ok {
					require.NoError(t, err)
					assert.Equal(t, want, next)
					return
				}

				assert.Equal(t, state, next)
				assertIllegal(t, err, EntityOrganization, string(state), string(action))
			})
		}
	}
}

func TestTransitionEvent(t *testing.T) {
	allowed := map[EventStatus]map[EventAction]EventStatus{
		EventDraft:           {EventSubmit: EventPendingApproval, EventCancel: EventCancelled},
		EventPendingApproval: {EventApprove: EventApproved, EventCancel: EventCancelled},
		EventApproved:        {EventOpenSales: EventOnSale, EventCancel: EventCancelled},
		EventOnSale:          {EventExhaust: EventSoldOut, EventCancel: EventCancelled},
		EventSoldOut:         {EventCancel: EventCancelled},
	}

	for _, state := range EventStatuses {
		for _, action := range EventActions {
			t.Run(string(state)+"/"+string(action), func(t *testing.T) {
				next, err := TransitionEvent(state, action)

				want, ok := allowed[state][action]
				if ok {
					require.NoError(t, err)
					assert.Equal(t, want, next)
					return
				}

				assert.Equal(t, state, next)
				assertIllegal(t, err, EntityEvent, string(state), string(action))
			})
		}
	}
}

func TestDraftEventCannotOpenSales(t *testing.T) {
	next, err := TransitionEvent(EventDraft, EventOpenSales)

	assert.Equal(t, EventDraft, next)
	assertIllegal(t, err, EntityEvent, "draft", "openSales")
}

func TestTransitionOrder(t *testing.T) {
	allowed := map[OrderStatus]map[OrderAction]OrderStatus{
		OrderPending:   {OrderComplete: OrderCompleted, OrderFail: OrderCancelled},
		OrderCompleted: {OrderRefund: OrderRefunded},
	}

	for _, state := range OrderStatuses {
		for _, action := range OrderActions {
			t.Run(string(state)+"/"+string(action), func(t *testing.T) {
				next, err := TransitionOrder(state, action)

				want, ok := allowed[state][action]
				if ok {
					require.NoError(t, err)
					assert.Equal(t, want, next)
					return
				}

				assert.Equal(t, state, next)
				assertIllegal(t, err, EntityOrder, string(state), string(action))
			})
		}
	}
}

func TestTransitionTicket(t *testing.T) {
	allowed := map[TicketStatus]map[TicketAction]TicketStatus{
		TicketValid: {TicketRedeem: TicketUsed, TicketCancel: TicketCancelled},
	}

	for _, state := range TicketStatuses {
		for _, action := range TicketActions {
			t.Run(string(state)+"/"+string(action), func(t *testing.T) {
				next, err := TransitionTicket(state, action)

				want, ok := allowed[state][action]
				if ok {
					require.NoError(t, err)
					assert.Equal(t, want, next)
					return
				}

				assert.Equal(t, state, next)
				assertIllegal(t, err, EntityTicket, string(state), string(action))
			})
		}
	}
}

func TestPurchasable(t *testing.T) {
	purchasable := map[EventStatus]bool{EventApproved: true, EventOnSale: true}

	for _, state := range EventStatuses {
		assert.Equal(t, purchasable[state], state.Purchasable(), string(state))
	}
}

func TestParse(t *testing.T) {
	status, err := ParseEventStatus("on_sale")
	require.NoError(t, err)
	assert.Equal(t, EventOnSale, status)

	_, err = ParseEventStatus("published")
	assert.Error(t, err)

	action, err := ParseOrganizationAction("suspend")
	require.NoError(t, err)
	assert.Equal(t, OrganizationSuspend, action)

	_, err = ParseOrganizationAction("delete")
	assert.Error(t, err)

	_, err = ParseOrderStatus("refunded")
	assert.NoError(t, err)

	_, err = ParseTicketStatus("lost")
	assert.Error(t, err)
}

func TestUnknownStateIsRejected(t *testing.T) {
	next, err := TransitionTicket(TicketStatus("lost"), TicketRedeem)

	assert.Equal(t, TicketStatus("lost"), next)
	assertIllegal(t, err, EntityTicket, "lost", "redeem")
}
