// Package lifecycle holds the status state machines for organizations, events,
// orders and tickets. Every status change in the system goes through one of the
// Transition functions; nothing else decides whether a status may move.
package lifecycle

import (
	"errors"
	"fmt"
)

var ErrIllegalTransition = errors.New("illegal transition")

const (
	EntityOrganization = "organization"
	EntityEvent        = "event"
	EntityOrder        = "order"
	EntityTicket       = "ticket"
)

// IllegalTransitionError names the rejected (state, action) pair.
type IllegalTransitionError struct {
	Entity string
	State  string
	Action string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("%s: action %q is not allowed from state %q", e.Entity, e.Action, e.State)
}

func (e *IllegalTransitionError) Unwrap() error {
	return ErrIllegalTransition
}

// table maps a state to the actions it accepts and the state each one leads to.
type table[S ~string, A ~string] map[S]map[A]S

func (t table[S, A]) transition(entity string, state S, action A) (S, error) {
	next, ok := t[state][action]
	if !ok {
		return state, &IllegalTransitionError{Entity: entity, State: string(state), Action: string(action)}
	}

	return next, nil
}

func (t table[S, A]) knows(state S) bool {
	_, ok := t[state]
	return ok
}

func parse[S ~string, A ~string](t table[S, A], entity, value string) (S, error) {
	state := S(value)
	if !t.knows(state) {
		return state, fmt.Errorf("%s: unknown status %q", entity, value)
	}

	return state, nil
}

func parseAction[A ~string](actions []A, entity, value string) (A, error) {
	for _, a := range actions {
		if string(a) == value {
			return a, nil
		}
	}

	return A(value), fmt.Errorf("%s: unknown action %q", entity, value)
}
