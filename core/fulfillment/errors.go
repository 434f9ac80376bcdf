package fulfillment

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation            Kind = "ValidationError"
	KindInvalidEventState     Kind = "InvalidEventState"
	KindInsufficientInventory Kind = "InsufficientInventory"
	KindPersistenceFailure    Kind = "PersistenceFailure"
)

// Error is the only error PlaceOrder returns. Callers switch on Kind.
type Error struct {
	Kind         Kind
	TicketTypeID string
	Detail       string
	Retryable    bool
	Err          error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}

	return "", false
}

func validationError(detail string, args ...any) *Error {
	return &Error{Kind: KindValidation, Detail: fmt.Sprintf(detail, args...)}
}

func persistenceError(detail string, err error) *Error {
	return &Error{Kind: KindPersistenceFailure, Detail: detail, Retryable: true, Err: err}
}
