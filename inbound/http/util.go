package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"ticket-market/common/errs"
	"ticket-market/core/fulfillment"
	"ticket-market/core/lifecycle"
	"ticket-market/core/seating"
	"ticket-market/core/status"
	"ticket-market/model"

	"github.com/go-playground/validator/v10"
)

func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func writeErrorResponse(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	err = toHttpError(err)

	w.Header().Set("Content-Type", "application/json")

	var message string
	var data any
	var httpErr *errs.HttpError
	var validationErr validator.ValidationErrors
	if errors.As(err, &httpErr) {
		message = httpErr.Message
		data = httpErr.Data
		w.WriteHeader(httpErr.Code)
	} else if errors.As(err, &validationErr) {
		message = "Validation failed"
		w.WriteHeader(http.StatusBadRequest)

		validationErrors := make(map[string]string)
		for _, fieldErr := range validationErr {
			fieldName := fieldErr.Field()
			validationErrors[fieldName] = fieldErr.Tag()
		}

		data = validationErrors
	} else {
		message = "Internal Server Error"
		w.WriteHeader(500)
	}

	errorResponse := model.ErrorResponse{Error: message, Data: data}
	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// toHttpError maps domain errors onto status codes. Anything it does not
// recognise is returned unchanged and ends up as a 500.
func toHttpError(err error) error {
	var fe *fulfillment.Error
	if errors.As(err, &fe) {
		return fulfillmentHttpError(fe)
	}

	var illegal *lifecycle.IllegalTransitionError
	if errors.As(err, &illegal) {
		return &errs.HttpError{
			Code:    http.StatusConflict,
			Message: "Illegal transition",
			Data: model.TransitionErrorData{
				Entity: illegal.Entity,
				State:  illegal.State,
				Action: illegal.Action,
			},
		}
	}

	switch {
	case errors.Is(err, status.ErrForbidden):
		return &errs.HttpError{Code: http.StatusForbidden, Message: "Forbidden"}
	case errors.Is(err, status.ErrNotFound), errors.Is(err, seating.ErrSeatNotFound), errors.Is(err, seating.ErrSectionNotFound):
		return &errs.HttpError{Code: http.StatusNotFound, Message: "Not found"}
	case errors.Is(err, status.ErrUnknownAction):
		return &errs.HttpError{Code: http.StatusBadRequest, Message: "Unknown action"}
	case errors.Is(err, status.ErrStaleStatus):
		return &errs.HttpError{Code: http.StatusConflict, Message: "Status changed, retry"}
	case errors.Is(err, seating.ErrSectionInUse), errors.Is(err, seating.ErrDuplicateSection):
		return &errs.HttpError{Code: http.StatusConflict, Message: err.Error()}
	case errors.Is(err, seating.ErrInvalidDimensions),
		errors.Is(err, seating.ErrInvalidLabel),
		errors.Is(err, seating.ErrInvalidSection),
		errors.Is(err, seating.ErrNegativePrice),
		errors.Is(err, seating.ErrEmptySelection):
		return &errs.HttpError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	return err
}

func fulfillmentHttpError(fe *fulfillment.Error) *errs.HttpError {
	code := http.StatusInternalServerError
	switch fe.Kind {
	case fulfillment.KindValidation:
		code = http.StatusBadRequest
	case fulfillment.KindInvalidEventState, fulfillment.KindInsufficientInventory:
		code = http.StatusConflict
	case fulfillment.KindPersistenceFailure:
		code = http.StatusServiceUnavailable
	}

	return &errs.HttpError{
		Code:    code,
		Message: fe.Detail,
		Data: model.OrderErrorData{
			Kind:         string(fe.Kind),
			TicketTypeID: fe.TicketTypeID,
			Retryable:    fe.Retryable,
		},
	}
}
