package http

import (
	"net/http"
	"ticket-market/common/errs"
	"ticket-market/common/otel"
	"ticket-market/common/vars"
	"ticket-market/core/status"
	"ticket-market/model"
)

type EventHttp struct {
	Status *status.Service
}

func RegisterEventHttp(mux *http.ServeMux, statusService *status.Service) *EventHttp {
	in := &EventHttp{Status: statusService}

	mux.HandleFunc("GET /api/events/{id}/availability", in.availability)
	mux.HandleFunc("POST /api/events/{id}/{action}", in.applyAction)

	return in
}

// availability serves the periodically refreshed snapshot; it may lag the
// ledger by one refresh interval.
func (in *EventHttp) availability(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")

	types, refreshedAt, ok := vars.GetEventAvailability(eventID)
	if !ok {
		writeErrorResponse(w, &errs.HttpError{Code: http.StatusNotFound, Message: "Not found"})
		return
	}

	writeJSONResponse(w, http.StatusOK, model.EventAvailabilityResponse{
		EventID:     eventID,
		TicketTypes: types,
		RefreshedAt: refreshedAt,
	})
}

func (in *EventHttp) applyAction(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	ctx, span := otel.Tracer.Start(r.Context(), "EventHttp.applyAction")
	defer span.End()

	eventID := r.PathValue("id")
	next, err := in.Status.ApplyEventAction(ctx, actor, eventID, r.PathValue("action"))
	if err != nil {
		writeErrorResponse(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, model.StatusResponse{ID: eventID, Status: string(next)})
}
