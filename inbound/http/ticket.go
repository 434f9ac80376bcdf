package http

import (
	"net/http"
	"ticket-market/common/otel"
	"ticket-market/core/status"
	"ticket-market/model"
)

type TicketHttp struct {
	Status *status.Service
}

func RegisterTicketHttp(mux *http.ServeMux, statusService *status.Service) *TicketHttp {
	in := &TicketHttp{Status: statusService}

	mux.HandleFunc("POST /api/tickets/{id}/redeem", in.redeem)

	return in
}

func (in *TicketHttp) redeem(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	ctx, span := otel.Tracer.Start(r.Context(), "TicketHttp.redeem")
	defer span.End()

	ticketID := r.PathValue("id")
	next, err := in.Status.RedeemTicket(ctx, actor, ticketID)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, model.StatusResponse{ID: ticketID, Status: string(next)})
}
