package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"ticket-market/common/errs"
	"ticket-market/common/otel"
	"ticket-market/core/status"
	"ticket-market/model"

	"github.com/go-playground/validator/v10"
)

type OrganizationHttp struct {
	Status   *status.Service
	Validate *validator.Validate
}

func RegisterOrganizationHttp(mux *http.ServeMux, statusService *status.Service, validate *validator.Validate) *OrganizationHttp {
	in := &OrganizationHttp{Status: statusService, Validate: validate}

	mux.HandleFunc("POST /api/admin/organizations/{id}/{action}", in.applyAction)

	return in
}

func (in *OrganizationHttp) applyAction(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	// the body is optional; only reject carries a reason
	var req model.OrganizationActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeErrorResponse(w, &errs.HttpError{Code: http.StatusBadRequest, Message: "Invalid request"})
		return
	}

	if err := in.Validate.Struct(req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	ctx, span := otel.Tracer.Start(r.Context(), "OrganizationHttp.applyAction")
	defer span.End()

	orgID := r.PathValue("id")
	next, err := in.Status.ApplyOrganizationAction(ctx, actor, orgID, r.PathValue("action"), req.Reason)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, model.StatusResponse{ID: orgID, Status: string(next)})
}
