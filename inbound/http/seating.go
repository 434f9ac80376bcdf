package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"ticket-market/common"
	"ticket-market/common/constant"
	"ticket-market/common/contract"
	"ticket-market/common/errs"
	"ticket-market/common/otel"
	"ticket-market/core/seating"
	"ticket-market/core/status"
	"ticket-market/model"
	"ticket-market/outbound/sqlgen"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
)

type SeatingHttp struct {
	Db       contract.DbConn
	Querier  *sqlgen.Queries
	Validate *validator.Validate

	NewID func() string
}

func RegisterSeatingHttp(mux *http.ServeMux, db contract.DbConn, validate *validator.Validate) *SeatingHttp {
	in := &SeatingHttp{
		Db:       db,
		Querier:  sqlgen.New(db),
		Validate: validate,
		NewID:    func() string { return ulid.Make().String() },
	}

	mux.HandleFunc("POST /api/seating-maps", in.create)
	mux.HandleFunc("GET /api/seating-maps/{id}", in.get)
	mux.HandleFunc("POST /api/seating-maps/{id}/resize", in.resize)
	mux.HandleFunc("POST /api/seating-maps/{id}/sections", in.addSection)
	mux.HandleFunc("POST /api/seating-maps/{id}/sections/{sectionId}/price", in.updateSectionPrice)
	mux.HandleFunc("DELETE /api/seating-maps/{id}/sections/{sectionId}", in.removeSection)
	mux.HandleFunc("POST /api/seating-maps/{id}/apply-section", in.applySection)
	mux.HandleFunc("POST /api/seating-maps/{id}/toggle-availability", in.toggleAvailability)

	return in
}

func (in *SeatingHttp) create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateSeatingMapRequest
	if !in.decode(w, r, &req) {
		return
	}

	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if !actor.CanManage(req.OrganizationID) {
		writeErrorResponse(w, status.ErrForbidden)
		return
	}

	ctx, span := otel.Tracer.Start(r.Context(), "SeatingHttp.create")
	defer span.End()

	m, err := seating.New(in.NewID(), req.OrganizationID, req.Name, req.Rows, req.Columns, toSection(req.DefaultSection))
	if err != nil {
		writeErrorResponse(w, err)
		return
	}

	layout, err := m.MarshalLayout()
	if err != nil {
		common.UtilSpanError(span, err)
		writeErrorResponse(w, err)
		return
	}

	err = in.Querier.UpsertSeatingMap(ctx, sqlgen.UpsertSeatingMapParams{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		Name:           m.Name,
		Layout:         layout,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to insert seating map", common.ExtractTraceIDFromCtx(ctx), slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		writeErrorResponse(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, toSeatingMapResponse(m))
}

func (in *SeatingHttp) get(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer.Start(r.Context(), "SeatingHttp.get")
	defer span.End()

	row, err := in.Querier.GetSeatingMap(ctx, r.PathValue("id"))
	if errors.Is(err, pgx.ErrNoRows) {
		writeErrorResponse(w, status.ErrNotFound)
		return
	}

	if err != nil {
		common.UtilSpanError(span, err)
		writeErrorResponse(w, err)
		return
	}

	m, err := seating.UnmarshalLayout(row.ID, row.OrganizationID, row.Name, row.Layout)
	if err != nil {
		slog.ErrorContext(ctx, "stored seating layout is invalid", common.ExtractTraceIDFromCtx(ctx),
			slog.String("seating_map_id", row.ID), slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		writeErrorResponse(w, fmt.Errorf("seating map %s: %v", row.ID, err))
		return
	}

	writeJSONResponse(w, http.StatusOK, toSeatingMapResponse(m))
}

func (in *SeatingHttp) resize(w http.ResponseWriter, r *http.Request) {
	var req model.ResizeSeatingMapRequest
	if !in.decode(w, r, &req) {
		return
	}

	in.edit(w, r, "SeatingHttp.resize", func(m *seating.Map) error {
		return m.Resize(req.Rows, req.Columns)
	})
}

func (in *SeatingHttp) addSection(w http.ResponseWriter, r *http.Request) {
	var req model.SeatingSectionRequest
	if !in.decode(w, r, &req) {
		return
	}

	in.edit(w, r, "SeatingHttp.addSection", func(m *seating.Map) error {
		return m.AddSection(toSection(req))
	})
}

func (in *SeatingHttp) updateSectionPrice(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateSectionPriceRequest
	if !in.decode(w, r, &req) {
		return
	}

	sectionID := r.PathValue("sectionId")
	in.edit(w, r, "SeatingHttp.updateSectionPrice", func(m *seating.Map) error {
		return m.UpdateSectionPrice(sectionID, req.Price)
	})
}

func (in *SeatingHttp) removeSection(w http.ResponseWriter, r *http.Request) {
	sectionID := r.PathValue("sectionId")
	in.edit(w, r, "SeatingHttp.removeSection", func(m *seating.Map) error {
		return m.RemoveSection(sectionID)
	})
}

func (in *SeatingHttp) applySection(w http.ResponseWriter, r *http.Request) {
	var req model.ApplySectionRequest
	if !in.decode(w, r, &req) {
		return
	}

	in.edit(w, r, "SeatingHttp.applySection", func(m *seating.Map) error {
		return m.ApplySection(req.Seats, req.SectionID)
	})
}

func (in *SeatingHttp) toggleAvailability(w http.ResponseWriter, r *http.Request) {
	var req model.ToggleSeatsRequest
	if !in.decode(w, r, &req) {
		return
	}

	in.edit(w, r, "SeatingHttp.toggleAvailability", func(m *seating.Map) error {
		return m.ToggleAvailability(req.Seats)
	})
}

func (in *SeatingHttp) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeErrorResponse(w, &errs.HttpError{Code: http.StatusBadRequest, Message: "Invalid request"})
		return false
	}

	if err := in.Validate.Struct(req); err != nil {
		writeErrorResponse(w, err)
		return false
	}

	return true
}

// edit loads the map row locked, applies mutate and writes the new layout in
// the same transaction, so concurrent editors queue instead of overwriting
// each other.
func (in *SeatingHttp) edit(w http.ResponseWriter, r *http.Request, spanName string, mutate func(*seating.Map) error) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	ctx, span := otel.Tracer.Start(r.Context(), spanName)
	defer span.End()

	m, err := in.editTx(ctx, actor, r.PathValue("id"), mutate)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toSeatingMapResponse(m))
}

func (in *SeatingHttp) editTx(ctx context.Context, actor status.Actor, mapID string, mutate func(*seating.Map) error) (*seating.Map, error) {
	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	tx, err := in.Db.Begin(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to begin transaction", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		return nil, err
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback transaction", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		}
	}()

	withTx := in.Querier.WithTx(tx)

	row, err := withTx.GetSeatingMapForUpdate(ctx, mapID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("seating map %s: %w", mapID, status.ErrNotFound)
	}

	if err != nil {
		return nil, err
	}

	if !actor.CanManage(row.OrganizationID) {
		return nil, status.ErrForbidden
	}

	m, err := seating.UnmarshalLayout(row.ID, row.OrganizationID, row.Name, row.Layout)
	if err != nil {
		return nil, fmt.Errorf("seating map %s: %v", row.ID, err)
	}

	if err = mutate(m); err != nil {
		return nil, err
	}

	layout, err := m.MarshalLayout()
	if err != nil {
		return nil, err
	}

	err = withTx.UpsertSeatingMap(ctx, sqlgen.UpsertSeatingMapParams{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		Name:           m.Name,
		Layout:         layout,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to save seating map", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to commit transaction", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		return nil, err
	}

	return m, nil
}

func toSection(req model.SeatingSectionRequest) seating.Section {
	return seating.Section{ID: req.ID, Name: req.Name, Price: req.Price, Color: req.Color}
}

func toSeatingMapResponse(m *seating.Map) model.SeatingMapResponse {
	return model.SeatingMapResponse{
		ID:                 m.ID,
		OrganizationID:     m.OrganizationID,
		Name:               m.Name,
		Rows:               m.Rows(),
		Columns:            m.Columns(),
		DefaultSectionID:   m.DefaultSectionID(),
		Sections:           m.Sections(),
		Seats:              m.Seats(),
		AvailableBySection: m.AvailableCount(),
	}
}
