package inventory

import (
	"context"
	"errors"
	"log/slog"
	"ticket-market/common"
	"ticket-market/common/constant"
	"ticket-market/common/contract"
	"ticket-market/common/metrics"
	"ticket-market/common/otel"
	"ticket-market/outbound/sqlgen"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PgLedger stores counters in ticket_types.sold and every claim as a row in
// reservations. The conditional UPDATE is the only writer of sold.
type PgLedger struct {
	Db      contract.DbConn
	Querier *sqlgen.Queries

	NewToken func() string
}

func NewPgLedger(db contract.DbConn) *PgLedger {
	return &PgLedger{
		Db:       db,
		Querier:  sqlgen.New(db),
		NewToken: func() string { return ulid.Make().String() },
	}
}

func (l *PgLedger) Reserve(ctx context.Context, ticketTypeID string, quantity int32) (Reservation, error) {
	if quantity < 1 {
		return Reservation{}, ErrInvalidQuantity
	}

	ctx, span := otel.Tracer.Start(ctx, "PgLedger.Reserve", trace.WithAttributes(
		attribute.String("ticket_type.id", ticketTypeID),
		attribute.Int("quantity", int(quantity)),
	))
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	tx, err := l.Db.Begin(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to begin transaction", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		metrics.InventoryReservations.WithLabelValues(metrics.OutcomeError).Inc()
		return Reservation{}, err
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback transaction", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		}
	}()

	withTx := l.Querier.WithTx(tx)

	_, err = withTx.ReserveTicketType(ctx, sqlgen.ReserveTicketTypeParams{Quantity: quantity, ID: ticketTypeID})
	if errors.Is(err, pgx.ErrNoRows) {
		return Reservation{}, l.explainRejection(ctx, withTx, ticketTypeID, quantity)
	}

	if err != nil {
		slog.ErrorContext(ctx, "failed to reserve ticket type", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		metrics.InventoryReservations.WithLabelValues(metrics.OutcomeError).Inc()
		return Reservation{}, err
	}

	r := Reservation{Token: l.NewToken(), TicketTypeID: ticketTypeID, Quantity: quantity}

	err = withTx.InsertReservation(ctx, sqlgen.InsertReservationParams{
		ID:           r.Token,
		TicketTypeID: ticketTypeID,
		Quantity:     quantity,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to insert reservation", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		metrics.InventoryReservations.WithLabelValues(metrics.OutcomeError).Inc()
		return Reservation{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to commit transaction", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		metrics.InventoryReservations.WithLabelValues(metrics.OutcomeError).Inc()
		return Reservation{}, err
	}

	metrics.InventoryReservations.WithLabelValues(metrics.OutcomeSuccess).Inc()

	return r, nil
}

// explainRejection runs after the conditional UPDATE matched no row, to tell an
// unknown ticket type apart from one without enough stock.
func (l *PgLedger) explainRejection(ctx context.Context, q *sqlgen.Queries, ticketTypeID string, quantity int32) error {
	s, err := q.GetTicketTypeStock(ctx, ticketTypeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrTicketTypeNotFound
	}

	if err != nil {
		return err
	}

	slog.DebugContext(ctx, "ticket type has insufficient inventory",
		slog.String("ticket_type_id", ticketTypeID),
		slog.Int("requested", int(quantity)),
		slog.Int("available", int(s.Quantity-s.Sold)),
	)
	metrics.InventoryReservations.WithLabelValues(metrics.OutcomeInsufficient).Inc()

	return &InsufficientInventoryError{
		TicketTypeID: ticketTypeID,
		Requested:    quantity,
		Available:    s.Quantity - s.Sold,
	}
}

func (l *PgLedger) Release(ctx context.Context, token string) error {
	ctx, span := otel.Tracer.Start(ctx, "PgLedger.Release", trace.WithAttributes(attribute.String("reservation.id", token)))
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	tx, err := l.Db.Begin(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to begin transaction", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		return err
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback transaction", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		}
	}()

	withTx := l.Querier.WithTx(tx)

	released, err := withTx.ReleaseReservation(ctx, token)
	if errors.Is(err, pgx.ErrNoRows) {
		slog.DebugContext(ctx, "reservation already released or unknown", traceIdAttr)
		return nil
	}

	if err != nil {
		slog.ErrorContext(ctx, "failed to mark reservation released", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		return err
	}

	cmd, err := withTx.ReturnTicketTypeUnits(ctx, sqlgen.ReturnTicketTypeUnitsParams{
		Quantity: released.Quantity,
		ID:       released.TicketTypeID,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to return ticket type units", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		return err
	}

	if cmd.RowsAffected() == 0 {
		err = errors.New("ticket type sold counter is below the reserved quantity")
		slog.ErrorContext(ctx, "failed to return ticket type units", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to commit transaction", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		return err
	}

	metrics.InventoryReleases.Inc()

	return nil
}

// ReleaseStale releases up to limit reservations created before the cutoff
// that no order consumed. They belong to order attempts that died between
// Reserve and the order write.
func (l *PgLedger) ReleaseStale(ctx context.Context, before time.Time, limit int32) (int, error) {
	ctx, span := otel.Tracer.Start(ctx, "PgLedger.ReleaseStale")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	tokens, err := l.Querier.ListStaleReservations(ctx, sqlgen.ListStaleReservationsParams{
		CreatedBefore: pgtype.Timestamp{Time: before, Valid: true},
		MaxRows:       limit,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to list stale reservations", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		return 0, err
	}

	released := 0
	for _, token := range tokens {
		if err := l.Release(ctx, token); err != nil {
			common.UtilSpanError(span, err)
			return released, err
		}
		released++
	}

	return released, nil
}

func (l *PgLedger) Available(ctx context.Context, ticketTypeID string) (int32, error) {
	ctx, span := otel.Tracer.Start(ctx, "PgLedger.Available")
	defer span.End()

	s, err := l.Querier.GetTicketTypeStock(ctx, ticketTypeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrTicketTypeNotFound
	}

	if err != nil {
		common.UtilSpanError(span, err)
		return 0, err
	}

	return s.Quantity - s.Sold, nil
}
