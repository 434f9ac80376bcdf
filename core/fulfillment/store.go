package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"ticket-market/common"
	"ticket-market/common/constant"
	"ticket-market/common/contract"
	"ticket-market/common/money"
	"ticket-market/common/otel"
	"ticket-market/core/lifecycle"
	"ticket-market/outbound/sqlgen"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation         = "23505"
	ticketNumberUniqueKeyName = "tickets_ticket_number_key"
)

var (
	ErrEventNotFound         = errors.New("event not found")
	ErrDuplicateTicketNumber = errors.New("duplicate ticket number")
	ErrReservationNotHeld    = errors.New("reservation is no longer held")
)

// Store is the row store PlaceOrder reads from and writes to. SaveOrder writes
// the order, all of its tickets and the consumption of its reservations, or
// nothing.
type Store interface {
	GetEvent(ctx context.Context, eventID string) (Event, error)
	ListTicketTypes(ctx context.Context, eventID string) ([]TicketType, error)
	SaveOrder(ctx context.Context, order Order) error
	OrderExists(ctx context.Context, orderID string) (bool, error)
}

type PgStore struct {
	Db      contract.DbConn
	Querier *sqlgen.Queries
}

func NewPgStore(db contract.DbConn) *PgStore {
	return &PgStore{Db: db, Querier: sqlgen.New(db)}
}

func (st *PgStore) GetEvent(ctx context.Context, eventID string) (Event, error) {
	row, err := st.Querier.GetEvent(ctx, eventID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrEventNotFound
	}

	if err != nil {
		return Event{}, err
	}

	status, err := lifecycle.ParseEventStatus(row.Status)
	if err != nil {
		return Event{}, err
	}

	return Event{
		ID:             row.ID,
		OrganizationID: row.OrganizationID,
		Name:           row.Name,
		Status:         status,
	}, nil
}

func (st *PgStore) ListTicketTypes(ctx context.Context, eventID string) ([]TicketType, error) {
	rows, err := st.Querier.ListTicketTypesByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	types := make([]TicketType, 0, len(rows))
	for _, row := range rows {
		types = append(types, TicketType{
			ID:       row.ID,
			EventID:  row.EventID,
			Name:     row.Name,
			Price:    money.FromNumeric(row.Price),
			Quantity: row.Quantity,
			Sold:     row.Sold,
		})
	}

	return types, nil
}

func (st *PgStore) SaveOrder(ctx context.Context, order Order) error {
	ctx, span := otel.Tracer.Start(ctx, "PgStore.SaveOrder")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	tx, err := st.Db.Begin(ctx)
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

	withTx := st.Querier.WithTx(tx)

	err = withTx.InsertOrder(ctx, sqlgen.InsertOrderParams{
		ID:             order.ID,
		UserID:         order.UserID,
		EventID:        order.EventID,
		Status:         string(order.Status),
		Subtotal:       money.ToNumeric(order.Subtotal),
		Tax:            money.ToNumeric(order.Tax),
		Total:          money.ToNumeric(order.Total),
		BillingName:    order.Billing.Name,
		BillingEmail:   order.Billing.Email,
		BillingAddress: order.Billing.Address,
	})
	if err != nil {
		common.UtilSpanError(span, err)
		return fmt.Errorf("insert order: %w", err)
	}

	for _, t := range order.Tickets {
		err = withTx.InsertTicket(ctx, sqlgen.InsertTicketParams{
			ID:           t.ID,
			OrderID:      order.ID,
			TicketTypeID: t.TicketTypeID,
			TicketNumber: t.TicketNumber,
			Status:       string(t.Status),
		})
		if isDuplicateTicketNumber(err) {
			return ErrDuplicateTicketNumber
		}

		if err != nil {
			common.UtilSpanError(span, err)
			return fmt.Errorf("insert ticket: %w", err)
		}
	}

	if len(order.ReservationTokens) > 0 {
		cmd, err := withTx.ConsumeReservations(ctx, sqlgen.ConsumeReservationsParams{
			OrderID: order.ID,
			Ids:     order.ReservationTokens,
		})
		if err != nil {
			common.UtilSpanError(span, err)
			return fmt.Errorf("consume reservations: %w", err)
		}

		if cmd.RowsAffected() != int64(len(order.ReservationTokens)) {
			slog.WarnContext(ctx, "reservation released before the order was saved", traceIdAttr,
				slog.String("order_id", order.ID),
				slog.Int64("consumed", cmd.RowsAffected()),
				slog.Int("expected", len(order.ReservationTokens)),
			)
			return ErrReservationNotHeld
		}
	}

	if err = tx.Commit(ctx); err != nil {
		common.UtilSpanError(span, err)
		return fmt.Errorf("commit order: %w", err)
	}

	return nil
}

func (st *PgStore) OrderExists(ctx context.Context, orderID string) (bool, error) {
	return st.Querier.OrderExists(ctx, orderID)
}

func isDuplicateTicketNumber(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == ticketNumberUniqueKeyName
}
