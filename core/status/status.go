// Package status applies lifecycle transitions to stored organizations, events,
// orders and tickets. Each write is a compare-and-set on the status the
// transition was computed from, so a concurrent change is reported instead of
// being overwritten.
package status

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"ticket-market/common"
	"ticket-market/common/constant"
	"ticket-market/common/contract"
	"ticket-market/common/metrics"
	"ticket-market/common/otel"
	"ticket-market/core/lifecycle"
	"ticket-market/model"
	"ticket-market/outbound/sqlgen"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const RoleAdmin = "admin"

var (
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrUnknownAction = errors.New("unknown action")
	ErrStaleStatus   = errors.New("status changed concurrently")
)

// Actor is the authenticated caller. OrganizationID is set for members of an
// organization and empty for plain customers.
type Actor struct {
	UserID         string
	Role           string
	OrganizationID string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanManage reports whether the actor may act on resources owned by orgID.
func (a Actor) CanManage(orgID string) bool {
	return a.IsAdmin() || (a.OrganizationID != "" && a.OrganizationID == orgID)
}

type Notifier interface {
	Notify(ctx context.Context, kind, recipient string, payload any) bool
}

type Service struct {
	Db       contract.DbConn
	Querier  *sqlgen.Queries
	Notifier Notifier
}

func NewService(db contract.DbConn, notifier Notifier) *Service {
	return &Service{
		Db:       db,
		Querier:  sqlgen.New(db),
		Notifier: notifier,
	}
}

func (s *Service) ApplyOrganizationAction(ctx context.Context, actor Actor, orgID, rawAction, reason string) (lifecycle.OrganizationStatus, error) {
	ctx, span := otel.Tracer.Start(ctx, "status.ApplyOrganizationAction")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	action, err := lifecycle.ParseOrganizationAction(rawAction)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownAction, err)
	}

	if lifecycle.OrganizationActionRequiresAdmin(action) && !actor.IsAdmin() {
		return "", ErrForbidden
	}

	org, err := s.Querier.GetOrganization(ctx, orgID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("organization %s: %w", orgID, ErrNotFound)
	}

	if err != nil {
		common.UtilSpanError(span, err)
		return "", err
	}

	current, err := lifecycle.ParseOrganizationStatus(org.Status)
	if err != nil {
		return "", err
	}

	next, err := lifecycle.TransitionOrganization(current, action)
	if err != nil {
		recordTransition(lifecycle.EntityOrganization, err)
		return current, err
	}

	cmd, err := s.Querier.UpdateOrganizationStatus(ctx, sqlgen.UpdateOrganizationStatusParams{
		ToStatus:   string(next),
		ID:         orgID,
		FromStatus: string(current),
	})
	if err = casResult(cmd, err); err != nil {
		common.UtilSpanError(span, err)
		return current, err
	}

	recordTransition(lifecycle.EntityOrganization, nil)
	slog.InfoContext(ctx, "organization status changed", traceIdAttr,
		slog.String("organization_id", orgID),
		slog.String("from", string(current)),
		slog.String("to", string(next)),
		slog.String("actor", actor.UserID),
	)

	var kind string
	switch action {
	case lifecycle.OrganizationApprove:
		kind = constant.NotifyKindOrgApproved
	case lifecycle.OrganizationReject:
		kind = constant.NotifyKindOrgRejected
	}

	if kind != "" && s.Notifier != nil {
		sent := s.Notifier.Notify(ctx, kind, org.Email, model.OrganizationDecisionPayload{
			OrganizationID: org.ID,
			Name:           org.Name,
			Reason:         reason,
		})
		if !sent {
			slog.WarnContext(ctx, "organization notification not sent", traceIdAttr, slog.String("kind", kind))
		}
	}

	return next, nil
}

func (s *Service) ApplyEventAction(ctx context.Context, actor Actor, eventID, rawAction string) (lifecycle.EventStatus, error) {
	ctx, span := otel.Tracer.Start(ctx, "status.ApplyEventAction")
	defer span.End()

	action, err := lifecycle.ParseEventAction(rawAction)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownAction, err)
	}

	if lifecycle.EventActionIsInternal(action) {
		return "", ErrForbidden
	}

	if lifecycle.EventActionRequiresAdmin(action) && !actor.IsAdmin() {
		return "", ErrForbidden
	}

	next, err := s.transitionEvent(ctx, eventID, action, func(event sqlgen.Event) error {
		if !actor.CanManage(event.OrganizationID) {
			return ErrForbidden
		}
		return nil
	})
	if err != nil && !errors.As(err, new(*lifecycle.IllegalTransitionError)) {
		common.UtilSpanError(span, err)
	}

	return next, err
}

// ExhaustIfSoldOut moves an on_sale event to sold_out once every one of its
// ticket types has sold its whole quantity.
func (s *Service) ExhaustIfSoldOut(ctx context.Context, eventID string) (bool, error) {
	ctx, span := otel.Tracer.Start(ctx, "status.ExhaustIfSoldOut")
	defer span.End()

	soldOut, err := s.Querier.IsEventSoldOut(ctx, eventID)
	if err != nil {
		common.UtilSpanError(span, err)
		return false, err
	}

	if !soldOut {
		return false, nil
	}

	event, err := s.Querier.GetEvent(ctx, eventID)
	if err != nil {
		common.UtilSpanError(span, err)
		return false, err
	}

	if event.Status != string(lifecycle.EventOnSale) {
		return false, nil
	}

	_, err = s.transitionEvent(ctx, eventID, lifecycle.EventExhaust, nil)
	if errors.Is(err, ErrStaleStatus) {
		// another order got there first
		return false, nil
	}

	if err != nil {
		common.UtilSpanError(span, err)
		return false, err
	}

	return true, nil
}

func (s *Service) transitionEvent(ctx context.Context, eventID string, action lifecycle.EventAction, authorize func(sqlgen.Event) error) (lifecycle.EventStatus, error) {
	event, err := s.Querier.GetEvent(ctx, eventID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("event %s: %w", eventID, ErrNotFound)
	}

	if err != nil {
		return "", err
	}

	if authorize != nil {
		if err = authorize(event); err != nil {
			return "", err
		}
	}

	current, err := lifecycle.ParseEventStatus(event.Status)
	if err != nil {
		return "", err
	}

	next, err := lifecycle.TransitionEvent(current, action)
	if err != nil {
		recordTransition(lifecycle.EntityEvent, err)
		return current, err
	}

	cmd, err := s.Querier.UpdateEventStatus(ctx, sqlgen.UpdateEventStatusParams{
		ToStatus:   string(next),
		ID:         eventID,
		FromStatus: string(current),
	})
	if err = casResult(cmd, err); err != nil {
		return current, err
	}

	recordTransition(lifecycle.EntityEvent, nil)
	slog.InfoContext(ctx, "event status changed", common.ExtractTraceIDFromCtx(ctx),
		slog.String("event_id", eventID),
		slog.String("from", string(current)),
		slog.String("to", string(next)),
	)

	return next, nil
}

// RefundOrder marks a completed order refunded and cancels its still valid
// tickets in the same transaction. Sold counters are left alone.
func (s *Service) RefundOrder(ctx context.Context, actor Actor, orderID string) (lifecycle.OrderStatus, error) {
	if !actor.IsAdmin() {
		return "", ErrForbidden
	}

	ctx, span := otel.Tracer.Start(ctx, "status.RefundOrder")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	tx, err := s.Db.Begin(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to begin transaction", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		return "", err
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback transaction", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		}
	}()

	withTx := s.Querier.WithTx(tx)

	order, err := withTx.GetOrder(ctx, orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}

	if err != nil {
		common.UtilSpanError(span, err)
		return "", err
	}

	current, err := lifecycle.ParseOrderStatus(order.Status)
	if err != nil {
		return "", err
	}

	next, err := lifecycle.TransitionOrder(current, lifecycle.OrderRefund)
	if err != nil {
		recordTransition(lifecycle.EntityOrder, err)
		return current, err
	}

	cmd, err := withTx.UpdateOrderStatus(ctx, sqlgen.UpdateOrderStatusParams{
		ToStatus:   string(next),
		ID:         orderID,
		FromStatus: string(current),
	})
	if err = casResult(cmd, err); err != nil {
		common.UtilSpanError(span, err)
		return current, err
	}

	tickets, err := withTx.ListTicketsByOrder(ctx, orderID)
	if err != nil {
		common.UtilSpanError(span, err)
		return current, err
	}

	cancelled := 0
	for _, t := range tickets {
		if t.Status != string(lifecycle.TicketValid) {
			continue
		}

		to, err := lifecycle.TransitionTicket(lifecycle.TicketValid, lifecycle.TicketCancel)
		if err != nil {
			return current, err
		}

		cmd, err := withTx.UpdateTicketStatus(ctx, sqlgen.UpdateTicketStatusParams{
			ToStatus:   string(to),
			ID:         t.ID,
			FromStatus: t.Status,
		})
		if err = casResult(cmd, err); err != nil {
			common.UtilSpanError(span, err)
			return current, fmt.Errorf("cancel ticket %s: %w", t.ID, err)
		}

		cancelled++
	}

	if err = tx.Commit(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to commit transaction", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		return current, err
	}

	recordTransition(lifecycle.EntityOrder, nil)
	slog.InfoContext(ctx, "order refunded", traceIdAttr,
		slog.String("order_id", orderID),
		slog.Int("cancelled_tickets", cancelled),
		slog.String("actor", actor.UserID),
	)

	return next, nil
}

func (s *Service) RedeemTicket(ctx context.Context, actor Actor, ticketID string) (lifecycle.TicketStatus, error) {
	if !actor.IsAdmin() {
		return "", ErrForbidden
	}

	ctx, span := otel.Tracer.Start(ctx, "status.RedeemTicket")
	defer span.End()

	ticket, err := s.Querier.GetTicket(ctx, ticketID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("ticket %s: %w", ticketID, ErrNotFound)
	}

	if err != nil {
		common.UtilSpanError(span, err)
		return "", err
	}

	current, err := lifecycle.ParseTicketStatus(ticket.Status)
	if err != nil {
		return "", err
	}

	next, err := lifecycle.TransitionTicket(current, lifecycle.TicketRedeem)
	if err != nil {
		recordTransition(lifecycle.EntityTicket, err)
		return current, err
	}

	cmd, err := s.Querier.UpdateTicketStatus(ctx, sqlgen.UpdateTicketStatusParams{
		ToStatus:   string(next),
		ID:         ticketID,
		FromStatus: string(current),
	})
	if err = casResult(cmd, err); err != nil {
		common.UtilSpanError(span, err)
		return current, err
	}

	recordTransition(lifecycle.EntityTicket, nil)

	return next, nil
}

func casResult(cmd pgconn.CommandTag, err error) error {
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrStaleStatus
	}

	return nil
}

func recordTransition(entity string, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeRejected
	}

	metrics.LifecycleTransitions.WithLabelValues(entity, outcome).Inc()
}
