// Package fulfillment turns a ticket selection into a completed order. Inventory
// is claimed through the ledger first; the order and its tickets are written in
// one transaction afterwards, and every claim is released again if that write
// does not happen.
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"ticket-market/common"
	"ticket-market/common/constant"
	"ticket-market/common/metrics"
	"ticket-market/common/money"
	"ticket-market/common/otel"
	"ticket-market/core/inventory"
	"ticket-market/core/lifecycle"
	"ticket-market/model"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Event struct {
	ID             string
	OrganizationID string
	Name           string
	Status         lifecycle.EventStatus
}

type TicketType struct {
	ID       string
	EventID  string
	Name     string
	Price    decimal.Decimal
	Quantity int32
	Sold     int32
}

func (t TicketType) Available() int32 {
	return t.Quantity - t.Sold
}

type Selection struct {
	TicketTypeID string
	Quantity     int32
}

type BillingInfo struct {
	Name    string
	Email   string
	Address string
}

type PlaceOrderRequest struct {
	UserID     string
	EventID    string
	Selections []Selection
	Billing    BillingInfo
}

type Order struct {
	ID       string
	UserID   string
	EventID  string
	Status   lifecycle.OrderStatus
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	Billing  BillingInfo
	Tickets  []Ticket

	// ReservationTokens are the ledger claims this order consumes when it is saved.
	ReservationTokens []string
}

type Ticket struct {
	ID           string
	OrderID      string
	TicketTypeID string
	TicketNumber string
	Status       lifecycle.TicketStatus
}

// Code is the value encoded into the scannable code printed on a ticket.
func (t Ticket) Code() string {
	return constant.TicketCodePrefix + t.ID
}

type Notifier interface {
	Notify(ctx context.Context, kind, recipient string, payload any) bool
}

// Exhauster moves an event to sold_out once none of its ticket types has stock left.
type Exhauster interface {
	ExhaustIfSoldOut(ctx context.Context, eventID string) (bool, error)
}

type Service struct {
	Store     Store
	Ledger    inventory.Ledger
	Notifier  Notifier
	Exhauster Exhauster

	TaxRate        decimal.Decimal
	InsertRetries  int
	PersistTimeout time.Duration

	NewID           func() string
	NewTicketNumber func() string
}

func NewService(cfg *viper.Viper, store Store, ledger inventory.Ledger, notifier Notifier, exhauster Exhauster) (*Service, error) {
	cfg.SetDefault("order.tax_rate", constant.DefaultTaxRate)
	cfg.SetDefault("order.ticket_insert_retries", constant.DefaultTicketInsertRetries)

	taxRate, err := decimal.NewFromString(cfg.GetString("order.tax_rate"))
	if err != nil {
		return nil, fmt.Errorf("order.tax_rate: %w", err)
	}

	if taxRate.IsNegative() {
		return nil, fmt.Errorf("order.tax_rate: must not be negative, got %s", taxRate)
	}

	return &Service{
		Store:     store,
		Ledger:    ledger,
		Notifier:  notifier,
		Exhauster: exhauster,

		TaxRate:        taxRate,
		InsertRetries:  cfg.GetInt("order.ticket_insert_retries"),
		PersistTimeout: cfg.GetDuration("order.persist_timeout"),

		NewID:           func() string { return ulid.Make().String() },
		NewTicketNumber: func() string { return constant.TicketNumberPrefix + ulid.Make().String() },
	}, nil
}

func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (Order, error) {
	start := time.Now()
	defer func() {
		metrics.OrderPlacementDuration.Observe(time.Since(start).Seconds())
	}()

	ctx, span := otel.Tracer.Start(ctx, "fulfillment.PlaceOrder", trace.WithAttributes(
		attribute.String("event.id", req.EventID),
		attribute.String("user.id", req.UserID),
	))
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	order, err := s.placeOrder(ctx, req, traceIdAttr)
	if err != nil {
		kind, _ := KindOf(err)
		switch kind {
		case KindInsufficientInventory:
			metrics.OrdersPlaced.WithLabelValues(metrics.OutcomeInsufficient).Inc()
			slog.DebugContext(ctx, "order rejected for insufficient inventory", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		case KindPersistenceFailure:
			metrics.OrdersPlaced.WithLabelValues(metrics.OutcomeError).Inc()
			common.UtilSpanError(span, err)
			slog.ErrorContext(ctx, "failed to place order", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		default:
			metrics.OrdersPlaced.WithLabelValues(metrics.OutcomeRejected).Inc()
			slog.DebugContext(ctx, "order rejected", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		}

		return Order{}, err
	}

	metrics.OrdersPlaced.WithLabelValues(metrics.OutcomeSuccess).Inc()
	slog.InfoContext(ctx, "order placed", traceIdAttr, slog.String("order_id", order.ID), slog.Int("tickets", len(order.Tickets)))

	return order, nil
}

func (s *Service) placeOrder(ctx context.Context, req PlaceOrderRequest, traceIdAttr slog.Attr) (Order, error) {
	lines, err := mergeSelections(req.Selections)
	if err != nil {
		return Order{}, err
	}

	event, err := s.Store.GetEvent(ctx, req.EventID)
	if errors.Is(err, ErrEventNotFound) {
		return Order{}, validationError("event %s not found", req.EventID)
	}

	if err != nil {
		return Order{}, persistenceError("load event", err)
	}

	if !event.Status.Purchasable() {
		return Order{}, &Error{
			Kind:   KindInvalidEventState,
			Detail: fmt.Sprintf("event %s is %s", event.ID, event.Status),
		}
	}

	types, err := s.Store.ListTicketTypes(ctx, event.ID)
	if err != nil {
		return Order{}, persistenceError("load ticket types", err)
	}

	byID := make(map[string]TicketType, len(types))
	for _, t := range types {
		byID[t.ID] = t
	}

	for _, l := range lines {
		t, ok := byID[l.TicketTypeID]
		if !ok {
			return Order{}, validationError("ticket type %s does not belong to event %s", l.TicketTypeID, event.ID)
		}

		if t.Available() <= 0 {
			return Order{}, &Error{
				Kind:         KindInsufficientInventory,
				TicketTypeID: t.ID,
				Detail:       fmt.Sprintf("ticket type %s is sold out", t.ID),
			}
		}
	}

	reservations, err := s.reserveAll(ctx, lines)
	if err != nil {
		return Order{}, err
	}

	order := s.buildOrder(req, lines, byID)
	for _, r := range reservations {
		order.ReservationTokens = append(order.ReservationTokens, r.Token)
	}

	if err := s.persist(ctx, &order); err != nil {
		if !s.settleFailedSave(ctx, order.ID, reservations, traceIdAttr) {
			return Order{}, persistenceError("save order", err)
		}

		slog.WarnContext(ctx, "order committed although the save reported an error", traceIdAttr,
			slog.String("order_id", order.ID), slog.Any(constant.LogFieldErr, err))
	}

	if s.Exhauster != nil {
		if _, err := s.Exhauster.ExhaustIfSoldOut(ctx, event.ID); err != nil {
			slog.WarnContext(ctx, "failed to mark event sold out", traceIdAttr, slog.String("event_id", event.ID), slog.Any(constant.LogFieldErr, err))
		}
	}

	if s.Notifier != nil {
		if !s.Notifier.Notify(ctx, constant.NotifyKindOrderCompleted, req.Billing.Email, orderCompletedPayload(order, byID)) {
			slog.WarnContext(ctx, "order completed notification not sent", traceIdAttr, slog.String("order_id", order.ID))
		}
	}

	return order, nil
}

// mergeSelections sums repeated ticket types so each is reserved once.
func mergeSelections(selections []Selection) ([]Selection, error) {
	if len(selections) == 0 {
		return nil, validationError("selections must not be empty")
	}

	lines := make([]Selection, 0, len(selections))
	index := make(map[string]int, len(selections))

	for _, sel := range selections {
		if sel.TicketTypeID == "" {
			return nil, validationError("ticket type id is required")
		}

		if sel.Quantity < 1 {
			return nil, &Error{
				Kind:         KindValidation,
				TicketTypeID: sel.TicketTypeID,
				Detail:       fmt.Sprintf("quantity for ticket type %s must be at least 1", sel.TicketTypeID),
			}
		}

		i, ok := index[sel.TicketTypeID]
		if !ok {
			index[sel.TicketTypeID] = len(lines)
			lines = append(lines, sel)
			continue
		}

		if int64(lines[i].Quantity)+int64(sel.Quantity) > math.MaxInt32 {
			return nil, validationError("quantity for ticket type %s is too large", sel.TicketTypeID)
		}

		lines[i].Quantity += sel.Quantity
	}

	return lines, nil
}

func (s *Service) reserveAll(ctx context.Context, lines []Selection) ([]inventory.Reservation, error) {
	reservations := make([]inventory.Reservation, 0, len(lines))

	for _, l := range lines {
		r, err := s.Ledger.Reserve(ctx, l.TicketTypeID, l.Quantity)
		if err == nil {
			reservations = append(reservations, r)
			continue
		}

		s.releaseAll(ctx, reservations)

		var insufficient *inventory.InsufficientInventoryError
		switch {
		case errors.As(err, &insufficient):
			return nil, &Error{
				Kind:         KindInsufficientInventory,
				TicketTypeID: l.TicketTypeID,
				Detail:       fmt.Sprintf("ticket type %s has %d left, %d requested", l.TicketTypeID, insufficient.Available, insufficient.Requested),
				Err:          err,
			}
		case errors.Is(err, inventory.ErrTicketTypeNotFound):
			return nil, &Error{
				Kind:         KindValidation,
				TicketTypeID: l.TicketTypeID,
				Detail:       fmt.Sprintf("ticket type %s not found", l.TicketTypeID),
				Err:          err,
			}
		default:
			fe := persistenceError("reserve inventory", err)
			fe.TicketTypeID = l.TicketTypeID
			return nil, fe
		}
	}

	return reservations, nil
}

// settleFailedSave decides what a failed save left behind. It reports true when
// the order is in fact durable, in which case its claims were consumed and must
// stay. When the outcome cannot be read back nothing is released; the claims are
// left for the stale reservation sweep, which skips consumed ones.
func (s *Service) settleFailedSave(ctx context.Context, orderID string, reservations []inventory.Reservation, traceIdAttr slog.Attr) bool {
	ctx = context.WithoutCancel(ctx)

	committed, err := s.Store.OrderExists(ctx, orderID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read back order after save error, keeping reservations", traceIdAttr,
			slog.String("order_id", orderID), slog.Any(constant.LogFieldErr, err))
		return false
	}

	if committed {
		return true
	}

	s.releaseAll(ctx, reservations)

	return false
}

// releaseAll returns reservations newest first. It runs detached from ctx so a
// cancelled or timed out request still gives its inventory back.
func (s *Service) releaseAll(ctx context.Context, reservations []inventory.Reservation) {
	ctx = context.WithoutCancel(ctx)

	for i := len(reservations) - 1; i >= 0; i-- {
		if err := s.Ledger.Release(ctx, reservations[i].Token); err != nil {
			slog.ErrorContext(ctx, "failed to release reservation",
				slog.String("reservation", reservations[i].Token),
				slog.String("ticket_type_id", reservations[i].TicketTypeID),
				slog.Any(constant.LogFieldErr, err),
			)
		}
	}
}

func (s *Service) buildOrder(req PlaceOrderRequest, lines []Selection, byID map[string]TicketType) Order {
	order := Order{
		ID:      s.NewID(),
		UserID:  req.UserID,
		EventID: req.EventID,
		Status:  lifecycle.OrderCompleted,
		Billing: req.Billing,
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(byID[l.TicketTypeID].Price.Mul(decimal.NewFromInt32(l.Quantity)))

		for i := int32(0); i < l.Quantity; i++ {
			order.Tickets = append(order.Tickets, Ticket{
				ID:           s.NewID(),
				OrderID:      order.ID,
				TicketTypeID: l.TicketTypeID,
				TicketNumber: s.NewTicketNumber(),
				Status:       lifecycle.TicketValid,
			})
		}
	}

	order.Subtotal = money.Round(subtotal)
	order.Tax = money.Round(order.Subtotal.Mul(s.TaxRate))
	order.Total = order.Subtotal.Add(order.Tax)

	return order
}

// persist writes the order, drawing fresh ticket numbers after a uniqueness
// collision until InsertRetries is spent.
func (s *Service) persist(ctx context.Context, order *Order) error {
	attempts := s.InsertRetries
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = s.save(ctx, *order)
		if !errors.Is(err, ErrDuplicateTicketNumber) {
			return err
		}

		slog.WarnContext(ctx, "ticket number collision, regenerating", slog.String("order_id", order.ID), slog.Int("attempt", attempt))

		for i := range order.Tickets {
			order.Tickets[i].TicketNumber = s.NewTicketNumber()
		}
	}

	return err
}

func (s *Service) save(ctx context.Context, order Order) error {
	if s.PersistTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.PersistTimeout)
		defer cancel()
	}

	return s.Store.SaveOrder(ctx, order)
}

func orderCompletedPayload(order Order, byID map[string]TicketType) model.OrderCompletedPayload {
	payload := model.OrderCompletedPayload{
		OrderID:  order.ID,
		Name:     order.Billing.Name,
		Subtotal: order.Subtotal,
		Tax:      order.Tax,
		Total:    order.Total,
		Tickets:  make([]model.OrderCompletedTicket, 0, len(order.Tickets)),
	}

	for _, t := range order.Tickets {
		payload.Tickets = append(payload.Tickets, model.OrderCompletedTicket{
			TicketNumber: t.TicketNumber,
			TicketType:   byID[t.TicketTypeID].Name,
			Code:         t.Code(),
		})
	}

	return payload
}
