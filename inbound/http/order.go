package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"ticket-market/common"
	"ticket-market/common/constant"
	"ticket-market/common/errs"
	"ticket-market/common/otel"
	"ticket-market/core/fulfillment"
	"ticket-market/core/status"
	"ticket-market/model"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// UserLock keeps one order submission per user in flight.
type UserLock interface {
	Acquire(ctx context.Context, userID string) (bool, error)
	Release(ctx context.Context, userID string) error
}

type RedisUserLock struct {
	Cache *redis.Client
	TTL   time.Duration
}

func (l RedisUserLock) Acquire(ctx context.Context, userID string) (bool, error) {
	return l.Cache.SetNX(ctx, fmt.Sprintf(constant.OrderUserLock, userID), true, l.TTL).Result()
}

func (l RedisUserLock) Release(ctx context.Context, userID string) error {
	return l.Cache.Del(ctx, fmt.Sprintf(constant.OrderUserLock, userID)).Err()
}

type OrderHttp struct {
	Fulfillment *fulfillment.Service
	Status      *status.Service
	Lock        UserLock
	Validate    *validator.Validate
}

func RegisterOrderHttp(
	mux *http.ServeMux,
	cfg *viper.Viper,
	fulfillmentService *fulfillment.Service,
	statusService *status.Service,
	cache *redis.Client,
	validate *validator.Validate,
) *OrderHttp {
	cfg.SetDefault("order.user_lock_ttl", constant.OrderUserLockDefaultTTL)

	in := &OrderHttp{
		Fulfillment: fulfillmentService,
		Status:      statusService,
		Lock:        RedisUserLock{Cache: cache, TTL: cfg.GetDuration("order.user_lock_ttl")},
		Validate:    validate,
	}

	mux.HandleFunc("POST /api/orders", in.create)
	mux.HandleFunc("POST /api/orders/{id}/refund", in.refund)

	return in
}

func (in OrderHttp) create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, &errs.HttpError{Code: http.StatusBadRequest, Message: "Invalid request"})
		return
	}

	if err := in.Validate.Struct(req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	ctx, span := otel.Tracer.Start(r.Context(), "OrderHttp.create")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)
	slog.InfoContext(ctx, "create order receive request", slog.Any(constant.LogFieldPayload, req), traceIdAttr)

	// one order in flight per user; the ledger still guards stock on its own
	locked, err := in.Lock.Acquire(ctx, actor.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to set user order lock", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		writeErrorResponse(w, err)
		return
	}

	if !locked {
		slog.DebugContext(ctx, "order already in progress", traceIdAttr, slog.String("user_id", actor.UserID))
		writeErrorResponse(w, &errs.HttpError{Code: http.StatusConflict, Message: "Order already in progress"})
		return
	}

	// released even when the request was cancelled or timed out
	defer func() {
		if err := in.Lock.Release(context.WithoutCancel(ctx), actor.UserID); err != nil {
			slog.ErrorContext(ctx, "failed to release user order lock", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		}
	}()

	selections := make([]fulfillment.Selection, 0, len(req.Selections))
	for _, sel := range req.Selections {
		selections = append(selections, fulfillment.Selection{TicketTypeID: sel.TicketTypeID, Quantity: sel.Quantity})
	}

	order, err := in.Fulfillment.PlaceOrder(ctx, fulfillment.PlaceOrderRequest{
		UserID:     actor.UserID,
		EventID:    req.EventID,
		Selections: selections,
		Billing: fulfillment.BillingInfo{
			Name:    req.Billing.Name,
			Email:   req.Billing.Email,
			Address: req.Billing.Address,
		},
	})
	if err != nil {
		writeErrorResponse(w, err)
		return
	}

	slog.InfoContext(ctx, "create order success", traceIdAttr, slog.Any(constant.LogFieldResponse, order.ID))

	writeJSONResponse(w, http.StatusOK, toOrderResponse(order))
}

func (in OrderHttp) refund(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	ctx, span := otel.Tracer.Start(r.Context(), "OrderHttp.refund")
	defer span.End()

	orderID := r.PathValue("id")
	next, err := in.Status.RefundOrder(ctx, actor, orderID)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, model.StatusResponse{ID: orderID, Status: string(next)})
}

func toOrderResponse(order fulfillment.Order) model.OrderResponse {
	tickets := make([]model.TicketResponse, 0, len(order.Tickets))
	for _, t := range order.Tickets {
		tickets = append(tickets, model.TicketResponse{
			ID:           t.ID,
			TicketTypeID: t.TicketTypeID,
			TicketNumber: t.TicketNumber,
			Status:       string(t.Status),
			Code:         t.Code(),
		})
	}

	return model.OrderResponse{
		ID:       order.ID,
		EventID:  order.EventID,
		Status:   string(order.Status),
		Subtotal: order.Subtotal,
		Tax:      order.Tax,
		Total:    order.Total,
		Tickets:  tickets,
	}
}
