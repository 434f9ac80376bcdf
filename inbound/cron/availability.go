package cron

import (
	"context"
	"log/slog"
	"ticket-market/common"
	"ticket-market/common/constant"
	"ticket-market/common/money"
	"ticket-market/common/otel"
	"ticket-market/common/vars"
	"ticket-market/model"
	"ticket-market/outbound/sqlgen"
	"time"

	"github.com/spf13/viper"
)

// AvailabilityCron keeps the in-memory availability read model in step with
// ticket_types for every event that is, or was, on sale.
type AvailabilityCron struct {
	Cfg     *viper.Viper
	Querier *sqlgen.Queries

	TimeNow func() time.Time
}

func (in AvailabilityCron) Start(ctx context.Context) {
	refreshTicker := time.NewTicker(in.Cfg.GetDuration("cron.availability.refresh.interval"))
	defer refreshTicker.Stop()

	in.refresh(ctx)

	slog.Info("availability cron started")

	for {
		select {
		case <-refreshTicker.C:
			in.refresh(ctx)
		case <-ctx.Done():
			slog.Info("availability cron stopped")
			return
		}
	}
}

func (in AvailabilityCron) refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, in.Cfg.GetDuration("cron.availability.refresh.timeout"))
	defer cancel()

	ctx, span := otel.Tracer.Start(ctx, "AvailabilityCron.refresh")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	slog.DebugContext(ctx, "refreshing availability", traceIdAttr)

	rows, err := in.Querier.ListSellableTicketTypes(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list ticket types", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		return
	}

	events := make(map[string][]model.TicketTypeAvailability)
	for _, row := range rows {
		events[row.EventID] = append(events[row.EventID], model.TicketTypeAvailability{
			ID:        row.ID,
			Name:      row.Name,
			Price:     money.FromNumeric(row.Price),
			Quantity:  row.Quantity,
			Sold:      row.Sold,
			Available: row.Quantity - row.Sold,
		})
	}

	now := time.Now
	if in.TimeNow != nil {
		now = in.TimeNow
	}

	vars.SetAvailability(events, now())

	slog.DebugContext(ctx, "availability refreshed successfully", traceIdAttr, slog.Int("events", len(events)))
}
