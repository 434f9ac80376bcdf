package cron

import (
	"context"
	"log/slog"
	"ticket-market/common"
	"ticket-market/common/constant"
	"ticket-market/common/otel"
	"time"

	"github.com/spf13/viper"
)

type StaleReservationReleaser interface {
	ReleaseStale(ctx context.Context, before time.Time, limit int32) (int, error)
}

// ReservationCron gives back inventory claimed by order attempts that never
// reached the order write, e.g. because the process died in between.
type ReservationCron struct {
	Cfg    *viper.Viper
	Ledger StaleReservationReleaser

	TimeNow func() time.Time
}

func NewReservationCron(cfg *viper.Viper, ledger StaleReservationReleaser) *ReservationCron {
	cfg.SetDefault("cron.reservation.sweep.interval", constant.DefaultReservationSweepEvery)
	cfg.SetDefault("cron.reservation.sweep.timeout", constant.DefaultReservationSweepEvery)
	cfg.SetDefault("cron.reservation.sweep.batch", constant.DefaultReservationSweepBatch)
	cfg.SetDefault("reservation.ttl", constant.DefaultReservationTTL)

	return &ReservationCron{Cfg: cfg, Ledger: ledger, TimeNow: time.Now}
}

func (in ReservationCron) Start(ctx context.Context) {
	sweepTicker := time.NewTicker(in.Cfg.GetDuration("cron.reservation.sweep.interval"))
	defer sweepTicker.Stop()

	slog.Info("reservation cron started")

	for {
		select {
		case <-sweepTicker.C:
			in.sweep(ctx)
		case <-ctx.Done():
			slog.Info("reservation cron stopped")
			return
		}
	}
}

func (in ReservationCron) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, in.Cfg.GetDuration("cron.reservation.sweep.timeout"))
	defer cancel()

	ctx, span := otel.Tracer.Start(ctx, "ReservationCron.sweep")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	now := time.Now
	if in.TimeNow != nil {
		now = in.TimeNow
	}

	// must stay well above order.persist_timeout or a live order loses its claims
	cutoff := now().Add(-in.Cfg.GetDuration("reservation.ttl"))

	released, err := in.Ledger.ReleaseStale(ctx, cutoff, in.Cfg.GetInt32("cron.reservation.sweep.batch"))
	if err != nil {
		slog.ErrorContext(ctx, "failed to release stale reservations", traceIdAttr,
			slog.Int("released", released), slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		return
	}

	if released > 0 {
		slog.InfoContext(ctx, "stale reservations released", traceIdAttr, slog.Int("released", released))
	}
}
