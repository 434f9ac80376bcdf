package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"ticket-market/core/fulfillment"
	"ticket-market/core/inventory"
	"ticket-market/core/status"
	inboundCron "ticket-market/inbound/cron"
	inboundHttp "ticket-market/inbound/http"
	"ticket-market/outbound/notify"
	"ticket-market/outbound/sqlgen"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func runHttpServerCmd(ctx context.Context) {
	cfg := newCfg("env")

	stopProfiling := startDevProfiling(cfg, "http")
	defer stopProfiling()

	shutdownTracer := newTracerProvider(ctx, cfg)
	defer shutdownTracer()

	validate := validator.New()

	db := newDb(cfg)
	defer db.Close()

	cacheClient := newRedis(cfg)
	defer cacheClient.Close()

	natsConn := newNats(cfg)
	defer natsConn.Close()

	js := newJs(natsConn)
	createStreamWorkQueue(ctx, js)

	notifier := notify.NewJetStreamNotifier(js)
	statusService := status.NewService(db, notifier)

	ledger := inventory.NewPgLedger(db)

	fulfillmentService, err := fulfillment.NewService(cfg, fulfillment.NewPgStore(db), ledger, notifier, statusService)
	if err != nil {
		log.Fatalln("invalid order configuration", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		slog.DebugContext(r.Context(), "health check")
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	inboundHttp.RegisterOrderHttp(mux, cfg, fulfillmentService, statusService, cacheClient, validate)
	inboundHttp.RegisterEventHttp(mux, statusService)
	inboundHttp.RegisterOrganizationHttp(mux, statusService, validate)
	inboundHttp.RegisterTicketHttp(mux, statusService)
	inboundHttp.RegisterSeatingHttp(mux, db, validate)

	availabilityCron := &inboundCron.AvailabilityCron{
		Cfg:     cfg,
		Querier: sqlgen.New(db),
		TimeNow: time.Now,
	}
	reservationCron := inboundCron.NewReservationCron(cfg, ledger)

	timeoutMiddleware := inboundHttp.TimeoutMiddleware(20 * time.Second)
	corsMiddleware := inboundHttp.CorsMiddleware(cfg.GetString("server.cors_origin"))
	authMiddleware := inboundHttp.AuthMiddleware([]byte(cfg.GetString("auth.jwt_secret")))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.GetInt("server.port")),
		Handler:           timeoutMiddleware(corsMiddleware(inboundHttp.MetricsMiddleware(authMiddleware(mux)))),
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalln("unable to start server", err)
		}
	}()

	slog.Info("http server started")

	go func() {
		availabilityCron.Start(ctx)
	}()

	go func() {
		reservationCron.Start(ctx)
	}()

	<-ctx.Done()

	ctxShutDown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutDown); err != nil {
		log.Fatalln("unable to shutdown server", err)
	}

	slog.Info("http server stopped")
}
