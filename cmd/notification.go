package cmd

import (
	"context"
	"log"
	"strings"
	"ticket-market/common/constant"
	"ticket-market/inbound/event"

	"github.com/nats-io/nats.go/jetstream"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func runQueueNotificationCmd(ctx context.Context) {
	cfg := newCfg("env")
	cfg.SetDefault("notification.locale", "en")
	cfg.SetDefault("notification.currency", "EUR")

	stopProfiling := startDevProfiling(cfg, "notification")
	defer stopProfiling()

	shutdownTracer := newTracerProvider(ctx, cfg)
	defer shutdownTracer()

	unit, err := currency.ParseISO(cfg.GetString("notification.currency"))
	if err != nil {
		log.Fatalln("invalid notification.currency", err)
	}

	natsConn := newNats(cfg)
	defer natsConn.Close()

	js := newJs(natsConn)
	st := createStreamWorkQueue(ctx, js)

	notificationEvent := event.NotificationEvent{
		Publisher:         js,
		CurrencyFormatter: message.NewPrinter(language.Make(cfg.GetString("notification.locale"))),
		Currency:          unit,
		Timeout:           cfg.GetDuration("queue.notification.timeout"),
	}

	err = consume(ctx, st, jetstream.ConsumerConfig{
		Durable:       "consumer:notification",
		FilterSubject: constant.NotificationWildcard,
		MaxDeliver:    cfg.GetInt("queue.notification.max_deliver"),
		AckWait:       cfg.GetDuration("queue.notification.ack_wait"),
	}, func(ctx context.Context, subject string, data []byte) error {
		if !strings.HasPrefix(subject, constant.SubjectNotificationPrefix) {
			return nil
		}

		return notificationEvent.Handler(ctx, data)
	})
	if err != nil {
		log.Fatalln("failed to consume notification queue", err)
	}
}
