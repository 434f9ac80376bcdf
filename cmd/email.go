package cmd

import (
	"context"
	"log"
	"ticket-market/common/constant"
	"ticket-market/inbound/event"
	emailOutbound "ticket-market/outbound/email"

	"github.com/nats-io/nats.go/jetstream"
)

func runQueueEmailCmd(ctx context.Context) {
	cfg := newCfg("env")

	stopProfiling := startDevProfiling(cfg, "email")
	defer stopProfiling()

	shutdownTracer := newTracerProvider(ctx, cfg)
	defer shutdownTracer()

	natsConn := newNats(cfg)
	defer natsConn.Close()

	js := newJs(natsConn)
	st := createStreamWorkQueue(ctx, js)

	emailEvent := event.EmailEvent{
		EmailOutbound: emailOutbound.NewEmailOutbound(cfg),
		Timeout:       cfg.GetDuration("queue.email.timeout"),
	}

	err := consume(ctx, st, jetstream.ConsumerConfig{
		Durable:       "consumer:email",
		FilterSubject: constant.EmailWildcard,
		MaxDeliver:    cfg.GetInt("queue.email.max_deliver"),
		AckWait:       cfg.GetDuration("queue.email.ack_wait"),
	}, func(ctx context.Context, subject string, data []byte) error {
		switch subject {
		case constant.SubjectSendEmail:
			return emailEvent.SendEmailHandler(ctx, data)
		}

		return nil
	})
	if err != nil {
		log.Fatalln("failed to consume email queue", err)
	}
}
