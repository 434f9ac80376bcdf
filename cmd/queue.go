package cmd

import (
	"context"
	"errors"
	"log/slog"
	"ticket-market/common/constant"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// consume pulls messages for consumerCfg until ctx is done. A handler error
// naks the message with a delay; otherwise it is acked.
func consume(ctx context.Context, st jetstream.Stream, consumerCfg jetstream.ConsumerConfig, handle func(ctx context.Context, subject string, data []byte) error) error {
	cons, err := st.CreateOrUpdateConsumer(ctx, consumerCfg)
	if err != nil {
		return err
	}

	iter, err := cons.Messages()
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
				msg, err := iter.Next()
				if errors.Is(err, jetstream.ErrMsgIteratorClosed) {
					return
				}

				if err != nil {
					slog.ErrorContext(ctx, "Error fetching message", slog.Any(constant.LogFieldErr, err))
					continue
				}

				if msg == nil {
					continue
				}

				if eventErr := handle(ctx, msg.Subject(), msg.Data()); eventErr != nil {
					if err := msg.NakWithDelay(1 * time.Second); err != nil {
						slog.ErrorContext(ctx, "Error naking message", slog.Any(constant.LogFieldErr, err), slog.String("subject", msg.Subject()))
					}
					continue
				}

				if err := msg.Ack(); err != nil {
					slog.ErrorContext(ctx, "Error acknowledging message",
						slog.Any(constant.LogFieldErr, err),
						slog.Any(constant.LogFieldPayload, string(msg.Data())),
						slog.String("subject", msg.Subject()),
					)
					continue
				}
			}
		}
	}()

	slog.InfoContext(ctx, "queue consumer started", slog.String("consumer", consumerCfg.Durable))

	<-ctx.Done()

	iter.Stop()

	slog.InfoContext(ctx, "queue consumer stopped", slog.String("consumer", consumerCfg.Durable))

	return nil
}
