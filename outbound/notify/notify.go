// Package notify publishes notifications to the queue stream. Delivery is left
// to the notification consumer; callers only learn whether the message was
// handed to JetStream.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"ticket-market/common"
	"ticket-market/common/constant"
	"ticket-market/common/otel"
	"ticket-market/model"

	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type JetStreamNotifier struct {
	Publisher jetstream.Publisher
}

func NewJetStreamNotifier(publisher jetstream.Publisher) *JetStreamNotifier {
	return &JetStreamNotifier{Publisher: publisher}
}

// Notify enqueues without waiting for the stream ack. A false result has
// already been logged.
func (out *JetStreamNotifier) Notify(ctx context.Context, kind, recipient string, payload any) bool {
	subject := constant.SubjectNotificationPrefix + kind

	ctx, span := otel.Tracer.Start(ctx, "JetStreamNotifier.Notify", trace.WithAttributes(
		attribute.String("messaging.destination", subject),
	))
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	body, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal notification payload", traceIdAttr, slog.String("kind", kind), slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		return false
	}

	data, err := json.Marshal(model.NotificationEventMessage{
		Kind:      kind,
		Recipient: recipient,
		Payload:   body,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal notification", traceIdAttr, slog.String("kind", kind), slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		return false
	}

	if _, err = out.Publisher.PublishAsync(subject, data); err != nil {
		slog.ErrorContext(ctx, "failed to publish notification", traceIdAttr, slog.String("subject", subject), slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		return false
	}

	slog.DebugContext(ctx, "notification published", traceIdAttr, slog.String("subject", subject))

	return true
}
