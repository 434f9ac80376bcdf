package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"ticket-market/common"
	"ticket-market/common/constant"
	"ticket-market/common/otel"
	"ticket-market/model"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/message"
)

// NotificationEvent renders notifications into emails and queues them for sending.
type NotificationEvent struct {
	Publisher         jetstream.Publisher
	CurrencyFormatter *message.Printer
	Currency          currency.Unit

	Timeout time.Duration
}

func (in NotificationEvent) Handler(ctx context.Context, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, in.Timeout)
	defer cancel()

	var req model.NotificationEventMessage
	err := json.Unmarshal(msg, &req)
	if err != nil {
		slog.WarnContext(ctx, "notification event unmarshal error", slog.Any(constant.LogFieldErr, err))
		return nil
	}

	ctx, span := otel.Tracer.Start(ctx, "NotificationEvent.Handler")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)
	kindAttr := slog.String("kind", req.Kind)

	slog.InfoContext(ctx, "notification event receive request", kindAttr, traceIdAttr)

	email, err := in.render(req)
	if err != nil {
		slog.WarnContext(ctx, "notification event dropped", kindAttr, traceIdAttr, slog.Any(constant.LogFieldErr, err))
		return nil
	}

	err = common.PublishMessage(ctx, in.Publisher, constant.SubjectSendEmail, email)
	if err != nil {
		slog.ErrorContext(ctx, "notification event publish error", kindAttr, traceIdAttr, slog.Any(constant.LogFieldErr, err))
		return err
	}

	slog.DebugContext(ctx, "notification event publish success", kindAttr, traceIdAttr)

	return nil
}

func (in NotificationEvent) render(req model.NotificationEventMessage) (model.SendEmailEventMessage, error) {
	if req.Recipient == "" {
		return model.SendEmailEventMessage{}, fmt.Errorf("notification %s has no recipient", req.Kind)
	}

	switch req.Kind {
	case constant.NotifyKindOrgApproved:
		var p model.OrganizationDecisionPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return model.SendEmailEventMessage{}, err
		}

		return model.SendEmailEventMessage{
			To:      req.Recipient,
			Subject: "Your organization has been approved",
			Body:    fmt.Sprintf(constant.EmailOrgApprovedTemplate, p.Name),
		}, nil

	case constant.NotifyKindOrgRejected:
		var p model.OrganizationDecisionPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return model.SendEmailEventMessage{}, err
		}

		reason := p.Reason
		if reason == "" {
			reason = "Not specified"
		}

		return model.SendEmailEventMessage{
			To:      req.Recipient,
			Subject: "Your organization application",
			Body:    fmt.Sprintf(constant.EmailOrgRejectedTemplate, p.Name, reason),
		}, nil

	case constant.NotifyKindOrderCompleted:
		var p model.OrderCompletedPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return model.SendEmailEventMessage{}, err
		}

		orderRef := constant.OrderRefPrefix + p.OrderID

		var tickets strings.Builder
		for _, t := range p.Tickets {
			fmt.Fprintf(&tickets, "- %s (%s) code: %s\n", t.TicketNumber, t.TicketType, t.Code)
		}

		return model.SendEmailEventMessage{
			To:      req.Recipient,
			Subject: "Your tickets for order " + orderRef,
			Body: fmt.Sprintf(constant.EmailOrderCompletedTemplate,
				p.Name,
				orderRef,
				in.formatAmount(p.Subtotal),
				in.formatAmount(p.Tax),
				in.formatAmount(p.Total),
				tickets.String(),
			),
		}, nil
	}

	return model.SendEmailEventMessage{}, fmt.Errorf("unknown notification kind %q", req.Kind)
}

func (in NotificationEvent) formatAmount(d decimal.Decimal) string {
	return in.CurrencyFormatter.Sprint(currency.Symbol(in.Currency.Amount(d.InexactFloat64())))
}
