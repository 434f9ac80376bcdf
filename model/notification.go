package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type NotificationEventMessage struct {
	Kind      string          `json:"kind"`
	Recipient string          `json:"recipient"`
	Payload   json.RawMessage `json:"payload"`
}

type OrganizationDecisionPayload struct {
	OrganizationID string `json:"organization_id"`
	Name           string `json:"name"`
	Reason         string `json:"reason,omitempty"`
}

type OrderCompletedPayload struct {
	OrderID  string                 `json:"order_id"`
	Name     string                 `json:"name"`
	Subtotal decimal.Decimal        `json:"subtotal"`
	Tax      decimal.Decimal        `json:"tax"`
	Total    decimal.Decimal        `json:"total"`
	Tickets  []OrderCompletedTicket `json:"tickets"`
}

type OrderCompletedTicket struct {
	TicketNumber string `json:"ticket_number"`
	TicketType   string `json:"ticket_type"`
	Code         string `json:"code"`
}

type SendEmailEventMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
