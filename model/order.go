package model

import "github.com/shopspring/decimal"

type CreateOrderRequest struct {
	EventID    string                  `json:"event_id" validate:"required"`
	Selections []OrderSelectionRequest `json:"selections" validate:"dive"`
	Billing    BillingRequest          `json:"billing"`
}

type OrderSelectionRequest struct {
	TicketTypeID string `json:"ticket_type_id" validate:"required"`
	Quantity     int32  `json:"quantity"`
}

type BillingRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address" validate:"max=255"`
}

type OrderResponse struct {
	ID       string           `json:"order_id"`
	EventID  string           `json:"event_id"`
	Status   string           `json:"status"`
	Subtotal decimal.Decimal  `json:"subtotal"`
	Tax      decimal.Decimal  `json:"tax"`
	Total    decimal.Decimal  `json:"total"`
	Tickets  []TicketResponse `json:"tickets"`
}

type TicketResponse struct {
	ID           string `json:"id"`
	TicketTypeID string `json:"ticket_type_id"`
	TicketNumber string `json:"ticket_number"`
	Status       string `json:"status"`
	Code         string `json:"code"`
}

type StatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type OrganizationActionRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}
