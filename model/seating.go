package model

import (
	"ticket-market/core/seating"

	"github.com/shopspring/decimal"
)

type SeatingSectionRequest struct {
	ID    string          `json:"id" validate:"required,max=64"`
	Name  string          `json:"name" validate:"required,max=100"`
	Price decimal.Decimal `json:"price"`
	Color string          `json:"color" validate:"omitempty,hexcolor"`
}

type CreateSeatingMapRequest struct {
	OrganizationID string                `json:"organization_id" validate:"required"`
	Name           string                `json:"name" validate:"required,max=100"`
	Rows           int                   `json:"rows" validate:"required,min=1,max=702"`
	Columns        int                   `json:"columns" validate:"required,min=1,max=500"`
	DefaultSection SeatingSectionRequest `json:"default_section"`
}

type ResizeSeatingMapRequest struct {
	Rows    int `json:"rows" validate:"required,min=1,max=702"`
	Columns int `json:"columns" validate:"required,min=1,max=500"`
}

type UpdateSectionPriceRequest struct {
	Price decimal.Decimal `json:"price"`
}

type ApplySectionRequest struct {
	Seats     []string `json:"seats" validate:"required,min=1"`
	SectionID string   `json:"section_id" validate:"required"`
}

type ToggleSeatsRequest struct {
	Seats []string `json:"seats" validate:"required,min=1"`
}

type SeatingMapResponse struct {
	ID                 string            `json:"id"`
	OrganizationID     string            `json:"organization_id"`
	Name               string            `json:"name"`
	Rows               int               `json:"rows"`
	Columns            int               `json:"columns"`
	DefaultSectionID   string            `json:"default_section_id"`
	Sections           []seating.Section `json:"sections"`
	Seats              []seating.Seat    `json:"seats"`
	AvailableBySection map[string]int    `json:"available_by_section"`
}
