package seating

import (
	"encoding/json"
	"fmt"
)

// Layout is the stored form of a Map, kept as jsonb in seating_maps.layout.
type Layout struct {
	Rows             int          `json:"rows"`
	Columns          int          `json:"columns"`
	DefaultSectionID string       `json:"default_section_id"`
	Sections         []Section    `json:"sections"`
	Seats            []LayoutSeat `json:"seats"`
}

type LayoutSeat struct {
	Row       int    `json:"row"`
	Column    int    `json:"column"`
	SectionID string `json:"section_id"`
	Available bool   `json:"available"`
}

func (m *Map) Layout() Layout {
	positions := m.storedPositions()

	seats := make([]LayoutSeat, 0, len(positions))
	for _, p := range positions {
		st := m.seats[p]
		seats = append(seats, LayoutSeat{Row: p.row, Column: p.column, SectionID: st.sectionID, Available: st.available})
	}

	return Layout{
		Rows:             m.rows,
		Columns:          m.columns,
		DefaultSectionID: m.defaultSectionID,
		Sections:         m.Sections(),
		Seats:            seats,
	}
}

func (m *Map) MarshalLayout() ([]byte, error) {
	return json.Marshal(m.Layout())
}

// FromLayout rebuilds a Map, rejecting seats that reference unknown sections.
func FromLayout(id, organizationID, name string, l Layout) (*Map, error) {
	if l.Rows < 1 || l.Columns < 1 {
		return nil, ErrInvalidDimensions
	}

	m := &Map{
		ID:               id,
		OrganizationID:   organizationID,
		Name:             name,
		defaultSectionID: l.DefaultSectionID,
		seats:            make(map[position]seatState, len(l.Seats)),
	}

	for _, s := range l.Sections {
		if err := m.AddSection(s); err != nil {
			return nil, err
		}
	}

	if _, ok := m.section(l.DefaultSectionID); !ok {
		return nil, fmt.Errorf("%w: default %s", ErrSectionNotFound, l.DefaultSectionID)
	}

	for _, s := range l.Seats {
		if s.Row < 0 || s.Column < 0 {
			return nil, fmt.Errorf("%w: row %d column %d", ErrSeatNotFound, s.Row, s.Column)
		}

		if _, ok := m.section(s.SectionID); !ok {
			return nil, fmt.Errorf("%w: seat %s references %s", ErrSectionNotFound, Label(s.Row, s.Column), s.SectionID)
		}

		m.seats[position{s.Row, s.Column}] = seatState{sectionID: s.SectionID, available: s.Available}
	}

	m.fill(l.Rows, l.Columns)

	return m, nil
}

func UnmarshalLayout(id, organizationID, name string, data []byte) (*Map, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decode seating layout: %w", err)
	}

	return FromLayout(id, organizationID, name, l)
}
