// Package seating models an optional seat grid for an event. Seats are grouped
// into priced sections and reference their section by id, so a section price
// change reaches every seat still assigned to it.
package seating

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidDimensions = errors.New("seating map must have at least one row and one column")
	ErrInvalidLabel      = errors.New("invalid seat label")
	ErrInvalidSection    = errors.New("section id is required")
	ErrSeatNotFound      = errors.New("seat not found")
	ErrSectionNotFound   = errors.New("section not found")
	ErrDuplicateSection  = errors.New("section already exists")
	ErrNegativePrice     = errors.New("section price must not be negative")
	ErrSectionInUse      = errors.New("section is still assigned to seats")
	ErrEmptySelection    = errors.New("no seats selected")
)

type Section struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Color string          `json:"color"`
}

// Seat is a read view; Price is resolved from the section at read time.
type Seat struct {
	Row       int             `json:"row"`
	Column    int             `json:"column"`
	Label     string          `json:"label"`
	SectionID string          `json:"section_id"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
}

type position struct {
	row, column int
}

type seatState struct {
	sectionID string
	available bool
}

type Map struct {
	ID             string
	OrganizationID string
	Name           string

	rows             int
	columns          int
	defaultSectionID string
	sections         []Section

	// seats keeps positions outside the current bounds so that growing the grid
	// back restores them.
	seats map[position]seatState
}

func New(id, organizationID, name string, rows, columns int, defaultSection Section) (*Map, error) {
	if rows < 1 || columns < 1 {
		return nil, ErrInvalidDimensions
	}

	if err := validateSection(defaultSection); err != nil {
		return nil, err
	}

	m := &Map{
		ID:               id,
		OrganizationID:   organizationID,
		Name:             name,
		defaultSectionID: defaultSection.ID,
		sections:         []Section{defaultSection},
		seats:            make(map[position]seatState, rows*columns),
	}

	m.fill(rows, columns)

	return m, nil
}

func validateSection(s Section) error {
	if s.ID == "" {
		return ErrInvalidSection
	}

	if s.Price.IsNegative() {
		return ErrNegativePrice
	}

	return nil
}

func (m *Map) fill(rows, columns int) {
	m.rows, m.columns = rows, columns

	for r := 0; r < rows; r++ {
		for c := 0; c < columns; c++ {
			p := position{r, c}
			if _, ok := m.seats[p]; !ok {
				m.seats[p] = seatState{sectionID: m.defaultSectionID, available: true}
			}
		}
	}
}

func (m *Map) Rows() int { return m.rows }

func (m *Map) Columns() int { return m.columns }

func (m *Map) DefaultSectionID() string { return m.defaultSectionID }

func (m *Map) Sections() []Section {
	out := make([]Section, len(m.sections))
	copy(out, m.sections)
	return out
}

func (m *Map) section(id string) (int, bool) {
	for i, s := range m.sections {
		if s.ID == id {
			return i, true
		}
	}

	return -1, false
}

func (m *Map) Section(id string) (Section, error) {
	i, ok := m.section(id)
	if !ok {
		return Section{}, fmt.Errorf("%w: %s", ErrSectionNotFound, id)
	}

	return m.sections[i], nil
}

func (m *Map) AddSection(s Section) error {
	if err := validateSection(s); err != nil {
		return err
	}

	if _, ok := m.section(s.ID); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSection, s.ID)
	}

	m.sections = append(m.sections, s)
	return nil
}

func (m *Map) UpdateSectionPrice(id string, price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrNegativePrice
	}

	i, ok := m.section(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSectionNotFound, id)
	}

	m.sections[i].Price = price
	return nil
}

// RemoveSection refuses the default section and any section a stored seat
// still points at, including seats currently outside the grid.
func (m *Map) RemoveSection(id string) error {
	i, ok := m.section(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSectionNotFound, id)
	}

	if id == m.defaultSectionID {
		return fmt.Errorf("%w: %s is the default section", ErrSectionInUse, id)
	}

	for _, st := range m.seats {
		if st.sectionID == id {
			return fmt.Errorf("%w: %s", ErrSectionInUse, id)
		}
	}

	m.sections = append(m.sections[:i], m.sections[i+1:]...)
	return nil
}

// Resize never drops stored seats; positions that fall outside the new bounds
// are hidden until the grid grows back over them.
func (m *Map) Resize(rows, columns int) error {
	if rows < 1 || columns < 1 {
		return ErrInvalidDimensions
	}

	m.fill(rows, columns)
	return nil
}

func (m *Map) inBounds(p position) bool {
	return p.row >= 0 && p.row < m.rows && p.column >= 0 && p.column < m.columns
}

func (m *Map) resolve(labels []string) ([]position, error) {
	if len(labels) == 0 {
		return nil, ErrEmptySelection
	}

	out := make([]position, 0, len(labels))
	seen := make(map[position]struct{}, len(labels))

	for _, label := range labels {
		row, col, err := ParseLabel(label)
		if err != nil {
			return nil, err
		}

		p := position{row, col}
		if !m.inBounds(p) {
			return nil, fmt.Errorf("%w: %s", ErrSeatNotFound, label)
		}

		if _, dup := seen[p]; dup {
			continue
		}

		seen[p] = struct{}{}
		out = append(out, p)
	}

	return out, nil
}

// ApplySection assigns every selected seat to sectionID. Nothing changes unless
// the section and every label are valid.
func (m *Map) ApplySection(labels []string, sectionID string) error {
	if _, ok := m.section(sectionID); !ok {
		return fmt.Errorf("%w: %s", ErrSectionNotFound, sectionID)
	}

	positions, err := m.resolve(labels)
	if err != nil {
		return err
	}

	for _, p := range positions {
		st := m.seats[p]
		st.sectionID = sectionID
		m.seats[p] = st
	}

	return nil
}

// ToggleAvailability flips each selected seat. Duplicate labels count once.
func (m *Map) ToggleAvailability(labels []string) error {
	positions, err := m.resolve(labels)
	if err != nil {
		return err
	}

	for _, p := range positions {
		st := m.seats[p]
		st.available = !st.available
		m.seats[p] = st
	}

	return nil
}

func (m *Map) view(p position) Seat {
	st := m.seats[p]

	var price decimal.Decimal
	if i, ok := m.section(st.sectionID); ok {
		price = m.sections[i].Price
	}

	return Seat{
		Row:       p.row,
		Column:    p.column,
		Label:     Label(p.row, p.column),
		SectionID: st.sectionID,
		Price:     price,
		Available: st.available,
	}
}

func (m *Map) Seat(label string) (Seat, error) {
	row, col, err := ParseLabel(label)
	if err != nil {
		return Seat{}, err
	}

	p := position{row, col}
	if !m.inBounds(p) {
		return Seat{}, fmt.Errorf("%w: %s", ErrSeatNotFound, label)
	}

	return m.view(p), nil
}

// SeatPrice is the current price of the seat's section.
func (m *Map) SeatPrice(label string) (decimal.Decimal, error) {
	seat, err := m.Seat(label)
	if err != nil {
		return decimal.Decimal{}, err
	}

	return seat.Price, nil
}

// Seats lists the seats inside the current bounds in row-major order.
func (m *Map) Seats() []Seat {
	out := make([]Seat, 0, m.rows*m.columns)
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.columns; c++ {
			out = append(out, m.view(position{r, c}))
		}
	}

	return out
}

// AvailableCount counts available in-bounds seats per section.
func (m *Map) AvailableCount() map[string]int {
	out := make(map[string]int, len(m.sections))
	for p, st := range m.seats {
		if m.inBounds(p) && st.available {
			out[st.sectionID]++
		}
	}

	return out
}

func (m *Map) storedPositions() []position {
	out := make([]position, 0, len(m.seats))
	for p := range m.seats {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].row != out[j].row {
			return out[i].row < out[j].row
		}
		return out[i].column < out[j].column
	})

	return out
}
