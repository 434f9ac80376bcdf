package fulfillment

import (
	"context"
	"fmt"
	"testing"
	"ticket-market/common/money"
	"ticket-market/core/lifecycle"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PgStoreTestSuite struct {
	suite.Suite

	PgxMock pgxmock.PgxPoolIface
	Store   *PgStore
}

func (s *PgStoreTestSuite) SetupTest() {
	pool, err := pgxmock.NewPool()
	if err != nil {
		s.T().Fatalf("failed to create pgxmock pool: %v", err)
	}

	s.PgxMock = pool
	s.Store = NewPgStore(pool)
}

func (s *PgStoreTestSuite) TearDownTest() {
	s.PgxMock.Close()
}

func TestPgStoreTestSuite(t *testing.T) {
	suite.Run(t, new(PgStoreTestSuite))
}

func (s *PgStoreTestSuite) order() Order {
	return Order{
		ID:       "ord-1",
		UserID:   "user-1",
		EventID:  "ev-1",
		Status:   lifecycle.OrderCompleted,
		Subtotal: decimal.RequireFromString("20.00"),
		Tax:      decimal.RequireFromString("4.20"),
		Total:    decimal.RequireFromString("24.20"),
		Billing:  BillingInfo{Name: "Jane Doe", Email: "jane@example.com", Address: "Main St 1"},
		Tickets: []Ticket{
			{ID: "tk-1", OrderID: "ord-1", TicketTypeID: "tt-a", TicketNumber: "TKT-1", Status: lifecycle.TicketValid},
			{ID: "tk-2", OrderID: "ord-1", TicketTypeID: "tt-a", TicketNumber: "TKT-2", Status: lifecycle.TicketValid},
		},
		ReservationTokens: []string{"res-1", "res-2"},
	}
}

func (s *PgStoreTestSuite) expectTickets() {
	s.expectInsertOrder().WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.PgxMock.ExpectExec("INSERT INTO tickets").
		WithArgs("tk-1", "ord-1", "tt-a", "TKT-1", "valid").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.PgxMock.ExpectExec("INSERT INTO tickets").
		WithArgs("tk-2", "ord-1", "tt-a", "TKT-2", "valid").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
}

func (s *PgStoreTestSuite) expectConsume() *pgxmock.ExpectedExec {
	return s.PgxMock.ExpectExec(`UPDATE reservations SET order_id = \$1, consumed_at = NOW\(\)`).
		WithArgs("ord-1", []string{"res-1", "res-2"})
}

func (s *PgStoreTestSuite) expectInsertOrder() *pgxmock.ExpectedExec {
	return s.PgxMock.ExpectExec("INSERT INTO orders").
		WithArgs("ord-1", "user-1", "ev-1", "completed", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			"Jane Doe", "jane@example.com", "Main St 1")
}

func (s *PgStoreTestSuite) TestSaveOrder() {
	tests := []struct {
		name        string
		setupMock   func()
		expectErr   error
		expectError bool
	}{
		{
			name: "begin error",
			setupMock: func() {
				s.PgxMock.ExpectBegin().WillReturnError(fmt.Errorf("begin error"))
			},
			expectError: true,
		},
		{
			name: "insert order error",
			setupMock: func() {
				s.PgxMock.ExpectBegin()
				s.expectInsertOrder().WillReturnError(fmt.Errorf("insert error"))
				s.PgxMock.ExpectRollback().WillReturnError(nil)
			},
			expectError: true,
		},
		{
			name: "second ticket fails",
			setupMock: func() {
				s.PgxMock.ExpectBegin()
				s.expectInsertOrder().WillReturnResult(pgxmock.NewResult("INSERT", 1))
				s.PgxMock.ExpectExec("INSERT INTO tickets").
					WithArgs("tk-1", "ord-1", "tt-a", "TKT-1", "valid").
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
				s.PgxMock.ExpectExec("INSERT INTO tickets").
					WithArgs("tk-2", "ord-1", "tt-a", "TKT-2", "valid").
					WillReturnError(fmt.Errorf("insert error"))
				s.PgxMock.ExpectRollback().WillReturnError(nil)
			},
			expectError: true,
		},
		{
			name: "duplicate ticket number",
			setupMock: func() {
				s.PgxMock.ExpectBegin()
				s.expectInsertOrder().WillReturnResult(pgxmock.NewResult("INSERT", 1))
				s.PgxMock.ExpectExec("INSERT INTO tickets").
					WithArgs("tk-1", "ord-1", "tt-a", "TKT-1", "valid").
					WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "tickets_ticket_number_key"})
				s.PgxMock.ExpectRollback().WillReturnError(nil)
			},
			expectErr: ErrDuplicateTicketNumber,
		},
		{
			name: "other unique violation is not a ticket number collision",
			setupMock: func() {
				s.PgxMock.ExpectBegin()
				s.expectInsertOrder().WillReturnResult(pgxmock.NewResult("INSERT", 1))
				s.PgxMock.ExpectExec("INSERT INTO tickets").
					WithArgs("tk-1", "ord-1", "tt-a", "TKT-1", "valid").
					WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "tickets_pkey"})
				s.PgxMock.ExpectRollback().WillReturnError(nil)
			},
			expectError: true,
		},
		{
			name: "consume reservations error",
			setupMock: func() {
				s.PgxMock.ExpectBegin()
				s.expectTickets()
				s.expectConsume().WillReturnError(fmt.Errorf("update error"))
				s.PgxMock.ExpectRollback().WillReturnError(nil)
			},
			expectError: true,
		},
		{
			name: "reservation released before the order was saved",
			setupMock: func() {
				s.PgxMock.ExpectBegin()
				s.expectTickets()
				s.expectConsume().WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				s.PgxMock.ExpectRollback().WillReturnError(nil)
			},
			expectErr: ErrReservationNotHeld,
		},
		{
			name: "commit error",
			setupMock: func() {
				s.PgxMock.ExpectBegin()
				s.expectTickets()
				s.expectConsume().WillReturnResult(pgxmock.NewResult("UPDATE", 2))
				s.PgxMock.ExpectCommit().WillReturnError(fmt.Errorf("commit error"))
				s.PgxMock.ExpectRollback().WillReturnError(nil)
			},
			expectError: true,
		},
		{
			name: "success",
			setupMock: func() {
				s.PgxMock.ExpectBegin()
				s.expectTickets()
				s.expectConsume().WillReturnResult(pgxmock.NewResult("UPDATE", 2))
				s.PgxMock.ExpectCommit().WillReturnError(nil)
			},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			tt.setupMock()

			err := s.Store.SaveOrder(context.Background(), s.order())

			switch {
			case tt.expectErr != nil:
				s.ErrorIs(err, tt.expectErr)
			case tt.expectError:
				s.Error(err)
				s.NotErrorIs(err, ErrDuplicateTicketNumber)
			default:
				s.NoError(err)
			}

			s.NoError(s.PgxMock.ExpectationsWereMet())
		})
	}
}

func (s *PgStoreTestSuite) TestGetEvent() {
	now := pgtype.Timestamp{Time: time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC), Valid: true}
	columns := []string{"id", "organization_id", "name", "status", "start_date", "seating_map_id", "created_at", "updated_at"}

	s.PgxMock.ExpectQuery("SELECT (.+) FROM events WHERE id = \\$1").
		WithArgs("ev-1").
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow("ev-1", "org-1", "Concert", "on_sale", now, pgtype.Text{}, now, now))

	event, err := s.Store.GetEvent(context.Background(), "ev-1")
	s.NoError(err)
	s.Equal(Event{ID: "ev-1", OrganizationID: "org-1", Name: "Concert", Status: lifecycle.EventOnSale}, event)

	s.PgxMock.ExpectQuery("SELECT (.+) FROM events WHERE id = \\$1").
		WithArgs("ev-missing").
		WillReturnRows(pgxmock.NewRows(columns))

	_, err = s.Store.GetEvent(context.Background(), "ev-missing")
	s.ErrorIs(err, ErrEventNotFound)

	s.NoError(s.PgxMock.ExpectationsWereMet())
}

func (s *PgStoreTestSuite) TestOrderExists() {
	s.PgxMock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM orders WHERE id = \$1\)`).
		WithArgs("ord-1").
		WillReturnRows(pgxmock.NewRows([]string{"found"}).AddRow(true))

	found, err := s.Store.OrderExists(context.Background(), "ord-1")
	s.NoError(err)
	s.True(found)

	s.PgxMock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM orders WHERE id = \$1\)`).
		WithArgs("ord-2").
		WillReturnError(fmt.Errorf("conn closed"))

	_, err = s.Store.OrderExists(context.Background(), "ord-2")
	s.Error(err)

	s.NoError(s.PgxMock.ExpectationsWereMet())
}

func (s *PgStoreTestSuite) TestListTicketTypes() {
	now := pgtype.Timestamp{Time: time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC), Valid: true}

	s.PgxMock.ExpectQuery("SELECT (.+) FROM ticket_types WHERE event_id = \\$1").
		WithArgs("ev-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "event_id", "name", "price", "quantity", "sold", "created_at", "updated_at"}).
			AddRow("tt-a", "ev-1", "General", money.ToNumeric(decimal.RequireFromString("10.00")), int32(10), int32(4), now, now))

	types, err := s.Store.ListTicketTypes(context.Background(), "ev-1")
	s.Require().NoError(err)
	s.Require().Len(types, 1)
	s.Equal("General", types[0].Name)
	s.True(decimal.RequireFromString("10").Equal(types[0].Price))
	s.Equal(int32(6), types[0].Available())

	s.NoError(s.PgxMock.ExpectationsWereMet())
}
