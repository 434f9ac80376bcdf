package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"ticket-market/common/constant"
	"ticket-market/core/fulfillment"
	"ticket-market/core/inventory"
	"ticket-market/core/lifecycle"
	"ticket-market/core/status"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redismock/v9"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/suite"
)

type fakeOrderStore struct {
	event fulfillment.Event
	types []fulfillment.TicketType
	saved []fulfillment.Order
}

func (f *fakeOrderStore) GetEvent(_ context.Context, eventID string) (fulfillment.Event, error) {
	if eventID != f.event.ID {
		return fulfillment.Event{}, fulfillment.ErrEventNotFound
	}

	return f.event, nil
}

func (f *fakeOrderStore) ListTicketTypes(context.Context, string) ([]fulfillment.TicketType, error) {
	return f.types, nil
}

func (f *fakeOrderStore) SaveOrder(_ context.Context, order fulfillment.Order) error {
	f.saved = append(f.saved, order)
	return nil
}

func (f *fakeOrderStore) OrderExists(_ context.Context, orderID string) (bool, error) {
	for _, o := range f.saved {
		if o.ID == orderID {
			return true, nil
		}
	}

	return false, nil
}

var stamp = pgtype.Timestamp{Valid: true}

type recordingLock struct {
	released   bool
	releaseErr error
}

func (l *recordingLock) Acquire(context.Context, string) (bool, error) {
	return true, nil
}

func (l *recordingLock) Release(ctx context.Context, _ string) error {
	l.released = true
	l.releaseErr = ctx.Err()
	return l.releaseErr
}

type OrderHttpTestSuite struct {
	suite.Suite

	Cfg *viper.Viper

	PgxMock pgxmock.PgxPoolIface

	Cache     *redis.Client
	CacheMock redismock.ClientMock

	Store    *fakeOrderStore
	Ledger   *inventory.MemoryLedger
	Validate *validator.Validate

	OrderHttp *OrderHttp
}

func (s *OrderHttpTestSuite) SetupTest() {
	rdb, mock := redismock.NewClientMock()
	s.Cache = rdb
	s.CacheMock = mock

	pool, err := pgxmock.NewPool()
	if err != nil {
		s.T().Fatalf("failed to create pgxmock pool: %v", err)
	}

	s.PgxMock = pool
	s.Validate = validator.New()
	s.Cfg = viper.New()

	s.Store = &fakeOrderStore{
		event: fulfillment.Event{ID: "ev-1", OrganizationID: "org-1", Name: "Concert", Status: lifecycle.EventOnSale},
		types: []fulfillment.TicketType{
			{ID: "tt-a", EventID: "ev-1", Name: "General", Price: decimal.RequireFromString("45.53"), Quantity: 2},
		},
	}
	s.Ledger = inventory.NewMemoryLedger()
	s.Ledger.Stock("tt-a", 2, 0)

	service, err := fulfillment.NewService(s.Cfg, s.Store, s.Ledger, nil, nil)
	s.Require().NoError(err)

	s.OrderHttp = RegisterOrderHttp(http.NewServeMux(), s.Cfg, service, status.NewService(pool, nil), s.Cache, s.Validate)

	slog.SetLogLoggerLevel(slog.LevelDebug)
}

func (s *OrderHttpTestSuite) TearDownTest() {
	s.PgxMock.Close()

	if err := s.Cache.Close(); err != nil {
		s.T().Fatalf("failed to close redis mock: %v", err)
	}
}

func TestOrderHttpTestSuite(t *testing.T) {
	suite.Run(t, new(OrderHttpTestSuite))
}

func (s *OrderHttpTestSuite) TestCreate() {
	lockKey := fmt.Sprintf(constant.OrderUserLock, "user-1")
	billing := `"billing": {"name": "Jane Doe", "email": "jane@example.com"}`
	customer := &status.Actor{UserID: "user-1", Role: "customer"}

	tests := []struct {
		name           string
		reqBody        string
		actor          *status.Actor
		setupMock      func()
		expectedStatus int
		expectedBody   string
		expectedSold   int32
	}{
		{
			name:           "invalid json",
			reqBody:        `{invalid json`,
			actor:          customer,
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Invalid request"}`,
		},
		{
			name:           "validation error - missing event",
			reqBody:        `{"selections": [{"ticket_type_id": "tt-a", "quantity": 1}], ` + billing + `}`,
			actor:          customer,
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Validation failed","data":{"EventID":"required"}}`,
		},
		{
			name:           "validation error - invalid email",
			reqBody:        `{"event_id": "ev-1", "selections": [{"ticket_type_id": "tt-a", "quantity": 1}], "billing": {"name": "Jane Doe", "email": "nope"}}`,
			actor:          customer,
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Validation failed","data":{"Email":"email"}}`,
		},
		{
			name:           "anonymous",
			reqBody:        `{"event_id": "ev-1", "selections": [{"ticket_type_id": "tt-a", "quantity": 1}], ` + billing + `}`,
			setupMock:      func() {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"error":"Unauthorized"}`,
		},
		{
			name:    "user lock error",
			reqBody: `{"event_id": "ev-1", "selections": [{"ticket_type_id": "tt-a", "quantity": 1}], ` + billing + `}`,
			actor:   customer,
			setupMock: func() {
				s.CacheMock.ExpectSetNX(lockKey, true, constant.OrderUserLockDefaultTTL).SetErr(redis.ErrClosed)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"Internal Server Error"}`,
		},
		{
			name:    "order already in progress",
			reqBody: `{"event_id": "ev-1", "selections": [{"ticket_type_id": "tt-a", "quantity": 1}], ` + billing + `}`,
			actor:   customer,
			setupMock: func() {
				s.CacheMock.ExpectSetNX(lockKey, true, constant.OrderUserLockDefaultTTL).SetVal(false)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error":"Order already in progress"}`,
		},
		{
			name:    "empty selection",
			reqBody: `{"event_id": "ev-1", "selections": [], ` + billing + `}`,
			actor:   customer,
			setupMock: func() {
				s.CacheMock.ExpectSetNX(lockKey, true, constant.OrderUserLockDefaultTTL).SetVal(true)
				s.CacheMock.ExpectDel(lockKey).SetVal(1)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"selections must not be empty","data":{"kind":"ValidationError","retryable":false}}`,
		},
		{
			name:    "not enough tickets",
			reqBody: `{"event_id": "ev-1", "selections": [{"ticket_type_id": "tt-a", "quantity": 3}], ` + billing + `}`,
			actor:   customer,
			setupMock: func() {
				s.CacheMock.ExpectSetNX(lockKey, true, constant.OrderUserLockDefaultTTL).SetVal(true)
				s.CacheMock.ExpectDel(lockKey).SetVal(1)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error":"ticket type tt-a has 2 left, 3 requested","data":{"kind":"InsufficientInventory","ticket_type_id":"tt-a","retryable":false}}`,
		},
		{
			name:    "lock release error does not fail the order",
			reqBody: `{"event_id": "ev-1", "selections": [{"ticket_type_id": "tt-a", "quantity": 1}], ` + billing + `}`,
			actor:   customer,
			setupMock: func() {
				s.CacheMock.ExpectSetNX(lockKey, true, constant.OrderUserLockDefaultTTL).SetVal(true)
				s.CacheMock.ExpectDel(lockKey).SetErr(redis.ErrClosed)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"total":"55.09"`,
			expectedSold:   1,
		},
		{
			name:    "success",
			reqBody: `{"event_id": "ev-1", "selections": [{"ticket_type_id": "tt-a", "quantity": 1}], ` + billing + `}`,
			actor:   customer,
			setupMock: func() {
				s.CacheMock.ExpectSetNX(lockKey, true, constant.OrderUserLockDefaultTTL).SetVal(true)
				s.CacheMock.ExpectDel(lockKey).SetVal(1)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"subtotal":"45.53","tax":"9.56","total":"55.09"`,
			expectedSold:   1,
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			s.Ledger.Stock("tt-a", 2, 0)
			tc.setupMock()

			req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(tc.reqBody))
			req.Header.Set("Content-Type", "application/json")
			if tc.actor != nil {
				req = withActor(req, *tc.actor)
			}
			w := httptest.NewRecorder()

			s.OrderHttp.create(w, req)

			s.Equal(tc.expectedStatus, w.Code)

			if tc.expectedStatus == http.StatusOK {
				s.Contains(w.Body.String(), tc.expectedBody, "Response should contain expected text")
				s.Contains(w.Body.String(), `"status":"completed"`)
			} else {
				actual := strings.TrimSpace(w.Body.String())
				s.Equal(tc.expectedBody, actual)
			}

			s.Equal(tc.expectedSold, s.Ledger.Sold("tt-a"))
			s.NoError(s.CacheMock.ExpectationsWereMet())
		})
	}
}

func (s *OrderHttpTestSuite) TestCreateReleasesLockAfterCancellation() {
	lock := &recordingLock{}
	s.OrderHttp.Lock = lock
	s.Ledger.Stock("tt-a", 2, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	body := `{"event_id": "ev-1", "selections": [{"ticket_type_id": "tt-a", "quantity": 1}], "billing": {"name": "Jane Doe", "email": "jane@example.com"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	req = withActor(req, status.Actor{UserID: "user-1", Role: "customer"})
	w := httptest.NewRecorder()

	s.OrderHttp.create(w, req)

	s.Equal(http.StatusOK, w.Code)
	s.True(lock.released)
	s.NoError(lock.releaseErr)
}

func (s *OrderHttpTestSuite) TestRefund() {
	orderColumns := []string{"id", "user_id", "event_id", "status", "subtotal", "tax", "total",
		"billing_name", "billing_email", "billing_address", "created_at", "updated_at"}

	tests := []struct {
		name           string
		actor          *status.Actor
		setupMock      func()
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "anonymous",
			setupMock:      func() {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"error":"Unauthorized"}`,
		},
		{
			name:           "customer",
			actor:          &status.Actor{UserID: "user-1", Role: "customer"},
			setupMock:      func() {},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"error":"Forbidden"}`,
		},
		{
			name:  "order not found",
			actor: &status.Actor{UserID: "admin-1", Role: status.RoleAdmin},
			setupMock: func() {
				s.PgxMock.ExpectBegin()
				s.PgxMock.ExpectQuery("SELECT (.+) FROM orders").
					WithArgs("ord-1").
					WillReturnRows(pgxmock.NewRows(orderColumns))
				s.PgxMock.ExpectRollback().WillReturnError(nil)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Not found"}`,
		},
		{
			name:  "already refunded",
			actor: &status.Actor{UserID: "admin-1", Role: status.RoleAdmin},
			setupMock: func() {
				s.PgxMock.ExpectBegin()
				s.PgxMock.ExpectQuery("SELECT (.+) FROM orders").
					WithArgs("ord-1").
					WillReturnRows(pgxmock.NewRows(orderColumns).
						AddRow("ord-1", "user-1", "ev-1", "refunded", pgtype.Numeric{}, pgtype.Numeric{}, pgtype.Numeric{},
							"Jane Doe", "jane@example.com", "", stamp, stamp))
				s.PgxMock.ExpectRollback().WillReturnError(nil)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error":"Illegal transition","data":{"entity":"order","state":"refunded","action":"refund"}}`,
		},
		{
			name:  "success",
			actor: &status.Actor{UserID: "admin-1", Role: status.RoleAdmin},
			setupMock: func() {
				s.PgxMock.ExpectBegin()
				s.PgxMock.ExpectQuery("SELECT (.+) FROM orders").
					WithArgs("ord-1").
					WillReturnRows(pgxmock.NewRows(orderColumns).
						AddRow("ord-1", "user-1", "ev-1", "completed", pgtype.Numeric{}, pgtype.Numeric{}, pgtype.Numeric{},
							"Jane Doe", "jane@example.com", "", stamp, stamp))
				s.PgxMock.ExpectExec("UPDATE orders SET status").
					WithArgs("refunded", "ord-1", "completed").
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				s.PgxMock.ExpectQuery("SELECT (.+) FROM tickets WHERE order_id").
					WithArgs("ord-1").
					WillReturnRows(pgxmock.NewRows([]string{"id", "order_id", "ticket_type_id", "ticket_number", "status", "created_at", "updated_at"}))
				s.PgxMock.ExpectCommit().WillReturnError(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"id":"ord-1","status":"refunded"}`,
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			tc.setupMock()

			req := httptest.NewRequest(http.MethodPost, "/api/orders/ord-1/refund", nil)
			req.SetPathValue("id", "ord-1")
			if tc.actor != nil {
				req = withActor(req, *tc.actor)
			}
			w := httptest.NewRecorder()

			s.OrderHttp.refund(w, req)

			s.Equal(tc.expectedStatus, w.Code)
			s.Equal(tc.expectedBody, strings.TrimSpace(w.Body.String()))
			s.NoError(s.PgxMock.ExpectationsWereMet())
		})
	}
}
