package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"ticket-market/core/status"
	"ticket-market/model"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"
)

var testSecret = []byte("test-secret")

type MiddlewareTestSuite struct {
	suite.Suite
}

func TestMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareTestSuite))
}

func signToken(secret []byte, claims AccessClaims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		panic(err)
	}

	return token
}

func (s *MiddlewareTestSuite) TestCorsMiddleware() {
	tests := []struct {
		name            string
		origin          string
		method          string
		expectedStatus  int
		expectedHeaders map[string]string
		handlerCalled   bool
	}{
		{
			name:           "OPTIONS request",
			method:         http.MethodOptions,
			expectedStatus: http.StatusOK,
			expectedHeaders: map[string]string{
				"Access-Control-Allow-Origin":  "*",
				"Access-Control-Allow-Methods": "GET, POST, DELETE, OPTIONS",
				"Access-Control-Allow-Headers": "Content-Type, Authorization",
			},
			handlerCalled: false,
		},
		{
			name:           "GET request with configured origin",
			origin:         "https://tickets.example.com",
			method:         http.MethodGet,
			expectedStatus: http.StatusOK,
			expectedHeaders: map[string]string{
				"Access-Control-Allow-Origin":  "https://tickets.example.com",
				"Access-Control-Allow-Methods": "GET, POST, DELETE, OPTIONS",
				"Access-Control-Allow-Headers": "Content-Type, Authorization",
			},
			handlerCalled: true,
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			handlerCalled := false
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			})

			middleware := CorsMiddleware(tc.origin)(handler)

			req := httptest.NewRequest(tc.method, "/test", nil)
			w := httptest.NewRecorder()

			middleware.ServeHTTP(w, req)

			s.Equal(tc.expectedStatus, w.Code)
			for key, value := range tc.expectedHeaders {
				s.Equal(value, w.Header().Get(key))
			}
			s.Equal(tc.handlerCalled, handlerCalled)
		})
	}
}

func (s *MiddlewareTestSuite) TestTimeoutMiddleware() {
	// slowOrder stands in for an order placement stuck on the row store; it
	// gives up once the request context is cancelled.
	slowOrder := func(work time.Duration) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(work):
				writeJSONResponse(w, http.StatusOK, model.StatusResponse{ID: "ord-1", Status: "completed"})
			case <-r.Context().Done():
			}
		})
	}

	s.Run("order placed within the deadline", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
		w := httptest.NewRecorder()

		TimeoutMiddleware(time.Second)(slowOrder(time.Millisecond)).ServeHTTP(w, req)

		s.Equal(http.StatusOK, w.Code)
		s.JSONEq(`{"id":"ord-1","status":"completed"}`, w.Body.String())
	})

	s.Run("stuck order placement is cut off", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
		w := httptest.NewRecorder()

		TimeoutMiddleware(20*time.Millisecond)(slowOrder(time.Minute)).ServeHTTP(w, req)

		s.Equal(http.StatusServiceUnavailable, w.Code)
		s.Equal("request timeout", w.Body.String())
	})
}

func (s *MiddlewareTestSuite) TestMetricsMiddleware() {
	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	s.Equal(http.StatusTeapot, w.Code)
}

func (s *MiddlewareTestSuite) TestAuthMiddleware() {
	now := time.Now()
	valid := AccessClaims{
		Role:           "organizer",
		OrganizationID: "org-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Hour))
	anonymous := valid
	anonymous.Subject = ""

	tests := []struct {
		name           string
		header         string
		expectedStatus int
		expectedActor  *status.Actor
	}{
		{
			name:           "no token passes through",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "valid token",
			header:         "Bearer " + signToken(testSecret, valid),
			expectedStatus: http.StatusOK,
			expectedActor:  &status.Actor{UserID: "user-1", Role: "organizer", OrganizationID: "org-1"},
		},
		{
			name:           "not a bearer token",
			header:         "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong secret",
			header:         "Bearer " + signToken([]byte("other"), valid),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "expired",
			header:         "Bearer " + signToken(testSecret, expired),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missing subject",
			header:         "Bearer " + signToken(testSecret, anonymous),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "garbage",
			header:         "Bearer not-a-token",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			var got *status.Actor
			handler := AuthMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if actor, ok := r.Context().Value(actorCtxKey{}).(status.Actor); ok {
					got = &actor
				}
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			s.Equal(tc.expectedStatus, w.Code)
			s.Equal(tc.expectedActor, got)
		})
	}
}

func (s *MiddlewareTestSuite) TestRequireActor() {
	w := httptest.NewRecorder()
	_, ok := requireActor(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	s.False(ok)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	actor, ok := requireActor(w, withActor(httptest.NewRequest(http.MethodGet, "/test", nil), status.Actor{UserID: "user-1"}))
	s.True(ok)
	s.Equal("user-1", actor.UserID)
}
