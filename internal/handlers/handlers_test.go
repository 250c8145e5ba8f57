package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cx-tal-miterani/flight-checkout/internal/api"
	"github.com/cx-tal-miterani/flight-checkout/internal/checkout"
	"github.com/cx-tal-miterani/flight-checkout/internal/handoff"
	"github.com/cx-tal-miterani/flight-checkout/internal/models"
	"github.com/cx-tal-miterani/flight-checkout/internal/payment"
	"github.com/cx-tal-miterani/flight-checkout/internal/service"
	"github.com/cx-tal-miterani/flight-checkout/internal/service/mocks"
)

func setupTestRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	sub := r.PathPrefix("/api").Subrouter()
	sub.HandleFunc("/sessions", h.CreateSession).Methods(http.MethodPost)
	sub.HandleFunc("/sessions/resume", h.ResumeSession).Methods(http.MethodPost)
	sub.HandleFunc("/sessions/{id}", h.GetSession).Methods(http.MethodGet)
	sub.HandleFunc("/sessions/{id}/flights", h.SearchFlights).Methods(http.MethodGet)
	sub.HandleFunc("/sessions/{id}/flight", h.SelectFlight).Methods(http.MethodPost)
	sub.HandleFunc("/sessions/{id}/seat-class", h.ChangeSeatClass).Methods(http.MethodPut)
	sub.HandleFunc("/sessions/{id}/coupon/check", h.CheckCoupon).Methods(http.MethodPost)
	sub.HandleFunc("/sessions/{id}/coupon", h.ApplyCoupon).Methods(http.MethodPost)
	sub.HandleFunc("/sessions/{id}/booking", h.CreateBooking).Methods(http.MethodPost)
	sub.HandleFunc("/sessions/{id}/payment-method", h.ChoosePaymentMethod).Methods(http.MethodPost)
	sub.HandleFunc("/sessions/{id}/payment", h.SubmitPayment).Methods(http.MethodPost)
	return r
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var response map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	return response["error"]
}

func TestHandler_CreateSession(t *testing.T) {
	mockService := new(mocks.MockCheckoutService)
	handler := NewHandler(mockService)
	router := setupTestRouter(handler)

	mockService.On("CreateSession", mock.Anything).
		Return(&checkout.View{ID: "s-1", Stage: checkout.StageBrowsing, Passengers: 1}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var response checkout.View
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "s-1", response.ID)
	assert.Equal(t, checkout.StageBrowsing, response.Stage)

	mockService.AssertExpectations(t)
}

func TestHandler_GetSession(t *testing.T) {
	tests := []struct {
		name           string
		mockReturn     *checkout.View
		mockError      error
		expectedStatus int
	}{
		{
			name:           "session found",
			mockReturn:     &checkout.View{ID: "s-1", Stage: checkout.StageFlightSelected},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "session not found",
			mockError:      fmt.Errorf("%w: s-1", service.ErrSessionNotFound),
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockCheckoutService)
			handler := NewHandler(mockService)
			router := setupTestRouter(handler)

			mockService.On("GetSession", mock.Anything, "s-1").Return(tt.mockReturn, tt.mockError)

			req := httptest.NewRequest(http.MethodGet, "/api/sessions/s-1", nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_SearchFlights(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectedQuery  *models.SearchQuery
		mockError      error
		expectedStatus int
	}{
		{
			name:  "full query",
			query: "from=SYD&to=DEL&date=2026-10-20&passengers=2&class=Business",
			expectedQuery: &models.SearchQuery{
				DepartureAirport: "SYD",
				ArrivalAirport:   "DEL",
				DepartureDate:    "2026-10-20",
				Passengers:       2,
				SeatClass:        models.SeatClassBusiness,
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "same airports",
			query:          "from=DEL&to=DEL",
			expectedQuery:  &models.SearchQuery{DepartureAirport: "DEL", ArrivalAirport: "DEL"},
			mockError:      checkout.ErrSameAirports,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid passengers",
			query:          "from=DEL&passengers=zero",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid seat class",
			query:          "from=DEL&class=cargo",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockCheckoutService)
			handler := NewHandler(mockService)
			router := setupTestRouter(handler)

			if tt.expectedQuery != nil {
				mockService.On("SearchFlights", mock.Anything, "s-1", *tt.expectedQuery).
					Return(&checkout.View{ID: "s-1"}, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/sessions/s-1/flights?"+tt.query, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_SelectFlight(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		setupMock      func(*mocks.MockCheckoutService)
		expectedStatus int
	}{
		{
			name: "selected",
			body: map[string]any{"flightId": 7},
			setupMock: func(m *mocks.MockCheckoutService) {
				m.On("SelectFlight", mock.Anything, "s-1", int64(7)).
					Return(&checkout.View{ID: "s-1", Stage: checkout.StageFlightSelected}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "flight not in results",
			body: map[string]any{"flightId": 99},
			setupMock: func(m *mocks.MockCheckoutService) {
				m.On("SelectFlight", mock.Anything, "s-1", int64(99)).
					Return(nil, checkout.ErrUnknownFlight)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "session busy",
			body: map[string]any{"flightId": 7},
			setupMock: func(m *mocks.MockCheckoutService) {
				m.On("SelectFlight", mock.Anything, "s-1", int64(7)).
					Return(nil, service.ErrSessionBusy)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "missing flight id",
			body:           map[string]any{},
			setupMock:      func(*mocks.MockCheckoutService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockCheckoutService)
			handler := NewHandler(mockService)
			router := setupTestRouter(handler)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/sessions/s-1/flight", jsonBody(t, tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_ChangeSeatClass(t *testing.T) {
	mockService := new(mocks.MockCheckoutService)
	handler := NewHandler(mockService)
	router := setupTestRouter(handler)

	mockService.On("ChangeSeatClass", mock.Anything, "s-1", models.SeatClassPremiumEconomy).
		Return(&checkout.View{ID: "s-1", SeatClass: models.SeatClassPremiumEconomy}, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/sessions/s-1/seat-class",
		jsonBody(t, map[string]string{"seatClass": "premium_economy"}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPut, "/api/sessions/s-1/seat-class",
		jsonBody(t, map[string]string{"seatClass": "steerage"}))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	mockService.AssertExpectations(t)
}

func TestHandler_CheckCoupon(t *testing.T) {
	notFound := &api.Error{Method: http.MethodGet, Endpoint: "/coupons/{code}", StatusCode: http.StatusNotFound, Message: "Coupon not found"}

	tests := []struct {
		name           string
		mockReturn     *models.Coupon
		mockError      error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "valid coupon",
			mockReturn:     &models.Coupon{Code: "SAVE500", Name: "Flat 500"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown coupon",
			mockError:      fmt.Errorf("failed to check coupon BOGUS: %w", notFound),
			expectedStatus: http.StatusNotFound,
			expectedError:  "Invalid coupon code",
		},
		{
			name:           "empty code",
			mockError:      checkout.ErrEmptyCouponCode,
			expectedStatus: http.StatusBadRequest,
			expectedError:  checkout.ErrEmptyCouponCode.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockCheckoutService)
			handler := NewHandler(mockService)
			router := setupTestRouter(handler)

			mockService.On("CheckCoupon", mock.Anything, "s-1", "code").Return(tt.mockReturn, tt.mockError)

			req := httptest.NewRequest(http.MethodPost, "/api/sessions/s-1/coupon/check",
				jsonBody(t, map[string]string{"code": "code"}))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, decodeError(t, rec))
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_ApplyCoupon(t *testing.T) {
	tests := []struct {
		name           string
		mockError      error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "applied",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "rejected",
			mockError:      &checkout.CouponRejectedError{Code: "FIRSTCLASS", Message: "Minimum booking amount of ₹15000 required"},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  "Minimum booking amount of ₹15000 required",
		},
		{
			name:           "wrong stage",
			mockError:      &checkout.TransitionError{From: checkout.StageBrowsing, Op: "apply a coupon"},
			expectedStatus: http.StatusConflict,
			expectedError:  "cannot apply a coupon while browsing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockCheckoutService)
			handler := NewHandler(mockService)
			router := setupTestRouter(handler)

			var view *checkout.View
			if tt.mockError == nil {
				view = &checkout.View{ID: "s-1", FinalPrice: 4900}
			}
			mockService.On("ApplyCoupon", mock.Anything, "s-1", "FIRSTCLASS").Return(view, tt.mockError)

			req := httptest.NewRequest(http.MethodPost, "/api/sessions/s-1/coupon",
				jsonBody(t, map[string]string{"code": "FIRSTCLASS"}))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, decodeError(t, rec))
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_CreateBooking(t *testing.T) {
	passenger := models.Passenger{Name: "Asha Rao", Email: "asha@example.com", Phone: "+91 98765 43210"}

	tests := []struct {
		name           string
		body           models.Passenger
		callsService   bool
		mockError      error
		expectedStatus int
	}{
		{
			name:           "booked",
			body:           passenger,
			callsService:   true,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing name",
			body:           models.Passenger{Email: "asha@example.com"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing email",
			body:           models.Passenger{Name: "Asha Rao"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:         "backend failure",
			body:         passenger,
			callsService: true,
			mockError: fmt.Errorf("failed to create booking: %w",
				&api.Error{Method: http.MethodPost, Endpoint: "/bookings/", StatusCode: http.StatusInternalServerError, Message: "database unavailable"}),
			expectedStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockCheckoutService)
			handler := NewHandler(mockService)
			router := setupTestRouter(handler)

			if tt.callsService {
				var view *checkout.View
				if tt.mockError == nil {
					view = &checkout.View{ID: "s-1", Stage: checkout.StageBookingCreated}
				}
				mockService.On("CreateBooking", mock.Anything, "s-1", tt.body).Return(view, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/sessions/s-1/booking", jsonBody(t, tt.body))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusBadGateway {
				assert.Equal(t, "database unavailable", decodeError(t, rec))
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_ChoosePaymentMethod(t *testing.T) {
	mockService := new(mocks.MockCheckoutService)
	handler := NewHandler(mockService)
	router := setupTestRouter(handler)

	mockService.On("ChoosePaymentMethod", mock.Anything, "s-1", models.PaymentMethodWallet).
		Return(nil, checkout.ErrUnknownPaymentMethod)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/s-1/payment-method",
		jsonBody(t, map[string]string{"method": "wallet"}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/sessions/s-1/payment-method",
		jsonBody(t, map[string]string{}))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Payment method is required", decodeError(t, rec))

	mockService.AssertExpectations(t)
}

func TestHandler_SubmitPayment(t *testing.T) {
	details := models.PaymentDetails{Card: models.CardDetails{
		CardNumber: "4000 0000 0000 0002",
		CardName:   "ASHA RAO",
		CardExpiry: "12/28",
		CardCVV:    "123",
	}}

	tests := []struct {
		name           string
		mockError      error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "confirmed",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "declined",
			mockError:      &checkout.PaymentDeclinedError{PaymentID: "pay_1", Message: "Card declined"},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  "Card declined",
		},
		{
			name:           "invalid request",
			mockError:      fmt.Errorf("%w: Missing required payment data", payment.ErrInvalidRequest),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "no method chosen",
			mockError:      checkout.ErrNoPaymentMethod,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "gateway timeout",
			mockError:      errors.New("context deadline exceeded"),
			expectedStatus: http.StatusBadGateway,
			expectedError:  "context deadline exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockCheckoutService)
			handler := NewHandler(mockService)
			router := setupTestRouter(handler)

			var view *checkout.View
			if tt.mockError == nil {
				view = &checkout.View{ID: "s-1", Stage: checkout.StageConfirmed}
			}
			mockService.On("SubmitPayment", mock.Anything, "s-1", details).Return(view, tt.mockError)

			req := httptest.NewRequest(http.MethodPost, "/api/sessions/s-1/payment", jsonBody(t, details))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, decodeError(t, rec))
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_ResumeSession(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]string
		mockError      error
		expectedStatus int
	}{
		{
			name:           "resumed",
			body:           map[string]string{"handoffKey": "k-1"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "unknown key",
			body:           map[string]string{"handoffKey": "k-1"},
			mockError:      handoff.ErrNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "malformed handoff",
			body:           map[string]string{"handoffKey": "k-1"},
			mockError:      fmt.Errorf("%w: flight is required", checkout.ErrInvalidHandoff),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing key",
			body:           map[string]string{},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.MockCheckoutService)
			handler := NewHandler(mockService)
			router := setupTestRouter(handler)

			if tt.body["handoffKey"] != "" {
				var view *checkout.View
				if tt.mockError == nil {
					view = &checkout.View{ID: "s-2", Stage: checkout.StageBookingCreated}
				}
				mockService.On("ResumeSession", mock.Anything, "k-1").Return(view, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/sessions/resume", jsonBody(t, tt.body))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_InvalidBody(t *testing.T) {
	mockService := new(mocks.MockCheckoutService)
	handler := NewHandler(mockService)
	router := setupTestRouter(handler)

	for _, path := range []string{"/api/sessions/s-1/flight", "/api/sessions/s-1/coupon", "/api/sessions/s-1/payment"} {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Equal(t, "Invalid request body", decodeError(t, rec))
	}
	mockService.AssertNotCalled(t, "SelectFlight")
}

func TestHandler_HealthCheck(t *testing.T) {
	handler := NewHandler(new(mocks.MockCheckoutService))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthCheck(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var response map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "healthy", response["status"])
}
