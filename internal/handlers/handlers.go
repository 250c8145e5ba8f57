package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/cx-tal-miterani/flight-checkout/internal/api"
	"github.com/cx-tal-miterani/flight-checkout/internal/checkout"
	"github.com/cx-tal-miterani/flight-checkout/internal/handoff"
	"github.com/cx-tal-miterani/flight-checkout/internal/models"
	"github.com/cx-tal-miterani/flight-checkout/internal/payment"
	"github.com/cx-tal-miterani/flight-checkout/internal/service"
)

// Handler contains HTTP handlers for the storefront API
type Handler struct {
	checkoutService service.CheckoutService
}

// NewHandler creates a new Handler instance
func NewHandler(checkoutService service.CheckoutService) *Handler {
	return &Handler{
		checkoutService: checkoutService,
	}
}

type resumeRequest struct {
	HandoffKey string `json:"handoffKey"`
}

type selectFlightRequest struct {
	FlightID int64 `json:"flightId"`
}

type seatClassRequest struct {
	SeatClass string `json:"seatClass"`
}

type couponRequest struct {
	Code string `json:"code"`
}

type paymentMethodRequest struct {
	Method models.PaymentMethodID `json:"method"`
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondFailure maps a service error onto a status code and message
func respondFailure(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusBadGateway {
		if msg := api.ServerMessage(err); msg != "" {
			message = msg
		}
	}

	var rejected *checkout.CouponRejectedError
	var declined *checkout.PaymentDeclinedError
	switch {
	case errors.As(err, &rejected):
		message = rejected.Message
	case errors.As(err, &declined):
		message = declined.Message
	}
	respondError(w, status, message)
}

func statusFor(err error) int {
	var (
		transition *checkout.TransitionError
		rejected   *checkout.CouponRejectedError
		declined   *checkout.PaymentDeclinedError
	)

	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, handoff.ErrNotFound),
		api.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSessionBusy),
		errors.As(err, &transition):
		return http.StatusConflict
	case errors.As(err, &rejected),
		errors.As(err, &declined):
		return http.StatusUnprocessableEntity
	case errors.Is(err, checkout.ErrSameAirports),
		errors.Is(err, checkout.ErrUnknownFlight),
		errors.Is(err, checkout.ErrInvalidSeatClass),
		errors.Is(err, checkout.ErrEmptyCouponCode),
		errors.Is(err, checkout.ErrIncompletePassenger),
		errors.Is(err, checkout.ErrNoPaymentMethod),
		errors.Is(err, checkout.ErrUnknownPaymentMethod),
		errors.Is(err, checkout.ErrInvalidHandoff),
		errors.Is(err, payment.ErrInvalidRequest):
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

// CreateSession handles POST /api/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.checkoutService.CreateSession(r.Context())
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

// GetSession handles GET /api/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	view, err := h.checkoutService.GetSession(r.Context(), sessionID)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// ResumeSession handles POST /api/sessions/resume
func (h *Handler) ResumeSession(w http.ResponseWriter, r *http.Request) {
	var req resumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.HandoffKey == "" {
		respondError(w, http.StatusBadRequest, "Handoff key is required")
		return
	}

	view, err := h.checkoutService.ResumeSession(r.Context(), req.HandoffKey)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

// SearchFlights handles GET /api/sessions/{id}/flights
func (h *Handler) SearchFlights(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	params := r.URL.Query()

	q := models.SearchQuery{
		DepartureAirport: params.Get("from"),
		ArrivalAirport:   params.Get("to"),
		DepartureDate:    params.Get("date"),
		ReturnDate:       params.Get("return"),
	}
	if v := params.Get("passengers"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "Passengers must be a positive number")
			return
		}
		q.Passengers = n
	}
	if v := params.Get("class"); v != "" {
		class, ok := models.ParseSeatClass(v)
		if !ok {
			respondError(w, http.StatusBadRequest, "Invalid seat class")
			return
		}
		q.SeatClass = class
	}

	view, err := h.checkoutService.SearchFlights(r.Context(), sessionID, q)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// SelectFlight handles POST /api/sessions/{id}/flight
func (h *Handler) SelectFlight(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req selectFlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.FlightID == 0 {
		respondError(w, http.StatusBadRequest, "Flight ID is required")
		return
	}

	view, err := h.checkoutService.SelectFlight(r.Context(), sessionID, req.FlightID)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// ChangeSeatClass handles PUT /api/sessions/{id}/seat-class
func (h *Handler) ChangeSeatClass(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req seatClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	class, ok := models.ParseSeatClass(req.SeatClass)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid seat class")
		return
	}

	view, err := h.checkoutService.ChangeSeatClass(r.Context(), sessionID, class)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// CheckCoupon handles POST /api/sessions/{id}/coupon/check
func (h *Handler) CheckCoupon(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req couponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	coupon, err := h.checkoutService.CheckCoupon(r.Context(), sessionID, req.Code)
	if err != nil {
		if api.IsNotFound(err) {
			respondError(w, http.StatusNotFound, "Invalid coupon code")
			return
		}
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, coupon)
}

// ApplyCoupon handles POST /api/sessions/{id}/coupon
func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req couponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := h.checkoutService.ApplyCoupon(r.Context(), sessionID, req.Code)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// CreateBooking handles POST /api/sessions/{id}/booking
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req models.Passenger
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Validate request
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Passenger name is required")
		return
	}
	if req.Email == "" {
		respondError(w, http.StatusBadRequest, "Passenger email is required")
		return
	}

	view, err := h.checkoutService.CreateBooking(r.Context(), sessionID, req)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

// ChoosePaymentMethod handles POST /api/sessions/{id}/payment-method
func (h *Handler) ChoosePaymentMethod(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req paymentMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Method == "" {
		respondError(w, http.StatusBadRequest, "Payment method is required")
		return
	}

	view, err := h.checkoutService.ChoosePaymentMethod(r.Context(), sessionID, req.Method)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// SubmitPayment handles POST /api/sessions/{id}/payment
func (h *Handler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req models.PaymentDetails
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := h.checkoutService.SubmitPayment(r.Context(), sessionID, req)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
