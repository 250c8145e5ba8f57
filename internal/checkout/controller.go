// Package checkout drives a flight booking from search to a confirmed,
// paid booking. The backend makes every business decision; the controller
// sequences the calls, keeps the session's state consistent and raises a
// user-facing notification for each outcome.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/cx-tal-miterani/flight-checkout/internal/api"
	"github.com/cx-tal-miterani/flight-checkout/internal/handoff"
	"github.com/cx-tal-miterani/flight-checkout/internal/models"
	"github.com/cx-tal-miterani/flight-checkout/internal/payment"
	"github.com/cx-tal-miterani/flight-checkout/pkg/currency"
)

// User-facing notification texts
const (
	MsgAirportsFailed      = "Error loading airports. Please refresh the page."
	MsgSameAirports        = "Departure and arrival airports cannot be the same."
	MsgNoFlights           = "No flights found for your search criteria."
	MsgSearchFailed        = "Error searching flights. Please try again."
	MsgPricingFailed       = "Error fetching pricing information."
	MsgEmptyCoupon         = "Please enter a coupon code"
	MsgInvalidCoupon       = "Invalid coupon code"
	MsgCouponFailed        = "Error applying coupon. Please try again."
	MsgIncompletePassenger = "Please enter the passenger name and email."
	MsgBookingCreated      = "Booking created! Proceeding to payment..."
	MsgBookingRejected     = "Booking failed. Please try again."
	MsgBookingFailed       = "Error processing booking. Please try again."
	MsgNoPaymentMethod     = "Please select a payment method"
	MsgPaymentSucceeded    = "Payment successful! Booking confirmed."
	MsgPaymentFailed       = "Payment processing failed. Please try again."
)

// Backend is the part of the storefront API the controller calls
type Backend interface {
	Airports(ctx context.Context) ([]models.Airport, error)
	Coupons(ctx context.Context) ([]models.Coupon, error)
	PaymentMethods(ctx context.Context) ([]models.PaymentMethod, error)
	Banks(ctx context.Context) ([]models.Bank, error)
	SearchFlights(ctx context.Context, q models.SearchQuery) (*models.SearchResponse, error)
	Pricing(ctx context.Context, flightID int64, class models.SeatClass) (*models.PricingQuote, error)
	Coupon(ctx context.Context, code string) (*models.Coupon, error)
	ApplyCoupon(ctx context.Context, req models.ApplyCouponRequest) (*models.CouponApplication, error)
	CreateBooking(ctx context.Context, req models.BookingRequest) (*models.BookingConfirmation, error)
}

type Controller struct {
	backend  Backend
	payments payment.Executor
	handoffs handoff.Store
	notifier Notifier
	logger   *slog.Logger
	newKey   func() string
}

type Option func(*Controller)

// WithHandoffStore persists each created booking for the payment page
func WithHandoffStore(s handoff.Store) Option {
	return func(c *Controller) { c.handoffs = s }
}

func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithKeyFunc replaces the uuid generator used for handoff and idempotency keys
func WithKeyFunc(f func() string) Option {
	return func(c *Controller) { c.newKey = f }
}

func NewController(backend Backend, payments payment.Executor, opts ...Option) *Controller {
	c := &Controller{
		backend:  backend,
		payments: payments,
		logger:   slog.Default(),
		newKey:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.notifier == nil {
		c.notifier = LogNotifier{Logger: c.logger}
	}
	return c
}

// Prefetch loads the catalog the search form and payment page need. Only a
// failure to load airports is reported to the user.
func (c *Controller) Prefetch(ctx context.Context, s *Session) error {
	airports, err := c.backend.Airports(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to load airports", "session", s.ID, "error", err)
		c.notify(ctx, s, LevelError, MsgAirportsFailed)
		return fmt.Errorf("failed to load airports: %w", err)
	}
	s.Catalog.Airports = airports

	if coupons, err := c.backend.Coupons(ctx); err != nil {
		c.logger.WarnContext(ctx, "failed to load coupons", "session", s.ID, "error", err)
	} else {
		s.Catalog.Coupons = coupons
	}

	if methods, err := c.backend.PaymentMethods(ctx); err != nil {
		c.logger.WarnContext(ctx, "failed to load payment methods", "session", s.ID, "error", err)
	} else {
		s.Catalog.PaymentMethods = methods
	}

	if banks, err := c.backend.Banks(ctx); err != nil {
		c.logger.WarnContext(ctx, "failed to load banks", "session", s.ID, "error", err)
	} else {
		s.Catalog.Banks = banks
	}
	return nil
}

// Search runs a flight search and resets the session to browsing. Identical
// departure and arrival airports, including two blank ones, are refused
// without calling the backend.
func (c *Controller) Search(ctx context.Context, s *Session, q models.SearchQuery) ([]models.Flight, error) {
	switch s.State.(type) {
	case *Browsing, *FlightSelected, *Confirmed:
	default:
		return nil, &TransitionError{From: s.Stage(), Op: "search flights"}
	}

	q.DepartureAirport = strings.ToUpper(strings.TrimSpace(q.DepartureAirport))
	q.ArrivalAirport = strings.ToUpper(strings.TrimSpace(q.ArrivalAirport))
	if q.DepartureAirport == q.ArrivalAirport {
		c.notify(ctx, s, LevelError, MsgSameAirports)
		return nil, ErrSameAirports
	}
	if q.SeatClass != "" && !q.SeatClass.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeatClass, q.SeatClass)
	}

	resp, err := c.backend.SearchFlights(ctx, q)
	if err != nil {
		c.logger.ErrorContext(ctx, "flight search failed", "session", s.ID, "error", err)
		c.notify(ctx, s, LevelError, MsgSearchFailed)
		return nil, fmt.Errorf("failed to search flights: %w", err)
	}

	if q.Passengers > 0 {
		s.Passengers = q.Passengers
	}
	if q.SeatClass != "" {
		s.SeatClass = q.SeatClass
	}
	s.Results = resp.Flights
	s.State = &Browsing{}

	if len(resp.Flights) == 0 {
		c.notify(ctx, s, LevelInfo, MsgNoFlights)
	}
	c.logger.InfoContext(ctx, "flights searched",
		"session", s.ID,
		"from", q.DepartureAirport,
		"to", q.ArrivalAirport,
		"results", len(resp.Flights),
	)
	return resp.Flights, nil
}

// SelectFlight quotes a flight from the last search for the session's seat
// class. A pricing failure leaves the state unchanged.
func (c *Controller) SelectFlight(ctx context.Context, s *Session, flightID int64) (*FlightSelected, error) {
	switch s.State.(type) {
	case *Browsing, *FlightSelected:
	default:
		return nil, &TransitionError{From: s.Stage(), Op: "select a flight"}
	}

	flight, ok := s.flight(flightID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFlight, flightID)
	}

	quote, err := c.backend.Pricing(ctx, flightID, s.SeatClass)
	if err != nil {
		c.logger.ErrorContext(ctx, "pricing failed", "session", s.ID, "flightId", flightID, "seatClass", s.SeatClass, "error", err)
		c.notify(ctx, s, LevelError, MsgPricingFailed)
		return nil, fmt.Errorf("failed to fetch pricing: %w", err)
	}

	selected := &FlightSelected{Flight: flight, Quote: *quote}
	s.State = selected
	return selected, nil
}

// ChangeSeatClass switches the fare category. With a flight selected the
// quote is refetched, and any applied coupon is dropped because it was
// validated against the old amount.
func (c *Controller) ChangeSeatClass(ctx context.Context, s *Session, class models.SeatClass) error {
	if !class.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSeatClass, class)
	}

	switch st := s.State.(type) {
	case *Browsing, *Confirmed:
		s.SeatClass = class
		return nil

	case *FlightSelected:
		if class == s.SeatClass {
			return nil
		}
		quote, err := c.backend.Pricing(ctx, st.Flight.ID, class)
		if err != nil {
			c.logger.ErrorContext(ctx, "pricing failed", "session", s.ID, "flightId", st.Flight.ID, "seatClass", class, "error", err)
			c.notify(ctx, s, LevelError, MsgPricingFailed)
			return fmt.Errorf("failed to fetch pricing: %w", err)
		}

		dropped := st.Coupon
		s.SeatClass = class
		s.State = &FlightSelected{Flight: st.Flight, Quote: *quote}
		if dropped != nil {
			c.notify(ctx, s, LevelInfo, fmt.Sprintf("Coupon %s removed: seat class changed.", dropped.Code()))
		}
		return nil
	}

	return &TransitionError{From: s.Stage(), Op: "change seat class"}
}

// CheckCoupon looks a coupon up without applying it
func (c *Controller) CheckCoupon(ctx context.Context, s *Session, code string) (*models.Coupon, error) {
	code = normalizeCode(code)
	if code == "" {
		c.notify(ctx, s, LevelError, MsgEmptyCoupon)
		return nil, ErrEmptyCouponCode
	}

	coupon, err := c.backend.Coupon(ctx, code)
	if err != nil {
		c.logger.InfoContext(ctx, "coupon lookup failed", "session", s.ID, "code", code, "error", err)
		c.notify(ctx, s, LevelError, MsgInvalidCoupon)
		return nil, fmt.Errorf("failed to check coupon %s: %w", code, err)
	}

	c.notify(ctx, s, LevelSuccess, fmt.Sprintf("%s: %s", coupon.Name, coupon.Description))
	return coupon, nil
}

// ApplyCoupon asks the backend to apply a coupon to the current quote. A
// rejected coupon leaves the price as it was.
func (c *Controller) ApplyCoupon(ctx context.Context, s *Session, code string) (*models.CouponApplication, error) {
	sel, ok := selection(s.State)
	if !ok {
		return nil, &TransitionError{From: s.Stage(), Op: "apply a coupon"}
	}

	code = normalizeCode(code)
	if code == "" {
		c.notify(ctx, s, LevelError, MsgEmptyCoupon)
		return nil, ErrEmptyCouponCode
	}

	application, err := c.backend.ApplyCoupon(ctx, models.ApplyCouponRequest{
		CouponCode:    code,
		BookingAmount: sel.Quote.TotalPrice,
		SeatClass:     s.SeatClass,
		Passengers:    1,
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "coupon apply failed", "session", s.ID, "code", code, "error", err)
		c.notify(ctx, s, LevelError, MsgCouponFailed)
		return nil, fmt.Errorf("failed to apply coupon %s: %w", code, err)
	}

	if !application.Valid {
		c.notify(ctx, s, LevelError, application.Message)
		return application, &CouponRejectedError{Code: code, Message: application.Message}
	}

	if application.CouponDetails == nil {
		application.CouponDetails = &models.Coupon{Code: code}
	}
	sel.Coupon = application
	c.refreshHandoff(ctx, s)

	savings := application.Savings
	if savings == 0 {
		savings = application.DiscountAmount
	}
	c.notify(ctx, s, LevelSuccess, "Coupon applied! You saved "+currency.FormatINR(savings))
	return application, nil
}

// CreateBooking books the selected flight for passenger and stores the
// handoff the payment page resumes from
func (c *Controller) CreateBooking(ctx context.Context, s *Session, passenger models.Passenger) (*models.BookingConfirmation, error) {
	st, ok := s.State.(*FlightSelected)
	if !ok {
		return nil, &TransitionError{From: s.Stage(), Op: "create a booking"}
	}

	passenger.Name = strings.TrimSpace(passenger.Name)
	passenger.Email = strings.TrimSpace(passenger.Email)
	passenger.Phone = strings.TrimSpace(passenger.Phone)
	if passenger.Name == "" || passenger.Email == "" {
		c.notify(ctx, s, LevelError, MsgIncompletePassenger)
		return nil, ErrIncompletePassenger
	}

	booking, err := c.backend.CreateBooking(ctx, models.BookingRequest{
		FlightID:       st.Flight.ID,
		PassengerName:  passenger.Name,
		PassengerEmail: passenger.Email,
		PassengerPhone: passenger.Phone,
		SeatClass:      s.SeatClass,
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "booking failed", "session", s.ID, "flightId", st.Flight.ID, "error", err)
		var apiErr *api.Error
		switch {
		case errors.As(err, &apiErr) && apiErr.Message != "":
			c.notify(ctx, s, LevelError, apiErr.Message)
		case errors.As(err, &apiErr):
			c.notify(ctx, s, LevelError, MsgBookingRejected)
		default:
			c.notify(ctx, s, LevelError, MsgBookingFailed)
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.State = &BookingCreated{
		Selection: *st,
		Passenger: passenger,
		Booking:   *booking,
	}
	s.pending = nil

	if c.handoffs != nil {
		s.HandoffKey = c.newKey()
		c.refreshHandoff(ctx, s)
	}

	c.logger.InfoContext(ctx, "booking created", "session", s.ID, "pnr", booking.PNR, "flight", st.Flight.FlightNumber)
	c.notify(ctx, s, LevelSuccess, MsgBookingCreated)
	return booking, nil
}

// Resume rebuilds a booked session from a stored handoff
func (c *Controller) Resume(ctx context.Context, s *Session, key string) error {
	if _, ok := s.State.(*Browsing); !ok {
		return &TransitionError{From: s.Stage(), Op: "resume a booking"}
	}
	if c.handoffs == nil {
		return fmt.Errorf("failed to resume booking: %w", handoff.ErrNotFound)
	}

	h, err := c.handoffs.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to resume booking: %w", err)
	}

	sel := FlightSelected{Flight: h.Flight, Quote: h.Price, Coupon: h.Coupon}
	if math.Abs(sel.FinalPrice()-h.FinalPrice) > 0.005 {
		return fmt.Errorf("%w: final price %.2f does not match the quote", ErrInvalidHandoff, h.FinalPrice)
	}

	s.Passengers = h.Passengers
	s.SeatClass = h.SeatClass
	s.Results = []models.Flight{h.Flight}
	s.HandoffKey = key
	s.pending = nil
	s.State = &BookingCreated{
		Selection: sel,
		Passenger: models.Passenger{Name: h.PassengerName, Email: h.PassengerEmail, Phone: h.PassengerPhone},
		Booking:   h.Booking,
	}

	c.logger.InfoContext(ctx, "booking resumed", "session", s.ID, "pnr", h.Booking.PNR)
	return nil
}

// ChoosePaymentMethod selects the payment method, replacing any earlier choice
func (c *Controller) ChoosePaymentMethod(ctx context.Context, s *Session, method models.PaymentMethodID) error {
	if method == "" {
		c.notify(ctx, s, LevelError, MsgNoPaymentMethod)
		return ErrNoPaymentMethod
	}
	if !s.offersMethod(method) {
		return fmt.Errorf("%w: %s", ErrUnknownPaymentMethod, method)
	}

	switch st := s.State.(type) {
	case *BookingCreated:
		s.State = &PaymentMethodChosen{BookingCreated: *st, Method: method}
	case *PaymentMethodChosen:
		st.Method = method
	default:
		return &TransitionError{From: s.Stage(), Op: "choose a payment method"}
	}
	return nil
}

// SubmitPayment pays for the booking with the chosen method. A decline or a
// failure returns the session to method selection. After a failure that may
// have left a payment half done, the next submit for the same booking, amount
// and method reuses the idempotency key so the attempt is resumed.
func (c *Controller) SubmitPayment(ctx context.Context, s *Session, details models.PaymentDetails) (*payment.Outcome, error) {
	var chosen *PaymentMethodChosen
	switch st := s.State.(type) {
	case *PaymentMethodChosen:
		chosen = st
	case *BookingCreated:
		c.notify(ctx, s, LevelError, MsgNoPaymentMethod)
		return nil, ErrNoPaymentMethod
	default:
		return nil, &TransitionError{From: s.Stage(), Op: "submit a payment"}
	}

	req := payment.Request{
		BookingID: chosen.Booking.BookingID(),
		Amount:    chosen.Selection.FinalPrice(),
		Currency:  models.CurrencyINR,
		Method:    chosen.Method,
		Details:   details,
	}
	if p := s.pending; p != nil && p.BookingID == req.BookingID && p.Amount == req.Amount && p.Method == req.Method {
		req.IdempotencyKey = p.IdempotencyKey
	} else {
		req.IdempotencyKey = c.newKey()
	}

	s.State = &PaymentSubmitted{Chosen: *chosen, Request: req}
	outcome, err := c.payments.Execute(ctx, req)
	if err != nil {
		s.State = chosen
		if payment.Resumable(err) {
			s.pending = &req
			c.notify(ctx, s, LevelError, MsgPaymentFailed)
		} else {
			s.pending = nil
			if msg := api.ServerMessage(err); msg != "" {
				c.notify(ctx, s, LevelError, "Payment failed: "+msg)
			} else {
				c.notify(ctx, s, LevelError, MsgPaymentFailed)
			}
		}
		c.logger.ErrorContext(ctx, "payment failed", "session", s.ID, "key", req.IdempotencyKey, "resumable", s.pending != nil, "error", err)
		return nil, fmt.Errorf("failed to pay for booking %s: %w", req.BookingID, err)
	}

	s.pending = nil
	if !outcome.Succeeded() {
		s.State = chosen
		c.notify(ctx, s, LevelError, "Payment failed: "+outcome.Result.Message)
		return outcome, &PaymentDeclinedError{PaymentID: outcome.Result.PaymentID, Message: outcome.Result.Message}
	}

	s.State = &Confirmed{
		Booking: chosen.Booking,
		Amount:  req.Amount,
		Outcome: *outcome,
	}
	if c.handoffs != nil && s.HandoffKey != "" {
		if err := c.handoffs.Delete(ctx, s.HandoffKey); err != nil {
			c.logger.WarnContext(ctx, "failed to delete handoff", "session", s.ID, "key", s.HandoffKey, "error", err)
		}
	}

	c.logger.InfoContext(ctx, "payment confirmed",
		"session", s.ID,
		"pnr", chosen.Booking.PNR,
		"paymentId", outcome.Result.PaymentID,
		"amount", req.Amount,
		"replayed", outcome.Replayed,
	)
	c.notify(ctx, s, LevelSuccess, MsgPaymentSucceeded)
	return outcome, nil
}

// refreshHandoff rewrites the stored handoff for a booked session. The
// booking already exists, so a failed write is logged rather than returned.
func (c *Controller) refreshHandoff(ctx context.Context, s *Session) {
	if c.handoffs == nil || s.HandoffKey == "" {
		return
	}

	var booked *BookingCreated
	switch st := s.State.(type) {
	case *BookingCreated:
		booked = st
	case *PaymentMethodChosen:
		booked = &st.BookingCreated
	default:
		return
	}

	h := &handoff.Handoff{
		Flight:         booked.Selection.Flight,
		Passengers:     s.Passengers,
		SeatClass:      s.SeatClass,
		Price:          booked.Selection.Quote,
		FinalPrice:     booked.Selection.FinalPrice(),
		PassengerName:  booked.Passenger.Name,
		PassengerEmail: booked.Passenger.Email,
		PassengerPhone: booked.Passenger.Phone,
		Coupon:         booked.Selection.Coupon,
		Booking:        booked.Booking,
	}
	if err := c.handoffs.Save(ctx, s.HandoffKey, h); err != nil {
		c.logger.ErrorContext(ctx, "failed to save handoff", "session", s.ID, "key", s.HandoffKey, "error", err)
	}
}

func (c *Controller) notify(ctx context.Context, s *Session, level Level, msg string) {
	c.notifier.Notify(ctx, s.ID, Notification{Level: level, Message: msg})
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
