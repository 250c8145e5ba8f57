// Package fakeapi is an in-memory stand-in for the flight booking backend. It
// serves every endpoint the checkout calls, with the demo backend's response
// shapes, messages and coupon rules. Payment outcomes are deterministic:
// DeclinedCard is declined, everything else succeeds.
package fakeapi

import (
	"context"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/cx-tal-miterani/flight-checkout/internal/models"
)

type paymentRecord struct {
	ID            string
	BookingID     string
	Amount        float64
	Currency      string
	Method        models.PaymentMethodID
	Status        models.PaymentStatusValue
	CreatedAt     time.Time
	ExpiresAt     time.Time
	TransactionID string
	FailureReason string
}

type Server struct {
	mu sync.Mutex

	flights  []models.Flight
	airports []models.Airport
	airlines []models.Airline
	coupons  []*coupon
	methods  []models.PaymentMethod
	banks    []models.Bank

	bookings      []models.BookingConfirmation
	nextBookingID int64
	payments      map[string]*paymentRecord
	// idempotencyKeys maps an initiate Idempotency-Key to its payment id
	idempotencyKeys map[string]string
	initiateCalls   int
	processCalls    int
	failProcessing  int
	dropResponses   int

	rng    *rand.Rand
	now    func() time.Time
	logger *slog.Logger
	echo   *echo.Echo
}

type Option func(*Server)

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func WithSeed(seed int64) Option {
	return func(s *Server) { s.rng = rand.New(rand.NewSource(seed)) }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

func New(opts ...Option) *Server {
	s := &Server{
		flights:         sampleFlights(),
		airports:        sampleAirports(),
		airlines:        sampleAirlines(),
		coupons:         sampleCoupons(),
		methods:         samplePaymentMethods(),
		banks:           sampleBanks(),
		payments:        make(map[string]*paymentRecord),
		idempotencyKeys: make(map[string]string),
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
		now:             time.Now,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.echo = s.routes()
	return s
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.DebugContext(c.Request().Context(), "fakeapi request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			)
			return nil
		},
	}))

	e.GET("/health", s.health)

	api := e.Group("/api")
	api.GET("/flights/search", s.searchFlights)
	api.GET("/flights/", s.listFlights)
	api.GET("/flights/airports/", s.listAirports)
	api.GET("/flights/airlines/", s.listAirlines)
	api.POST("/bookings/", s.createBooking)
	api.GET("/pricing/flight/:id/class/:class", s.pricing)
	api.GET("/coupons/", s.listCoupons)
	api.GET("/coupons/:code", s.getCoupon)
	api.POST("/coupons/validate", s.validateCoupon)
	api.POST("/coupons/apply", s.applyCoupon)
	api.GET("/payments/methods", s.listPaymentMethods)
	api.GET("/payments/banks", s.listBanks)
	api.POST("/payments/initiate", s.initiatePayment)
	api.POST("/payments/process", s.processPayment)
	api.GET("/payments/status/:id", s.paymentStatus)
	api.POST("/payments/refund", s.refund)

	return e
}

// Handler serves the fake backend, e.g. behind httptest.NewServer
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// FailProcessing makes the next n process calls fail with 503 before the
// payment is touched, leaving it pending
func (s *Server) FailProcessing(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failProcessing = n
}

// DropProcessResponses makes the next n process calls settle the payment but
// answer 504, as if the response was lost on the way back
func (s *Server) DropProcessResponses(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropResponses = n
}

// InitiateCalls counts initiate requests that created a new payment
func (s *Server) InitiateCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initiateCalls
}

// ProcessCalls counts every process request received
func (s *Server) ProcessCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processCalls
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// detail writes an error body the way the demo backend does
func detail(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"detail": msg})
}

const idChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// randomID must be called with s.mu held
func (s *Server) randomID(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = idChars[s.rng.Intn(len(idChars))]
	}
	return string(b)
}
