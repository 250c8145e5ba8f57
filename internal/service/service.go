package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cx-tal-miterani/flight-checkout/internal/checkout"
	"github.com/cx-tal-miterani/flight-checkout/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionBusy is returned while another operation runs on the session
	ErrSessionBusy = errors.New("session is busy with another operation")
)

// CheckoutService defines the checkout service interface
type CheckoutService interface {
	CreateSession(ctx context.Context) (*checkout.View, error)
	GetSession(ctx context.Context, sessionID string) (*checkout.View, error)
	ResumeSession(ctx context.Context, handoffKey string) (*checkout.View, error)
	SearchFlights(ctx context.Context, sessionID string, q models.SearchQuery) (*checkout.View, error)
	SelectFlight(ctx context.Context, sessionID string, flightID int64) (*checkout.View, error)
	ChangeSeatClass(ctx context.Context, sessionID string, class models.SeatClass) (*checkout.View, error)
	CheckCoupon(ctx context.Context, sessionID, code string) (*models.Coupon, error)
	ApplyCoupon(ctx context.Context, sessionID, code string) (*checkout.View, error)
	CreateBooking(ctx context.Context, sessionID string, passenger models.Passenger) (*checkout.View, error)
	ChoosePaymentMethod(ctx context.Context, sessionID string, method models.PaymentMethodID) (*checkout.View, error)
	SubmitPayment(ctx context.Context, sessionID string, details models.PaymentDetails) (*checkout.View, error)
}

// sessionEntry pairs a session with the snapshot served to readers. mu
// serializes operations on the session; viewMu guards view and lastUsed so
// reads never wait on a running operation.
type sessionEntry struct {
	mu      sync.Mutex
	session *checkout.Session
	removed bool

	viewMu   sync.RWMutex
	view     checkout.View
	lastUsed time.Time
}

func (e *sessionEntry) snapshot() checkout.View {
	e.viewMu.RLock()
	defer e.viewMu.RUnlock()
	return e.view
}

func (e *sessionEntry) touch(now time.Time) {
	e.viewMu.Lock()
	defer e.viewMu.Unlock()
	e.lastUsed = now
}

// publish replaces the snapshot with the session's current view. Callers
// hold mu.
func (e *sessionEntry) publish(now time.Time) checkout.View {
	v := e.session.View()
	e.viewMu.Lock()
	defer e.viewMu.Unlock()
	e.view = v
	e.lastUsed = now
	return v
}

func (e *sessionEntry) idle(now time.Time) time.Duration {
	e.viewMu.RLock()
	defer e.viewMu.RUnlock()
	return now.Sub(e.lastUsed)
}

// checkoutServiceImpl implements CheckoutService
type checkoutServiceImpl struct {
	controller *checkout.Controller
	logger     *slog.Logger
	ttl        time.Duration
	now        func() time.Time

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

// Option configures the checkout service
type Option func(*checkoutServiceImpl)

// WithSessionTTL expires sessions left idle for longer than ttl. Zero keeps
// sessions forever.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *checkoutServiceImpl) {
		s.ttl = ttl
	}
}

// WithClock sets the clock used for session expiry
func WithClock(now func() time.Time) Option {
	return func(s *checkoutServiceImpl) {
		s.now = now
	}
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(controller *checkout.Controller, logger *slog.Logger, opts ...Option) CheckoutService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &checkoutServiceImpl{
		controller: controller,
		logger:     logger,
		now:        time.Now,
		sessions:   make(map[string]*sessionEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *checkoutServiceImpl) CreateSession(ctx context.Context) (*checkout.View, error) {
	session := checkout.NewSession()
	if err := s.controller.Prefetch(ctx, session); err != nil {
		return nil, err
	}
	s.store(session)

	s.logger.InfoContext(ctx, "session created", "session", session.ID)
	v := session.View()
	return &v, nil
}

// GetSession returns the view published by the session's last operation. It
// does not wait for an operation in progress.
func (s *checkoutServiceImpl) GetSession(ctx context.Context, sessionID string) (*checkout.View, error) {
	entry, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	entry.touch(s.now())
	v := entry.snapshot()
	return &v, nil
}

// ResumeSession starts a session from a stored booking handoff
func (s *checkoutServiceImpl) ResumeSession(ctx context.Context, handoffKey string) (*checkout.View, error) {
	session := checkout.NewSession()
	if err := s.controller.Prefetch(ctx, session); err != nil {
		return nil, err
	}
	if err := s.controller.Resume(ctx, session, handoffKey); err != nil {
		return nil, err
	}
	s.store(session)

	v := session.View()
	return &v, nil
}

func (s *checkoutServiceImpl) SearchFlights(ctx context.Context, sessionID string, q models.SearchQuery) (*checkout.View, error) {
	return s.with(sessionID, func(session *checkout.Session) error {
		_, err := s.controller.Search(ctx, session, q)
		return err
	})
}

func (s *checkoutServiceImpl) SelectFlight(ctx context.Context, sessionID string, flightID int64) (*checkout.View, error) {
	return s.with(sessionID, func(session *checkout.Session) error {
		_, err := s.controller.SelectFlight(ctx, session, flightID)
		return err
	})
}

func (s *checkoutServiceImpl) ChangeSeatClass(ctx context.Context, sessionID string, class models.SeatClass) (*checkout.View, error) {
	return s.with(sessionID, func(session *checkout.Session) error {
		return s.controller.ChangeSeatClass(ctx, session, class)
	})
}

func (s *checkoutServiceImpl) CheckCoupon(ctx context.Context, sessionID, code string) (*models.Coupon, error) {
	var coupon *models.Coupon
	_, err := s.with(sessionID, func(session *checkout.Session) error {
		var err error
		coupon, err = s.controller.CheckCoupon(ctx, session, code)
		return err
	})
	return coupon, err
}

func (s *checkoutServiceImpl) ApplyCoupon(ctx context.Context, sessionID, code string) (*checkout.View, error) {
	return s.with(sessionID, func(session *checkout.Session) error {
		_, err := s.controller.ApplyCoupon(ctx, session, code)
		return err
	})
}

func (s *checkoutServiceImpl) CreateBooking(ctx context.Context, sessionID string, passenger models.Passenger) (*checkout.View, error) {
	return s.with(sessionID, func(session *checkout.Session) error {
		_, err := s.controller.CreateBooking(ctx, session, passenger)
		return err
	})
}

func (s *checkoutServiceImpl) ChoosePaymentMethod(ctx context.Context, sessionID string, method models.PaymentMethodID) (*checkout.View, error) {
	return s.with(sessionID, func(session *checkout.Session) error {
		return s.controller.ChoosePaymentMethod(ctx, session, method)
	})
}

func (s *checkoutServiceImpl) SubmitPayment(ctx context.Context, sessionID string, details models.PaymentDetails) (*checkout.View, error) {
	return s.with(sessionID, func(session *checkout.Session) error {
		_, err := s.controller.SubmitPayment(ctx, session, details)
		return err
	})
}

func (s *checkoutServiceImpl) store(session *checkout.Session) {
	entry := &sessionEntry{session: session}
	entry.publish(s.now())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = entry
}

func (s *checkoutServiceImpl) expired(entry *sessionEntry, now time.Time) bool {
	return s.ttl > 0 && entry.idle(now) > s.ttl
}

func (s *checkoutServiceImpl) lookup(sessionID string) (*sessionEntry, error) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok || s.expired(entry, s.now()) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return entry, nil
}

// with runs fn on the session while holding its lock. A session already in
// use fails fast with ErrSessionBusy instead of queueing a duplicate request.
// The snapshot is republished even when fn fails, since a failed payment
// still moves the session.
func (s *checkoutServiceImpl) with(sessionID string, fn func(*checkout.Session) error) (*checkout.View, error) {
	entry, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	if !entry.mu.TryLock() {
		return nil, ErrSessionBusy
	}
	defer entry.mu.Unlock()
	if entry.removed {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	entry.touch(s.now())

	err = fn(entry.session)
	v := entry.publish(s.now())
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Sweep drops sessions idle for longer than the TTL and returns how many it
// removed. Sessions with an operation in flight are kept.
func (s *checkoutServiceImpl) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, entry := range s.sessions {
		if !s.expired(entry, now) || !entry.mu.TryLock() {
			continue
		}
		entry.removed = true
		entry.mu.Unlock()
		delete(s.sessions, id)
		removed++
	}
	return removed
}
