package checkout

import (
	"time"

	"github.com/google/uuid"

	"github.com/cx-tal-miterani/flight-checkout/internal/models"
	"github.com/cx-tal-miterani/flight-checkout/internal/payment"
)

// Catalog is the reference data prefetched when a session starts
type Catalog struct {
	Airports       []models.Airport       `json:"airports"`
	Coupons        []models.Coupon        `json:"coupons"`
	PaymentMethods []models.PaymentMethod `json:"paymentMethods"`
	Banks          []models.Bank          `json:"banks"`
}

// Session is one user's checkout. It is not safe for concurrent use; callers
// drive it one operation at a time.
type Session struct {
	ID         string
	Passengers int
	SeatClass  models.SeatClass
	Catalog    Catalog
	Results    []models.Flight
	State      State
	// HandoffKey names the stored booking handoff once a booking exists
	HandoffKey string
	CreatedAt  time.Time

	// pending is a payment whose outcome is unknown; a matching resubmit
	// reuses its idempotency key
	pending *payment.Request
}

func NewSession() *Session {
	return &Session{
		ID:         uuid.NewString(),
		Passengers: 1,
		SeatClass:  models.SeatClassEconomy,
		State:      &Browsing{},
		CreatedAt:  time.Now(),
	}
}

func (s *Session) Stage() Stage {
	return s.State.Stage()
}

// PendingPaymentKey is the idempotency key a resubmit will reuse, if any
func (s *Session) PendingPaymentKey() string {
	if s.pending == nil {
		return ""
	}
	return s.pending.IdempotencyKey
}

// FinalPrice is the amount payable for the current selection, or 0 when no
// quote exists
func (s *Session) FinalPrice() float64 {
	if sel, ok := selection(s.State); ok {
		return sel.FinalPrice()
	}
	if c, ok := s.State.(*Confirmed); ok {
		return c.Amount
	}
	return 0
}

func (s *Session) flight(id int64) (models.Flight, bool) {
	for _, f := range s.Results {
		if f.ID == id {
			return f, true
		}
	}
	return models.Flight{}, false
}

func (s *Session) offersMethod(id models.PaymentMethodID) bool {
	if len(s.Catalog.PaymentMethods) == 0 {
		return true
	}
	for _, m := range s.Catalog.PaymentMethods {
		if m.ID == id {
			return true
		}
	}
	return false
}

// View is the JSON shape of a session
type View struct {
	ID                string                      `json:"id"`
	Stage             Stage                       `json:"stage"`
	Passengers        int                         `json:"passengers"`
	SeatClass         models.SeatClass            `json:"seatClass"`
	Flights           []models.Flight             `json:"flights,omitempty"`
	Flight            *models.Flight              `json:"flight,omitempty"`
	Quote             *models.PricingQuote        `json:"quote,omitempty"`
	Coupon            *models.CouponApplication   `json:"coupon,omitempty"`
	FinalPrice        float64                     `json:"finalPrice,omitempty"`
	Passenger         *models.Passenger           `json:"passenger,omitempty"`
	Booking           *models.BookingConfirmation `json:"booking,omitempty"`
	PaymentMethod     models.PaymentMethodID      `json:"paymentMethod,omitempty"`
	Payment           *payment.Outcome            `json:"payment,omitempty"`
	HandoffKey        string                      `json:"handoffKey,omitempty"`
	PendingPaymentKey string                      `json:"pendingPaymentKey,omitempty"`
}

func (s *Session) View() View {
	v := View{
		ID:                s.ID,
		Stage:             s.Stage(),
		Passengers:        s.Passengers,
		SeatClass:         s.SeatClass,
		Flights:           s.Results,
		FinalPrice:        s.FinalPrice(),
		HandoffKey:        s.HandoffKey,
		PendingPaymentKey: s.PendingPaymentKey(),
	}

	if sel, ok := selection(s.State); ok {
		v.Flight = &sel.Flight
		v.Quote = &sel.Quote
		v.Coupon = sel.Coupon
	}

	switch st := s.State.(type) {
	case *BookingCreated:
		v.Passenger = &st.Passenger
		v.Booking = &st.Booking
	case *PaymentMethodChosen:
		v.Passenger = &st.Passenger
		v.Booking = &st.Booking
		v.PaymentMethod = st.Method
	case *PaymentSubmitted:
		v.Booking = &st.Chosen.Booking
		v.PaymentMethod = st.Chosen.Method
	case *Confirmed:
		v.Booking = &st.Booking
		v.Payment = &st.Outcome
	}
	return v
}
