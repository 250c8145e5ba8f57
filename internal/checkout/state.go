package checkout

import (
	"github.com/cx-tal-miterani/flight-checkout/internal/models"
	"github.com/cx-tal-miterani/flight-checkout/internal/payment"
)

// Stage names a checkout state
type Stage string

const (
	StageBrowsing            Stage = "browsing"
	StageFlightSelected      Stage = "flight_selected"
	StageBookingCreated      Stage = "booking_created"
	StagePaymentMethodChosen Stage = "payment_method_chosen"
	StagePaymentSubmitted    Stage = "payment_submitted"
	StageConfirmed           Stage = "confirmed"
)

// State is one of *Browsing, *FlightSelected, *BookingCreated,
// *PaymentMethodChosen, *PaymentSubmitted or *Confirmed
type State interface {
	Stage() Stage
}

type Browsing struct{}

// FlightSelected holds a flight with a quote for the session's seat class
type FlightSelected struct {
	Flight models.Flight
	Quote  models.PricingQuote
	// Coupon is set only for a coupon the backend accepted against Quote
	Coupon *models.CouponApplication
}

// FinalPrice is the amount payable: the coupon's final amount when one is
// applied, otherwise the server's total price.
func (s *FlightSelected) FinalPrice() float64 {
	if s.Coupon != nil {
		return s.Coupon.Final()
	}
	return s.Quote.TotalPrice
}

type BookingCreated struct {
	Selection FlightSelected
	Passenger models.Passenger
	Booking   models.BookingConfirmation
}

type PaymentMethodChosen struct {
	BookingCreated
	Method models.PaymentMethodID
}

// PaymentSubmitted exists only while the payment executes
type PaymentSubmitted struct {
	Chosen  PaymentMethodChosen
	Request payment.Request
}

type Confirmed struct {
	Booking models.BookingConfirmation
	Amount  float64
	Outcome payment.Outcome
}

func (*Browsing) Stage() Stage            { return StageBrowsing }
func (*FlightSelected) Stage() Stage      { return StageFlightSelected }
func (*BookingCreated) Stage() Stage      { return StageBookingCreated }
func (*PaymentMethodChosen) Stage() Stage { return StagePaymentMethodChosen }
func (*PaymentSubmitted) Stage() Stage    { return StagePaymentSubmitted }
func (*Confirmed) Stage() Stage           { return StageConfirmed }

// selection returns the flight selection of any state that has a quote
func selection(st State) (*FlightSelected, bool) {
	switch s := st.(type) {
	case *FlightSelected:
		return s, true
	case *BookingCreated:
		return &s.Selection, true
	case *PaymentMethodChosen:
		return &s.Selection, true
	}
	return nil, false
}
