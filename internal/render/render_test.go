package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cx-tal-miterani/flight-checkout/internal/checkout"
	"github.com/cx-tal-miterani/flight-checkout/internal/models"
)

// value returns the value printed after "label:" in out
func value(t *testing.T, out, label string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if rest, ok := strings.CutPrefix(line, label+":"); ok {
			return strings.TrimSpace(rest)
		}
	}
	require.Failf(t, "label not found", "%q in:\n%s", label, out)
	return ""
}

var testFlight = models.Flight{
	ID:               1,
	FlightNumber:     "AI101",
	Airline:          models.Airline{Code: "AI", Name: "Air India"},
	DepartureAirport: models.Airport{Code: "DEL", Name: "Indira Gandhi International Airport"},
	ArrivalAirport:   models.Airport{Code: "BOM", Name: "Chhatrapati Shivaji Maharaj International Airport"},
	DepartureTime:    "2026-12-15T08:00:00",
	ArrivalTime:      "2026-12-15T10:30:00",
	DurationMinutes:  150,
	BasePrice:        4500,
	AvailableSeats:   150,
	Status:           "scheduled",
}

var testQuote = models.PricingQuote{
	FlightID:               1,
	SeatClass:              models.SeatClassEconomy,
	BasePrice:              4500,
	DemandFactor:           1.2,
	TimeFactor:             1.1,
	SeatAvailabilityFactor: 1.05,
	TotalPrice:             5400,
}

func TestDuration(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{150, "2h 30m"},
		{45, "0h 45m"},
		{745, "12h 25m"},
		{120, "2h 0m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Duration(tt.minutes))
	}
}

func TestClock(t *testing.T) {
	assert.Equal(t, "08:00 AM", Clock("2026-12-15T08:00:00"))
	assert.Equal(t, "09:30 PM", Clock("2026-12-15T21:30:00Z"))
	assert.Equal(t, "soon", Clock("soon"))
}

func TestFactor(t *testing.T) {
	assert.Equal(t, "120.0%", Factor(1.2))
	assert.Equal(t, "105.0%", Factor(1.05))
}

func TestFlightCard(t *testing.T) {
	t.Run("uses the economy quote", func(t *testing.T) {
		out := FlightCard(testFlight, &testQuote)

		assert.Contains(t, out, "₹5,400 per passenger")
		assert.Equal(t, "08:00 AM DEL -> 10:30 AM BOM (2h 30m)", value(t, out, "Route"))
		assert.Equal(t, "150", value(t, out, "Available Seats"))
	})

	t.Run("falls back to the base price", func(t *testing.T) {
		out := FlightCard(testFlight, nil)

		assert.Contains(t, out, "₹4,500 per passenger")
	})
}

func TestPriceDetails(t *testing.T) {
	out := PriceDetails(testQuote)

	assert.Equal(t, "₹4,500", value(t, out, "Base Price"))
	assert.Equal(t, "120.0%", value(t, out, "Demand Factor"))
	assert.Equal(t, "110.0%", value(t, out, "Time Factor"))
	assert.Equal(t, "105.0%", value(t, out, "Availability Factor"))
	assert.Equal(t, "₹5,400", value(t, out, "Total Price"))
}

func TestFinalPricing(t *testing.T) {
	t.Run("without coupon", func(t *testing.T) {
		out := FinalPricing(testQuote, nil)

		assert.Equal(t, "₹5,400", value(t, out, "Total Amount"))
		assert.NotContains(t, out, "You Save")
	})

	t.Run("with coupon", func(t *testing.T) {
		coupon := &models.CouponApplication{
			Valid:          true,
			OriginalAmount: 5400,
			DiscountAmount: 500,
			FinalAmount:    4900,
			CouponDetails:  &models.Coupon{Code: "SAVE500"},
		}
		out := FinalPricing(testQuote, coupon)

		assert.Equal(t, "₹5,400", value(t, out, "Original Price"))
		assert.Equal(t, "-₹500", value(t, out, "Discount (SAVE500)"))
		assert.Equal(t, "₹4,900", value(t, out, "Total Amount"))
		assert.Equal(t, "₹500", value(t, out, "You Save"))
	})
}

func TestPaymentSummary(t *testing.T) {
	booking := models.BookingConfirmation{
		PNR:           "ABC123",
		PassengerName: "Asha Rao",
		SeatClass:     models.SeatClassEconomy,
		FlightDetails: &testFlight,
	}
	coupon := &models.CouponApplication{Valid: true, OriginalAmount: 5400, DiscountAmount: 1080, CouponDetails: &models.Coupon{Code: "WELCOME20"}}

	out := PaymentSummary(booking, testQuote, coupon)

	assert.Equal(t, "AI101", value(t, out, "Flight"))
	assert.Equal(t, "Asha Rao", value(t, out, "Passenger"))
	assert.Equal(t, "-₹1,080", value(t, out, "Discount (WELCOME20)"))
	assert.Equal(t, "₹4,320", value(t, out, "Total Amount"))
}

func TestConfirmation(t *testing.T) {
	booking := models.BookingConfirmation{
		PNR:              "ABC123",
		BookingReference: "REF0000001",
		PassengerName:    "Asha Rao",
		FlightDetails:    &testFlight,
		SeatClass:        models.SeatClassBusiness,
		PricePaid:        13500,
		Status:           "confirmed",
	}

	out := Confirmation(booking)

	assert.Equal(t, "ABC123", value(t, out, "PNR"))
	assert.Equal(t, "N/A", value(t, out, "Passenger Email"))
	assert.Equal(t, "N/A", value(t, out, "Passenger Phone"))
	assert.Equal(t, "DEL -> BOM", value(t, out, "Route"))
	assert.Equal(t, "Dec 15, 2026 8:00 AM", value(t, out, "Departure"))
	assert.Equal(t, "TBD", value(t, out, "Seat Number"))
	assert.Equal(t, "₹13,500", value(t, out, "Total Paid"))
	assert.Equal(t, "CONFIRMED", value(t, out, "Status"))
}

func TestEMI(t *testing.T) {
	out := EMI(checkout.EMIPlan(4900))

	assert.Equal(t, "₹1,634/month", value(t, out, "3 months"))
	assert.Equal(t, "₹817/month", value(t, out, "6 months"))
	assert.Equal(t, "₹409/month", value(t, out, "12 months"))
}

func TestCoupons(t *testing.T) {
	coupons := []models.Coupon{
		{Code: "WELCOME20", Description: "20% off", MinAmount: 5000, MaxDiscount: 10000},
		{Code: "SAVE500", Description: "₹500 off", MinAmount: 3000, MaxDiscount: 500},
		{Code: "FAMILY", Description: "family", MinAmount: 15000, MaxDiscount: 1000},
		{Code: "STUDENT10", Description: "students", MinAmount: 2000, MaxDiscount: 5000},
	}

	out := Coupons(coupons, 3)

	assert.Equal(t, "20% off (Min. ₹5,000 | Max. ₹10,000 off)", value(t, out, "WELCOME20"))
	assert.NotContains(t, out, "STUDENT10")
}

func TestSession(t *testing.T) {
	quote := testQuote
	flight := testFlight
	v := checkout.View{
		ID:     "s-1",
		Stage:  checkout.StageFlightSelected,
		Flight: &flight,
		Quote:  &quote,
	}

	out := Session(v)

	assert.True(t, strings.HasPrefix(out, "Session s-1 [flight_selected]"))
	assert.Contains(t, out, "Final Pricing")
}
