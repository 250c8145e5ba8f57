// Package render formats checkout data as plain text for the CLI and the
// storefront's text endpoints. Prices are always the server's figures; nothing
// here recomputes a total.
package render

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cx-tal-miterani/flight-checkout/internal/checkout"
	"github.com/cx-tal-miterani/flight-checkout/internal/models"
	"github.com/cx-tal-miterani/flight-checkout/pkg/currency"
)

const (
	wireLayout     = "2006-01-02T15:04:05"
	clockLayout    = "03:04 PM"
	dateTimeLayout = "Jan 2, 2006 3:04 PM"
)

// rows writes aligned "Label: value" lines
type rows struct {
	b  strings.Builder
	tw *tabwriter.Writer
}

func newRows(title string) *rows {
	r := &rows{}
	if title != "" {
		r.b.WriteString(title + "\n")
	}
	r.tw = tabwriter.NewWriter(&r.b, 0, 0, 2, ' ', 0)
	return r
}

func (r *rows) add(label, value string) {
	fmt.Fprintf(r.tw, "%s:\t%s\n", label, value)
}

func (r *rows) String() string {
	r.tw.Flush()
	return r.b.String()
}

// Duration renders minutes as "Xh Ym"
func Duration(minutes int) string {
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// Clock renders a backend timestamp as a 12-hour time, or returns it
// unchanged when it does not parse
func Clock(ts string) string {
	return reformat(ts, clockLayout)
}

func dateTime(ts string) string {
	return reformat(ts, dateTimeLayout)
}

func reformat(ts, layout string) string {
	t, err := time.Parse(wireLayout, ts)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, ts); err != nil {
			return ts
		}
	}
	return t.Format(layout)
}

// Factor renders a pricing factor as a percentage, e.g. 1.2 -> "120.0%"
func Factor(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// FlightCard is one search result. The price is the economy quote when one
// was fetched, otherwise the flight's base price.
func FlightCard(f models.Flight, economy *models.PricingQuote) string {
	price := f.BasePrice
	if economy != nil {
		price = economy.TotalPrice
	}

	airline := orDefault(f.Airline.Name, "Airline")
	from := orDefault(f.DepartureAirport.Code, "DEP")
	to := orDefault(f.ArrivalAirport.Code, "ARR")

	r := newRows(fmt.Sprintf("%s  %s (%s)  %s per passenger", f.FlightNumber, airline, orDefault(f.Airline.Code, "XX"), currency.FormatINR(price)))
	r.add("Route", fmt.Sprintf("%s %s -> %s %s (%s)", Clock(f.DepartureTime), from, Clock(f.ArrivalTime), to, Duration(f.DurationMinutes)))
	r.add("From", orDefault(f.DepartureAirport.Name, "Departure Airport"))
	r.add("To", orDefault(f.ArrivalAirport.Name, "Arrival Airport"))
	r.add("Available Seats", fmt.Sprint(f.AvailableSeats))
	r.add("Status", f.Status)
	return r.String()
}

// PriceDetails breaks a quote down into its factors
func PriceDetails(q models.PricingQuote) string {
	r := newRows("")
	r.add("Base Price", currency.FormatINR(q.BasePrice))
	r.add("Demand Factor", Factor(q.DemandFactor))
	r.add("Time Factor", Factor(q.TimeFactor))
	r.add("Availability Factor", Factor(q.SeatAvailabilityFactor))
	r.add("Total Price", currency.FormatINR(q.TotalPrice))
	return r.String()
}

// FinalPricing shows the quote total, the coupon discount when one applies,
// and the amount payable
func FinalPricing(q models.PricingQuote, coupon *models.CouponApplication) string {
	r := newRows("Final Pricing")
	r.add("Original Price", currency.FormatINR(q.TotalPrice))

	final := q.TotalPrice
	discounted := coupon != nil && coupon.DiscountAmount > 0
	if discounted {
		final = coupon.Final()
		r.add(fmt.Sprintf("Discount (%s)", coupon.Code()), "-"+currency.FormatINR(coupon.DiscountAmount))
	}
	r.add("Total Amount", currency.FormatINR(final))
	if discounted {
		r.add("You Save", currency.FormatINR(coupon.DiscountAmount))
	}
	return r.String()
}

// PaymentSummary is shown above the payment form
func PaymentSummary(b models.BookingConfirmation, q models.PricingQuote, coupon *models.CouponApplication) string {
	r := newRows("Payment Summary")
	if b.FlightDetails != nil {
		r.add("Flight", b.FlightDetails.FlightNumber)
	}
	r.add("Passenger", b.PassengerName)
	r.add("Seat Class", string(b.SeatClass))

	final := q.TotalPrice
	if coupon != nil {
		final = coupon.Final()
		r.add("Original Price", currency.FormatINR(coupon.OriginalAmount))
		r.add(fmt.Sprintf("Discount (%s)", coupon.Code()), "-"+currency.FormatINR(coupon.DiscountAmount))
	}
	r.add("Total Amount", currency.FormatINR(final))
	return r.String()
}

// Confirmation renders a confirmed booking
func Confirmation(b models.BookingConfirmation) string {
	r := newRows("Booking Details")
	r.add("PNR", b.PNR)
	r.add("Booking Reference", b.BookingReference)
	r.add("Passenger Name", b.PassengerName)
	r.add("Passenger Email", orDefault(b.PassengerEmail, "N/A"))
	r.add("Passenger Phone", orDefault(b.PassengerPhone, "N/A"))
	if f := b.FlightDetails; f != nil {
		r.add("Flight", f.FlightNumber)
		r.add("Route", f.DepartureAirport.Code+" -> "+f.ArrivalAirport.Code)
		r.add("Departure", dateTime(f.DepartureTime))
		r.add("Arrival", dateTime(f.ArrivalTime))
	}
	r.add("Seat Class", string(b.SeatClass))
	r.add("Seat Number", orDefault(b.SeatNumber, "TBD"))
	r.add("Total Paid", currency.FormatINR(b.PricePaid))
	r.add("Status", strings.ToUpper(b.Status))
	return r.String()
}

// EMI lists the installment options
func EMI(plan []checkout.Installment) string {
	r := newRows("EMI Options")
	for _, i := range plan {
		r.add(fmt.Sprintf("%d months", i.Months), currency.FormatINR(i.Monthly)+"/month")
	}
	return r.String()
}

// Coupons lists the first few offered coupons
func Coupons(coupons []models.Coupon, limit int) string {
	if limit > 0 && len(coupons) > limit {
		coupons = coupons[:limit]
	}
	r := newRows("Available Coupons")
	for _, c := range coupons {
		r.add(c.Code, fmt.Sprintf("%s (Min. %s | Max. %s off)", c.Description, currency.FormatINR(c.MinAmount), currency.FormatINR(c.MaxDiscount)))
	}
	return r.String()
}

// PaymentMethods lists the offered payment methods
func PaymentMethods(methods []models.PaymentMethod) string {
	r := newRows("Payment Methods")
	for _, m := range methods {
		r.add(string(m.ID), m.Name+" - "+m.Description)
	}
	return r.String()
}

// Session renders whatever the session's stage has to show
func Session(v checkout.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s [%s]\n", v.ID, v.Stage)

	switch v.Stage {
	case checkout.StageBrowsing:
		for _, f := range v.Flights {
			b.WriteString("\n" + FlightCard(f, nil))
		}
	case checkout.StageFlightSelected:
		b.WriteString("\n" + FlightCard(*v.Flight, nil))
		b.WriteString("\n" + PriceDetails(*v.Quote))
		b.WriteString("\n" + FinalPricing(*v.Quote, v.Coupon))
	case checkout.StageBookingCreated, checkout.StagePaymentMethodChosen, checkout.StagePaymentSubmitted:
		if v.Booking != nil && v.Quote != nil {
			b.WriteString("\n" + PaymentSummary(*v.Booking, *v.Quote, v.Coupon))
		}
		if v.PaymentMethod != "" {
			fmt.Fprintf(&b, "\nPayment method: %s\n", v.PaymentMethod)
		}
	case checkout.StageConfirmed:
		if v.Booking != nil {
			b.WriteString("\n" + Confirmation(*v.Booking))
		}
	}
	return b.String()
}
