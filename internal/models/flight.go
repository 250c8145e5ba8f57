package models

import "strings"

// Airline identifies the operating carrier of a flight
type Airline struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Airport represents an airport served by the storefront
type Airport struct {
	ID      int    `json:"id,omitempty"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

// Flight represents a scheduled flight as returned by the search API.
// Times are kept in the backend's wire format; render parses them for display.
type Flight struct {
	ID               int64   `json:"id"`
	FlightNumber     string  `json:"flight_number"`
	Airline          Airline `json:"airline"`
	DepartureAirport Airport `json:"departure_airport"`
	ArrivalAirport   Airport `json:"arrival_airport"`
	DepartureTime    string  `json:"departure_time"`
	ArrivalTime      string  `json:"arrival_time"`
	DurationMinutes  int     `json:"duration_minutes"`
	BasePrice        float64 `json:"base_price"`
	CurrentPrice     float64 `json:"current_price,omitempty"`
	TotalSeats       int     `json:"total_seats,omitempty"`
	AvailableSeats   int     `json:"available_seats"`
	Status           string  `json:"status"`
}

type SeatClass string

const (
	SeatClassEconomy        SeatClass = "economy"
	SeatClassPremiumEconomy SeatClass = "premium_economy"
	SeatClassBusiness       SeatClass = "business"
	SeatClassFirst          SeatClass = "first"
)

// Valid reports whether c is one of the known fare categories
func (c SeatClass) Valid() bool {
	switch c {
	case SeatClassEconomy, SeatClassPremiumEconomy, SeatClassBusiness, SeatClassFirst:
		return true
	}
	return false
}

// ParseSeatClass normalizes user input into a SeatClass
func ParseSeatClass(s string) (SeatClass, bool) {
	c := SeatClass(strings.ToLower(strings.TrimSpace(s)))
	return c, c.Valid()
}

// SearchQuery holds the flight search form. Empty fields are omitted from the
// request; Passengers is omitted when zero.
type SearchQuery struct {
	DepartureAirport string    `json:"departure_airport"`
	ArrivalAirport   string    `json:"arrival_airport"`
	DepartureDate    string    `json:"departure_date"`
	ReturnDate       string    `json:"return_date"`
	Passengers       int       `json:"passengers"`
	SeatClass        SeatClass `json:"seat_class"`
}

// SearchResponse is the paged search result
type SearchResponse struct {
	Flights    []Flight `json:"flights"`
	TotalCount int      `json:"total_count"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
}

// PricingQuote is the server-computed price for a (flight, seat class) pair
type PricingQuote struct {
	FlightID               int64     `json:"flight_id"`
	SeatClass              SeatClass `json:"seat_class"`
	BasePrice              float64   `json:"base_price"`
	CurrentPrice           float64   `json:"current_price"`
	DemandFactor           float64   `json:"demand_factor"`
	TimeFactor             float64   `json:"time_factor"`
	SeatAvailabilityFactor float64   `json:"seat_availability_factor"`
	TotalPrice             float64   `json:"total_price"`
}
