package fakeapi

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cx-tal-miterani/flight-checkout/internal/models"
)

const searchPageSize = 10

func (s *Server) searchFlights(c echo.Context) error {
	from := strings.ToUpper(c.QueryParam("departure_airport"))
	to := strings.ToUpper(c.QueryParam("arrival_airport"))

	s.mu.Lock()
	matches := make([]models.Flight, 0, len(s.flights))
	for _, f := range s.flights {
		if from != "" && f.DepartureAirport.Code != from {
			continue
		}
		if to != "" && f.ArrivalAirport.Code != to {
			continue
		}
		matches = append(matches, f)
	}
	s.mu.Unlock()

	page := matches
	if len(page) > searchPageSize {
		page = page[:searchPageSize]
	}
	return c.JSON(http.StatusOK, models.SearchResponse{
		Flights:    page,
		TotalCount: len(matches),
		Page:       1,
		PageSize:   searchPageSize,
	})
}

func (s *Server) listFlights(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, models.SearchResponse{
		Flights:    s.flights,
		TotalCount: len(s.flights),
		Page:       1,
		PageSize:   len(s.flights),
	})
}

func (s *Server) listAirports(c echo.Context) error {
	return c.JSON(http.StatusOK, s.airports)
}

func (s *Server) listAirlines(c echo.Context) error {
	return c.JSON(http.StatusOK, s.airlines)
}

// findFlight must be called with s.mu held
func (s *Server) findFlight(id int64) (*models.Flight, bool) {
	for i := range s.flights {
		if s.flights[i].ID == id {
			return &s.flights[i], true
		}
	}
	return nil, false
}

// quote prices a flight the way the demo backend does: the current price
// scaled by the seat class multiplier, truncated to whole rupees
func quote(f *models.Flight, class models.SeatClass) models.PricingQuote {
	multiplier, ok := seatMultipliers[class]
	if !ok {
		multiplier = 1.0
	}
	total := math.Trunc(f.CurrentPrice * multiplier)
	return models.PricingQuote{
		FlightID:               f.ID,
		SeatClass:              class,
		BasePrice:              math.Trunc(f.BasePrice * multiplier),
		CurrentPrice:           total,
		DemandFactor:           demandFactor,
		TimeFactor:             timeFactor,
		SeatAvailabilityFactor: availabilityFactor,
		TotalPrice:             total,
	}
}

func (s *Server) pricing(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return detail(c, http.StatusUnprocessableEntity, "Invalid flight id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.findFlight(id)
	if !ok {
		return detail(c, http.StatusNotFound, "Flight not found")
	}
	return c.JSON(http.StatusOK, quote(f, models.SeatClass(c.Param("class"))))
}

func (s *Server) createBooking(c echo.Context) error {
	var req models.BookingRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "Invalid booking request")
	}
	if strings.TrimSpace(req.PassengerName) == "" {
		return detail(c, http.StatusBadRequest, "Passenger name is required")
	}
	if req.SeatClass == "" {
		req.SeatClass = models.SeatClassEconomy
	}
	if !req.SeatClass.Valid() {
		return detail(c, http.StatusBadRequest, "Invalid seat class")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.findFlight(req.FlightID)
	if !ok {
		return detail(c, http.StatusNotFound, "Flight not found")
	}
	if f.AvailableSeats <= 0 {
		return detail(c, http.StatusBadRequest, "No seats available on this flight")
	}
	f.AvailableSeats--

	s.nextBookingID++
	flight := *f
	booking := models.BookingConfirmation{
		ID:               models.ID(strconv.FormatInt(s.nextBookingID, 10)),
		PNR:              s.randomID(6),
		BookingReference: s.randomID(10),
		PassengerName:    req.PassengerName,
		PassengerEmail:   req.PassengerEmail,
		PassengerPhone:   req.PassengerPhone,
		FlightDetails:    &flight,
		SeatClass:        req.SeatClass,
		SeatNumber:       fmt.Sprintf("%d%c", s.rng.Intn(30)+1, "ABCDEF"[s.rng.Intn(6)]),
		PricePaid:        quote(f, req.SeatClass).TotalPrice,
		BookingDate:      s.now().Format("2006-01-02T15:04:05"),
		Status:           "confirmed",
	}
	s.bookings = append(s.bookings, booking)

	s.logger.Info("fakeapi booking created", "pnr", booking.PNR, "flight", f.FlightNumber)
	return c.JSON(http.StatusOK, booking)
}
