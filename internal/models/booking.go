package models

import (
	"bytes"
	"encoding/json"
)

// ID accepts either a JSON string or number, since backends disagree on
// how booking ids are encoded.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// Passenger holds the contact details entered on the booking form
type Passenger struct {
	Name  string `json:"passenger_name"`
	Email string `json:"passenger_email"`
	Phone string `json:"passenger_phone"`
}

// BookingRequest is the body of POST /bookings/
type BookingRequest struct {
	FlightID       int64     `json:"flight_id"`
	PassengerName  string    `json:"passenger_name"`
	PassengerEmail string    `json:"passenger_email"`
	PassengerPhone string    `json:"passenger_phone"`
	SeatClass      SeatClass `json:"seat_class"`
}

// BookingConfirmation is the booking record echoed by the backend
type BookingConfirmation struct {
	ID               ID        `json:"id,omitempty"`
	PNR              string    `json:"pnr"`
	BookingReference string    `json:"booking_reference"`
	PassengerName    string    `json:"passenger_name"`
	PassengerEmail   string    `json:"passenger_email,omitempty"`
	PassengerPhone   string    `json:"passenger_phone,omitempty"`
	FlightDetails    *Flight   `json:"flight_details,omitempty"`
	SeatClass        SeatClass `json:"seat_class"`
	SeatNumber       string    `json:"seat_number,omitempty"`
	PricePaid        float64   `json:"price_paid"`
	BookingDate      string    `json:"booking_date,omitempty"`
	Status           string    `json:"status"`
}

// BookingID is the identifier sent to the payment API: the backend id when it
// returns one, otherwise the PNR.
func (b *BookingConfirmation) BookingID() string {
	if b.ID != "" {
		return string(b.ID)
	}
	return b.PNR
}
