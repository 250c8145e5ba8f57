// Package handoff carries a created booking across the page boundary between
// the booking form and the payment page.
package handoff

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/cx-tal-miterani/flight-checkout/internal/models"
)

var (
	ErrNotFound       = errors.New("handoff not found")
	ErrInvalidHandoff = errors.New("invalid handoff")
)

//go:embed schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// Handoff is the booking as persisted for the payment page
type Handoff struct {
	Flight         models.Flight              `json:"flight"`
	Passengers     int                        `json:"passengers"`
	SeatClass      models.SeatClass           `json:"seatClass"`
	Price          models.PricingQuote        `json:"price"`
	FinalPrice     float64                    `json:"finalPrice"`
	PassengerName  string                     `json:"passengerName"`
	PassengerEmail string                     `json:"passengerEmail"`
	PassengerPhone string                     `json:"passengerPhone"`
	Coupon         *models.CouponApplication  `json:"coupon"`
	Booking        models.BookingConfirmation `json:"booking"`
}

// Store persists handoffs under opaque keys
type Store interface {
	Save(ctx context.Context, key string, h *Handoff) error
	Load(ctx context.Context, key string) (*Handoff, error)
	Delete(ctx context.Context, key string) error
}

// Encode serializes h after checking it against the handoff schema
func Encode(h *Handoff) ([]byte, error) {
	data, err := json.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("failed to encode handoff: %w", err)
	}
	if err := Validate(data); err != nil {
		return nil, err
	}
	return data, nil
}

// Decode validates raw against the handoff schema before unmarshalling it
func Decode(raw []byte) (*Handoff, error) {
	if err := Validate(raw); err != nil {
		return nil, err
	}
	var h Handoff
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHandoff, err)
	}
	return &h, nil
}

// Validate checks raw against the handoff schema. Schema violations are
// reported as ErrInvalidHandoff with every failing field listed.
func Validate(raw []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidHandoff, err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidHandoff, strings.Join(problems, "; "))
}
