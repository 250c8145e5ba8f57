package checkout

import (
	"errors"
	"fmt"

	"github.com/cx-tal-miterani/flight-checkout/internal/handoff"
)

var (
	ErrSameAirports         = errors.New("departure and arrival airports cannot be the same")
	ErrUnknownFlight        = errors.New("flight is not in the current search results")
	ErrInvalidSeatClass     = errors.New("invalid seat class")
	ErrEmptyCouponCode      = errors.New("coupon code is required")
	ErrIncompletePassenger  = errors.New("passenger name and email are required")
	ErrNoPaymentMethod      = errors.New("no payment method selected")
	ErrUnknownPaymentMethod = errors.New("payment method is not offered")
	ErrInvalidHandoff       = handoff.ErrInvalidHandoff
)

// TransitionError is returned when an operation is not legal in the
// session's current stage
type TransitionError struct {
	From Stage
	Op   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Op, e.From)
}

// CouponRejectedError carries the backend's reason for refusing a coupon
type CouponRejectedError struct {
	Code    string
	Message string
}

func (e *CouponRejectedError) Error() string {
	return fmt.Sprintf("coupon %s rejected: %s", e.Code, e.Message)
}

// PaymentDeclinedError is a payment the backend processed and refused
type PaymentDeclinedError struct {
	PaymentID string
	Message   string
}

func (e *PaymentDeclinedError) Error() string {
	return fmt.Sprintf("payment %s declined: %s", e.PaymentID, e.Message)
}
