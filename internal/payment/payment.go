// Package payment runs the two-phase (initiate, then process) payment against
// the backend. Every attempt is journaled under an idempotency key so that a
// resubmit after an interruption resumes the same backend payment instead of
// initiating a second one.
package payment

import (
	"context"
	"errors"

	"github.com/cx-tal-miterani/flight-checkout/internal/models"
)

var ErrInvalidRequest = errors.New("invalid payment request")

// Gateway is the backend's payment API
type Gateway interface {
	InitiatePayment(ctx context.Context, req models.InitiatePaymentRequest, idempotencyKey string) (*models.PaymentInitiation, error)
	ProcessPayment(ctx context.Context, req models.ProcessPaymentRequest) (*models.PaymentResult, error)
	PaymentStatus(ctx context.Context, paymentID string) (*models.PaymentStatus, error)
	Refund(ctx context.Context, req models.RefundRequest) (*models.Refund, error)
}

// Request is one logical payment
type Request struct {
	IdempotencyKey string                 `json:"idempotencyKey"`
	BookingID      string                 `json:"bookingId"`
	Amount         float64                `json:"amount"`
	Currency       string                 `json:"currency"`
	Method         models.PaymentMethodID `json:"method"`
	Details        models.PaymentDetails  `json:"details"`
}

func (r Request) validate() error {
	switch {
	case r.IdempotencyKey == "":
		return errors.Join(ErrInvalidRequest, errors.New("idempotency key is required"))
	case r.BookingID == "":
		return errors.Join(ErrInvalidRequest, errors.New("booking id is required"))
	case r.Amount <= 0:
		return errors.Join(ErrInvalidRequest, errors.New("amount must be positive"))
	case r.Method == "":
		return errors.Join(ErrInvalidRequest, errors.New("payment method is required"))
	}
	return nil
}

// Outcome is the settled result of a payment. A declined payment is an
// Outcome with Result.Success false, not an error.
type Outcome struct {
	Initiation models.PaymentInitiation `json:"initiation"`
	Result     models.PaymentResult     `json:"result"`
	// Replayed is set when the outcome came from the journal or the payment
	// status endpoint rather than a fresh process call.
	Replayed bool `json:"replayed"`
}

func (o *Outcome) Succeeded() bool {
	return o.Result.Success
}

// Step is the result of the initiate phase. Exactly one of Initiation and
// Settled is set: Settled means the attempt already reached an outcome.
type Step struct {
	Initiation *models.PaymentInitiation `json:"initiation,omitempty"`
	Settled    *Outcome                  `json:"settled,omitempty"`
}

// Executor runs a payment to its outcome
type Executor interface {
	Execute(ctx context.Context, req Request) (*Outcome, error)
}

// Resumable reports whether a failed Execute left an attempt that a resubmit
// with the same idempotency key should pick up. Rejections by the backend
// (4xx) and invalid requests are final.
func Resumable(err error) bool {
	if err == nil || errors.Is(err, ErrInvalidRequest) {
		return false
	}
	return !isClientError(err)
}
