package activities

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/cx-tal-miterani/flight-checkout/internal/api"
	"github.com/cx-tal-miterani/flight-checkout/internal/models"
	"github.com/cx-tal-miterani/flight-checkout/internal/payment"
)

// Error types carried by non-retryable activity failures
const (
	ErrTypeRejected       = "PaymentRejected"
	ErrTypeInvalidRequest = "InvalidPaymentRequest"
)

// Payments is the two-phase payment API the activities drive
type Payments interface {
	Initiate(ctx context.Context, req payment.Request) (*payment.Step, error)
	Process(ctx context.Context, req payment.Request, initiation models.PaymentInitiation) (*payment.Outcome, error)
}

// Activities holds dependencies for payment activities
type Activities struct {
	payments Payments
}

func NewActivities(p Payments) *Activities {
	return &Activities{payments: p}
}

// ProcessPaymentInput is the input of the process phase
type ProcessPaymentInput struct {
	Request    payment.Request          `json:"request"`
	Initiation models.PaymentInitiation `json:"initiation"`
}

// InitiatePayment activity - runs, or resumes, the initiate phase
func (a *Activities) InitiatePayment(ctx context.Context, req payment.Request) (*payment.Step, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Initiating payment", "key", req.IdempotencyKey, "bookingId", req.BookingID, "amount", req.Amount)

	step, err := a.payments.Initiate(ctx, req)
	if err != nil {
		logger.Error("Initiate failed", "key", req.IdempotencyKey, "error", err)
		return nil, classify(err)
	}
	return step, nil
}

// ProcessPayment activity - processes an initiated payment
func (a *Activities) ProcessPayment(ctx context.Context, input ProcessPaymentInput) (*payment.Outcome, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Processing payment", "key", input.Request.IdempotencyKey, "paymentId", input.Initiation.PaymentID)

	outcome, err := a.payments.Process(ctx, input.Request, input.Initiation)
	if err != nil {
		logger.Error("Process failed", "key", input.Request.IdempotencyKey, "error", err)
		return nil, classify(err)
	}

	logger.Info("Payment processed", "key", input.Request.IdempotencyKey, "success", outcome.Succeeded())
	return outcome, nil
}

// classify marks final failures as non-retryable. A backend rejection keeps
// its *api.Error as the failure details so the caller can rebuild it.
func classify(err error) error {
	if errors.Is(err, payment.ErrInvalidRequest) {
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidRequest, err)
	}
	if payment.Resumable(err) {
		return err
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeRejected, err, *apiErr)
	}
	return err
}
