package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/cx-tal-miterani/flight-checkout/internal/activities"
	"github.com/cx-tal-miterani/flight-checkout/internal/payment"
)

const (
	// InitiateTimeout bounds one initiate attempt
	InitiateTimeout = 30 * time.Second
	// ProcessTimeout bounds the process call
	ProcessTimeout = 30 * time.Second
	// MaxInitiateAttempts is safe to retry: the idempotency key collapses repeats
	MaxInitiateAttempts = 3
)

// PaymentWorkflow runs one logical payment, keyed by its idempotency key.
// Processing is attempted once; a failed run is resumed by starting the
// workflow again with the same key, which picks the journal up where it stopped.
func PaymentWorkflow(ctx workflow.Context, req payment.Request) (*payment.Outcome, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Payment workflow started", "key", req.IdempotencyKey, "bookingId", req.BookingID)

	initiateCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: InitiateTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        time.Minute,
			MaximumAttempts:        MaxInitiateAttempts,
			NonRetryableErrorTypes: []string{activities.ErrTypeRejected, activities.ErrTypeInvalidRequest},
		},
	})

	processCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: ProcessTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1, // No automatic retries for processing
		},
	})

	var a *activities.Activities

	var step payment.Step
	if err := workflow.ExecuteActivity(initiateCtx, a.InitiatePayment, req).Get(ctx, &step); err != nil {
		logger.Error("Initiate failed", "key", req.IdempotencyKey, "error", err)
		return nil, err
	}
	if step.Settled != nil {
		logger.Info("Payment already settled", "key", req.IdempotencyKey, "success", step.Settled.Succeeded())
		return step.Settled, nil
	}

	var outcome payment.Outcome
	err := workflow.ExecuteActivity(processCtx, a.ProcessPayment, activities.ProcessPaymentInput{
		Request:    req,
		Initiation: *step.Initiation,
	}).Get(ctx, &outcome)
	if err != nil {
		logger.Error("Process failed", "key", req.IdempotencyKey, "paymentId", step.Initiation.PaymentID, "error", err)
		return nil, err
	}

	logger.Info("Payment workflow completed", "key", req.IdempotencyKey, "success", outcome.Succeeded())
	return &outcome, nil
}
