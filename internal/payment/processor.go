package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cx-tal-miterani/flight-checkout/internal/api"
	"github.com/cx-tal-miterani/flight-checkout/internal/journal"
	"github.com/cx-tal-miterani/flight-checkout/internal/models"
)

// Processor executes payments directly against the Gateway
type Processor struct {
	gateway Gateway
	journal journal.Journal
	logger  *slog.Logger
}

func NewProcessor(gateway Gateway, j journal.Journal, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		gateway: gateway,
		journal: j,
		logger:  logger,
	}
}

// Execute runs both phases
func (p *Processor) Execute(ctx context.Context, req Request) (*Outcome, error) {
	step, err := p.Initiate(ctx, req)
	if err != nil {
		return nil, err
	}
	if step.Settled != nil {
		return step.Settled, nil
	}
	return p.Process(ctx, req, *step.Initiation)
}

// Initiate runs the first phase, or picks up where a previous attempt with the
// same idempotency key stopped.
func (p *Processor) Initiate(ctx context.Context, req Request) (*Step, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	attempt, err := p.loadOrCreate(ctx, req)
	if err != nil {
		return nil, err
	}

	switch attempt.Status {
	case journal.StatusCompleted, journal.StatusFailed:
		p.logger.InfoContext(ctx, "replaying settled payment attempt", "key", attempt.Key, "status", attempt.Status)
		return &Step{Settled: outcomeFromAttempt(attempt)}, nil

	case journal.StatusInitiated:
		status, err := p.gateway.PaymentStatus(ctx, attempt.PaymentID)
		if err != nil {
			return nil, fmt.Errorf("failed to check payment %s: %w", attempt.PaymentID, err)
		}
		if status.Status == models.PaymentStatusPending {
			p.logger.InfoContext(ctx, "resuming initiated payment", "key", attempt.Key, "paymentId", attempt.PaymentID)
			return &Step{Initiation: initiationFromAttempt(attempt)}, nil
		}
		return &Step{Settled: p.settle(ctx, attempt, status)}, nil
	}

	// Started: the previous initiate never returned a payment id
	initiation, err := p.gateway.InitiatePayment(ctx, models.InitiatePaymentRequest{
		BookingID:     req.BookingID,
		Amount:        req.Amount,
		PaymentMethod: req.Method,
		Currency:      req.Currency,
	}, req.IdempotencyKey)
	if err != nil {
		if isClientError(err) {
			attempt.Status = journal.StatusFailed
			attempt.Message = api.ServerMessage(err)
			p.update(ctx, attempt)
		}
		return nil, fmt.Errorf("failed to initiate payment: %w", err)
	}

	attempt.Status = journal.StatusInitiated
	attempt.PaymentID = initiation.PaymentID
	p.update(ctx, attempt)

	p.logger.InfoContext(ctx, "payment initiated",
		"key", attempt.Key,
		"paymentId", initiation.PaymentID,
		"bookingId", req.BookingID,
		"amount", req.Amount,
	)
	return &Step{Initiation: initiation}, nil
}

// Process runs the second phase for an initiated payment
func (p *Processor) Process(ctx context.Context, req Request, initiation models.PaymentInitiation) (*Outcome, error) {
	attempt, err := p.journal.Get(ctx, req.IdempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read payment journal: %w", err)
	}

	result, err := p.gateway.ProcessPayment(ctx, models.ProcessPaymentRequest{
		PaymentID:         initiation.PaymentID,
		PaymentMethod:     req.Method,
		CardDetails:       req.Details.Card,
		UPIDetails:        req.Details.UPI,
		NetbankingDetails: req.Details.Netbanking,
	})
	if err != nil {
		// The backend may already have settled it, e.g. "Payment already processed"
		if isClientError(err) {
			status, statusErr := p.gateway.PaymentStatus(ctx, initiation.PaymentID)
			if statusErr == nil && status.Status != models.PaymentStatusPending {
				outcome := p.settle(ctx, attempt, status)
				outcome.Initiation = initiation
				return outcome, nil
			}
		}
		p.logger.WarnContext(ctx, "payment left initiated", "key", attempt.Key, "paymentId", initiation.PaymentID, "error", err)
		return nil, fmt.Errorf("failed to process payment %s: %w", initiation.PaymentID, err)
	}

	attempt.TransactionID = result.TransactionID
	attempt.Message = result.Message
	if result.Success {
		attempt.Status = journal.StatusCompleted
	} else {
		attempt.Status = journal.StatusFailed
	}
	p.update(ctx, attempt)

	p.logger.InfoContext(ctx, "payment processed",
		"key", attempt.Key,
		"paymentId", initiation.PaymentID,
		"success", result.Success,
		"message", result.Message,
	)
	return &Outcome{Initiation: initiation, Result: *result}, nil
}

// Status passes through to the backend
func (p *Processor) Status(ctx context.Context, paymentID string) (*models.PaymentStatus, error) {
	return p.gateway.PaymentStatus(ctx, paymentID)
}

// Refund requests a refund of a completed payment
func (p *Processor) Refund(ctx context.Context, paymentID string, amount float64, reason string) (*models.Refund, error) {
	refund, err := p.gateway.Refund(ctx, models.RefundRequest{
		PaymentID: paymentID,
		Amount:    amount,
		Reason:    reason,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to refund payment %s: %w", paymentID, err)
	}
	return refund, nil
}

func (p *Processor) loadOrCreate(ctx context.Context, req Request) (*journal.Attempt, error) {
	attempt, err := p.journal.Get(ctx, req.IdempotencyKey)
	if err == nil {
		return attempt, nil
	}
	if !errors.Is(err, journal.ErrNotFound) {
		return nil, fmt.Errorf("failed to read payment journal: %w", err)
	}

	attempt = &journal.Attempt{
		Key:       req.IdempotencyKey,
		BookingID: req.BookingID,
		Method:    req.Method,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Status:    journal.StatusStarted,
	}
	if err := p.journal.Create(ctx, attempt); err != nil {
		if errors.Is(err, journal.ErrAlreadyExists) {
			// Lost a race with a concurrent submit of the same key
			return p.journal.Get(ctx, req.IdempotencyKey)
		}
		return nil, fmt.Errorf("failed to record payment attempt: %w", err)
	}
	return attempt, nil
}

// settle closes the attempt from the backend's payment status
func (p *Processor) settle(ctx context.Context, attempt *journal.Attempt, status *models.PaymentStatus) *Outcome {
	attempt.TransactionID = status.TransactionID
	if status.Status == models.PaymentStatusCompleted {
		attempt.Status = journal.StatusCompleted
		attempt.Message = "Payment successful"
	} else {
		attempt.Status = journal.StatusFailed
		attempt.Message = status.FailureReason
	}
	p.update(ctx, attempt)

	p.logger.InfoContext(ctx, "payment settled from status", "key", attempt.Key, "paymentId", attempt.PaymentID, "status", status.Status)
	return outcomeFromAttempt(attempt)
}

// update persists attempt progress. A failed write is logged, not returned:
// the payment itself has already moved on, and the status check on the next
// resubmit repairs the journal.
func (p *Processor) update(ctx context.Context, attempt *journal.Attempt) {
	if err := p.journal.Update(ctx, attempt); err != nil {
		p.logger.ErrorContext(ctx, "failed to update payment journal", "key", attempt.Key, "status", attempt.Status, "error", err)
	}
}

func initiationFromAttempt(a *journal.Attempt) *models.PaymentInitiation {
	return &models.PaymentInitiation{
		PaymentID:     a.PaymentID,
		Status:        models.PaymentStatusPending,
		Amount:        a.Amount,
		Currency:      a.Currency,
		PaymentMethod: a.Method,
	}
}

func outcomeFromAttempt(a *journal.Attempt) *Outcome {
	status := models.PaymentStatusFailed
	if a.Status == journal.StatusCompleted {
		status = models.PaymentStatusCompleted
	}
	return &Outcome{
		Initiation: models.PaymentInitiation{
			PaymentID:     a.PaymentID,
			Status:        models.PaymentStatusPending,
			Amount:        a.Amount,
			Currency:      a.Currency,
			PaymentMethod: a.Method,
		},
		Result: models.PaymentResult{
			Success:        a.Status == journal.StatusCompleted,
			PaymentID:      a.PaymentID,
			TransactionID:  a.TransactionID,
			Status:         status,
			Message:        a.Message,
			Amount:         a.Amount,
			Currency:       a.Currency,
			RetryAvailable: a.Status == journal.StatusFailed,
		},
		Replayed: true,
	}
}

func isClientError(err error) bool {
	var apiErr *api.Error
	return errors.As(err, &apiErr) &&
		apiErr.StatusCode >= http.StatusBadRequest &&
		apiErr.StatusCode < http.StatusInternalServerError
}
