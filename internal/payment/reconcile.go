package payment

import (
	"context"
	"fmt"

	"github.com/cx-tal-miterani/flight-checkout/internal/journal"
	"github.com/cx-tal-miterani/flight-checkout/internal/models"
)

// ReconcileReport lists what a reconciliation pass found
type ReconcileReport struct {
	// Settled attempts were closed from the backend's payment status
	Settled []*journal.Attempt
	// Pending attempts hold an initiated payment nobody processed
	Pending []*journal.Attempt
	// Unknown attempts never got a payment id, so nothing can be checked
	Unknown []*journal.Attempt
	Failed  map[string]error
}

// Reconcile walks unsettled journal entries and closes the ones the backend
// has already decided. Initiated-but-unprocessed payments are reported as
// Pending so an operator, or a resubmit with the same key, can finish them.
func (p *Processor) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	open, err := p.journal.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list open payment attempts: %w", err)
	}

	report := &ReconcileReport{Failed: make(map[string]error)}
	for _, attempt := range open {
		if attempt.Status == journal.StatusStarted || attempt.PaymentID == "" {
			report.Unknown = append(report.Unknown, attempt)
			continue
		}

		status, err := p.gateway.PaymentStatus(ctx, attempt.PaymentID)
		if err != nil {
			report.Failed[attempt.Key] = err
			continue
		}
		if status.Status == models.PaymentStatusPending {
			report.Pending = append(report.Pending, attempt)
			continue
		}
		p.settle(ctx, attempt, status)
		report.Settled = append(report.Settled, attempt)
	}

	p.logger.InfoContext(ctx, "payment reconciliation finished",
		"open", len(open),
		"settled", len(report.Settled),
		"pending", len(report.Pending),
		"unknown", len(report.Unknown),
		"failed", len(report.Failed),
	)
	return report, nil
}
