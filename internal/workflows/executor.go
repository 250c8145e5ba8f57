package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/cx-tal-miterani/flight-checkout/internal/activities"
	"github.com/cx-tal-miterani/flight-checkout/internal/api"
	"github.com/cx-tal-miterani/flight-checkout/internal/payment"
)

// WorkflowID is the payment workflow id for an idempotency key. A submit
// whose workflow is still running joins it instead of starting another.
func WorkflowID(idempotencyKey string) string {
	return "payment-" + idempotencyKey
}

// Executor runs payments as PaymentWorkflow executions
type Executor struct {
	client    client.Client
	taskQueue string
}

func NewExecutor(c client.Client, taskQueue string) *Executor {
	return &Executor{client: c, taskQueue: taskQueue}
}

func (e *Executor) Execute(ctx context.Context, req payment.Request) (*payment.Outcome, error) {
	if req.IdempotencyKey == "" {
		return nil, errors.Join(payment.ErrInvalidRequest, errors.New("idempotency key is required"))
	}

	id := WorkflowID(req.IdempotencyKey)
	run, err := e.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        id,
		TaskQueue: e.taskQueue,
	}, PaymentWorkflow, req)
	if err != nil {
		return nil, fmt.Errorf("failed to start payment workflow %s: %w", id, err)
	}

	var outcome payment.Outcome
	if err := run.Get(ctx, &outcome); err != nil {
		return nil, workflowError(id, err)
	}
	return &outcome, nil
}

// workflowError turns a failed run back into the errors the direct processor
// returns, so callers classify both executors the same way
func workflowError(id string, err error) error {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		switch appErr.Type() {
		case activities.ErrTypeRejected:
			var apiErr api.Error
			if appErr.Details(&apiErr) == nil {
				return fmt.Errorf("payment workflow %s rejected: %w", id, &apiErr)
			}
		case activities.ErrTypeInvalidRequest:
			return fmt.Errorf("payment workflow %s: %w: %s", id, payment.ErrInvalidRequest, appErr.Error())
		}
	}
	return fmt.Errorf("payment workflow %s failed: %w", id, err)
}
