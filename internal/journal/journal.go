package journal

import (
	"context"
	"errors"
	"time"

	"github.com/cx-tal-miterani/flight-checkout/internal/models"
)

var (
	ErrNotFound      = errors.New("payment attempt not found")
	ErrAlreadyExists = errors.New("payment attempt already exists")
)

// Status tracks how far a payment attempt got
type Status string

const (
	// StatusStarted: initiate was sent but no payment id came back
	StatusStarted Status = "started"
	// StatusInitiated: the backend issued a payment id, process not yet settled
	StatusInitiated Status = "initiated"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Attempt is one logical payment, keyed by its idempotency key
type Attempt struct {
	Key           string                 `json:"key"`
	BookingID     string                 `json:"bookingId"`
	Method        models.PaymentMethodID `json:"method"`
	Amount        float64                `json:"amount"`
	Currency      string                 `json:"currency"`
	PaymentID     string                 `json:"paymentId,omitempty"`
	TransactionID string                 `json:"transactionId,omitempty"`
	Status        Status                 `json:"status"`
	Message       string                 `json:"message,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
}

// Open reports whether the attempt has not reached a final outcome
func (a *Attempt) Open() bool {
	return a.Status == StatusStarted || a.Status == StatusInitiated
}

// Journal records payment attempts so an interrupted two-phase payment can be
// found and resumed
type Journal interface {
	Get(ctx context.Context, key string) (*Attempt, error)
	Create(ctx context.Context, a *Attempt) error
	Update(ctx context.Context, a *Attempt) error
	ListOpen(ctx context.Context) ([]*Attempt, error)
}
