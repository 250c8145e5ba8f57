package journal

import (
	"context"
	"testing"
	"time"

	"github.com/cx-tal-miterani/flight-checkout/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAttempt(key string) *Attempt {
	return &Attempt{
		Key:       key,
		BookingID: "PNR123",
		Method:    models.PaymentMethodCreditCard,
		Amount:    5400,
		Currency:  models.CurrencyINR,
		Status:    StatusStarted,
	}
}

func TestMemoryJournal_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	j := NewMemoryJournal()

	require.NoError(t, j.Create(ctx, newAttempt("k1")))

	got, err := j.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "PNR123", got.BookingID)
	assert.Equal(t, StatusStarted, got.Status)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestMemoryJournal_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	j := NewMemoryJournal()

	require.NoError(t, j.Create(ctx, newAttempt("k1")))
	assert.ErrorIs(t, j.Create(ctx, newAttempt("k1")), ErrAlreadyExists)
}

func TestMemoryJournal_GetNotFound(t *testing.T) {
	_, err := NewMemoryJournal().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryJournal_Update(t *testing.T) {
	ctx := context.Background()
	j := NewMemoryJournal()
	a := newAttempt("k1")
	require.NoError(t, j.Create(ctx, a))

	a.Status = StatusInitiated
	a.PaymentID = "PAY1"
	require.NoError(t, j.Update(ctx, a))

	got, err := j.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, StatusInitiated, got.Status)
	assert.Equal(t, "PAY1", got.PaymentID)

	assert.ErrorIs(t, j.Update(ctx, newAttempt("missing")), ErrNotFound)
}

func TestMemoryJournal_ListOpen(t *testing.T) {
	ctx := context.Background()
	j := NewMemoryJournal()
	now := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	j.now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}

	for _, tc := range []struct {
		key    string
		status Status
	}{
		{"started", StatusStarted},
		{"initiated", StatusInitiated},
		{"completed", StatusCompleted},
		{"failed", StatusFailed},
	} {
		a := newAttempt(tc.key)
		a.Status = tc.status
		require.NoError(t, j.Create(ctx, a))
	}

	open, err := j.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, "started", open[0].Key)
	assert.Equal(t, "initiated", open[1].Key)
}
