package app

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"golang.org/x/time/rate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cx-tal-miterani/flight-checkout/internal/api"
	"github.com/cx-tal-miterani/flight-checkout/internal/config"
	"github.com/cx-tal-miterani/flight-checkout/internal/handoff"
	"github.com/cx-tal-miterani/flight-checkout/internal/journal"
	"github.com/cx-tal-miterani/flight-checkout/internal/logging"
	"github.com/cx-tal-miterani/flight-checkout/internal/payment"
)

func TestClosers_Close(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New("info", "text", &buf)

	var order []string
	closers := Closers{
		"redis":    func() error { order = append(order, "redis"); return errors.New("connection reset") },
		"database": func() error { order = append(order, "database"); return nil },
	}

	closers.Close(logger)

	assert.Equal(t, []string{"database", "redis"}, order)
	assert.Contains(t, buf.String(), "resource=redis")
	assert.Contains(t, buf.String(), "connection reset")
}

func TestOpenMemoryBackends(t *testing.T) {
	cfg := config.Load()
	cfg.JournalBackend = config.JournalBackendMemory
	cfg.HandoffBackend = config.HandoffBackendMemory
	cfg.PaymentExecutor = config.ExecutorDirect
	logger := logging.New("error", "text", &bytes.Buffer{})
	closers := Closers{}

	j, err := OpenJournal(context.Background(), cfg, closers, logger)
	require.NoError(t, err)
	assert.IsType(t, &journal.MemoryJournal{}, j)

	store, err := OpenHandoffStore(cfg, closers)
	require.NoError(t, err)
	assert.IsType(t, &handoff.MemoryStore{}, store)

	processor := payment.NewProcessor(NewAPIClient(cfg, logger), j, logger)
	executor, err := NewPaymentExecutor(cfg, processor, closers, logger)
	require.NoError(t, err)
	assert.Same(t, processor, executor)

	assert.Empty(t, closers)
}

func TestUnknownBackends(t *testing.T) {
	cfg := config.Config{JournalBackend: "sqlite", HandoffBackend: "memcached", PaymentExecutor: "queue"}
	logger := logging.New("error", "text", &bytes.Buffer{})

	_, err := OpenJournal(context.Background(), cfg, Closers{}, logger)
	assert.ErrorContains(t, err, `unknown journal backend "sqlite"`)

	_, err = OpenHandoffStore(cfg, Closers{})
	assert.ErrorContains(t, err, `unknown handoff backend "memcached"`)

	_, err = NewPaymentExecutor(cfg, nil, Closers{}, logger)
	assert.ErrorContains(t, err, `unknown payment executor "queue"`)
}

func TestNewLimiter_InitiateBucket(t *testing.T) {
	cfg := config.Config{
		APIRateLimit:      10,
		APIRateBurst:      5,
		InitiateRateLimit: 0.5,
		InitiateRateBurst: 1,
	}

	limiter := NewLimiter(cfg)

	initiate := limiter.GetLimiter(api.EndpointInitiatePayment)
	assert.Equal(t, rate.Limit(0.5), initiate.Limit())
	assert.Equal(t, 1, initiate.Burst())

	search := limiter.GetLimiter("search")
	assert.Equal(t, rate.Limit(10), search.Limit())
	assert.Equal(t, 5, search.Burst())
}
