// Package app wires the checkout components from configuration. The
// storefront, the CLI and the payment worker all build their dependencies here.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.temporal.io/sdk/client"

	"github.com/cx-tal-miterani/flight-checkout/internal/api"
	"github.com/cx-tal-miterani/flight-checkout/internal/config"
	"github.com/cx-tal-miterani/flight-checkout/internal/handoff"
	"github.com/cx-tal-miterani/flight-checkout/internal/journal"
	"github.com/cx-tal-miterani/flight-checkout/internal/payment"
	"github.com/cx-tal-miterani/flight-checkout/internal/ratelimit"
	"github.com/cx-tal-miterani/flight-checkout/internal/workflows"
)

// Closers collects named shutdown hooks
type Closers map[string]func() error

// Close runs every hook and logs the ones that fail
func (c Closers) Close(logger *slog.Logger) {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := c[name](); err != nil {
			logger.Error("failed to close", "resource", name, "error", err)
		}
	}
}

// NewLimiter paces every endpoint at the configured default rate, with a
// tighter bucket for payment initiation
func NewLimiter(cfg config.Config) *ratelimit.EndpointLimiter {
	limiter := ratelimit.NewEndpointLimiter(ratelimit.Config{
		RequestsPerSecond: cfg.APIRateLimit,
		BurstSize:         cfg.APIRateBurst,
	})
	limiter.SetEndpointLimit(api.EndpointInitiatePayment, cfg.InitiateRateLimit, cfg.InitiateRateBurst)
	return limiter
}

// NewAPIClient builds the backend client with the configured timeout and
// per-endpoint pacing
func NewAPIClient(cfg config.Config, logger *slog.Logger) *api.Client {
	return api.NewClient(cfg.APIBaseURL,
		api.WithTimeout(cfg.APITimeout),
		api.WithLimiter(NewLimiter(cfg)),
		api.WithLogger(logger),
	)
}

// OpenJournal returns the payment journal selected by JOURNAL_BACKEND. The
// postgres journal creates its table on first use.
func OpenJournal(ctx context.Context, cfg config.Config, closers Closers, logger *slog.Logger) (journal.Journal, error) {
	switch cfg.JournalBackend {
	case config.JournalBackendMemory:
		return journal.NewMemoryJournal(), nil
	case config.JournalBackendPostgres:
		logger.Info("connecting to database")
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		closers["database"] = func() error {
			pool.Close()
			return nil
		}

		j := journal.NewPostgresJournal(pool)
		if err := j.Migrate(ctx); err != nil {
			return nil, err
		}
		logger.Info("connected to database")
		return j, nil
	}
	return nil, fmt.Errorf("unknown journal backend %q", cfg.JournalBackend)
}

// OpenHandoffStore returns the booking handoff store selected by HANDOFF_BACKEND
func OpenHandoffStore(cfg config.Config, closers Closers) (handoff.Store, error) {
	switch cfg.HandoffBackend {
	case config.HandoffBackendMemory:
		return handoff.NewMemoryStore(), nil
	case config.HandoffBackendRedis:
		store, err := handoff.NewRedisStore(handoff.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.HandoffTTL,
		})
		if err != nil {
			return nil, err
		}
		closers["redis"] = store.Close
		return store, nil
	}
	return nil, fmt.Errorf("unknown handoff backend %q", cfg.HandoffBackend)
}

// DialTemporal connects to the Temporal frontend
func DialTemporal(cfg config.Config, closers Closers, logger *slog.Logger) (client.Client, error) {
	logger.Info("connecting to Temporal", "host", cfg.TemporalHost)
	c, err := client.Dial(client.Options{
		HostPort: cfg.TemporalHost,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Temporal: %w", err)
	}
	closers["temporal"] = func() error {
		c.Close()
		return nil
	}
	logger.Info("connected to Temporal")
	return c, nil
}

// NewPaymentExecutor returns the processor itself, or a Temporal executor
// that runs the same two phases as a workflow on the payment worker
func NewPaymentExecutor(cfg config.Config, processor *payment.Processor, closers Closers, logger *slog.Logger) (payment.Executor, error) {
	switch cfg.PaymentExecutor {
	case config.ExecutorDirect:
		return processor, nil
	case config.ExecutorTemporal:
		c, err := DialTemporal(cfg, closers, logger)
		if err != nil {
			return nil, err
		}
		return workflows.NewExecutor(c, cfg.TaskQueue), nil
	}
	return nil, fmt.Errorf("unknown payment executor %q", cfg.PaymentExecutor)
}
