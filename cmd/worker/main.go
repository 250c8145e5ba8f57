package main

import (
	"context"
	"os"

	"go.temporal.io/sdk/worker"

	"github.com/cx-tal-miterani/flight-checkout/internal/activities"
	"github.com/cx-tal-miterani/flight-checkout/internal/app"
	"github.com/cx-tal-miterani/flight-checkout/internal/config"
	"github.com/cx-tal-miterani/flight-checkout/internal/logging"
	"github.com/cx-tal-miterani/flight-checkout/internal/payment"
	"github.com/cx-tal-miterani/flight-checkout/internal/workflows"
)

func main() {
	ctx := context.Background()

	cfg := config.Load()
	logger := logging.Init(cfg.LogLevel, cfg.LogFormat)

	closers := app.Closers{}
	defer closers.Close(logger)

	fail := func(msg string, err error) {
		logger.Error(msg, "error", err)
		closers.Close(logger)
		os.Exit(1)
	}

	if cfg.JournalBackend == config.JournalBackendMemory {
		logger.Warn("payment journal is in memory; attempts will not survive a worker restart")
	}
	j, err := app.OpenJournal(ctx, cfg, closers, logger)
	if err != nil {
		fail("failed to open payment journal", err)
	}
	processor := payment.NewProcessor(app.NewAPIClient(cfg, logger), j, logger)

	c, err := app.DialTemporal(cfg, closers, logger)
	if err != nil {
		fail("failed to connect to Temporal", err)
	}

	// Create worker
	w := worker.New(c, cfg.TaskQueue, worker.Options{})

	w.RegisterWorkflow(workflows.PaymentWorkflow)
	w.RegisterActivity(activities.NewActivities(processor))

	logger.Info("starting payment worker", "taskQueue", cfg.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		fail("worker failed", err)
	}
}
