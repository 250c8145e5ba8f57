package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cx-tal-miterani/flight-checkout/internal/app"
	"github.com/cx-tal-miterani/flight-checkout/internal/checkout"
	"github.com/cx-tal-miterani/flight-checkout/internal/config"
	"github.com/cx-tal-miterani/flight-checkout/internal/handlers"
	"github.com/cx-tal-miterani/flight-checkout/internal/logging"
	"github.com/cx-tal-miterani/flight-checkout/internal/payment"
	"github.com/cx-tal-miterani/flight-checkout/internal/router"
	"github.com/cx-tal-miterani/flight-checkout/internal/service"
	"github.com/cx-tal-miterani/flight-checkout/internal/websocket"
)

func main() {
	cfg := config.Load()
	logger := logging.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	closers := app.Closers{}
	defer closers.Close(logger)

	fail := func(msg string, err error) {
		logger.Error(msg, "error", err)
		closers.Close(logger)
		os.Exit(1)
	}

	client := app.NewAPIClient(cfg, logger)

	j, err := app.OpenJournal(ctx, cfg, closers, logger)
	if err != nil {
		fail("failed to open payment journal", err)
	}
	handoffs, err := app.OpenHandoffStore(cfg, closers)
	if err != nil {
		fail("failed to open handoff store", err)
	}
	processor := payment.NewProcessor(client, j, logger)
	executor, err := app.NewPaymentExecutor(cfg, processor, closers, logger)
	if err != nil {
		fail("failed to set up payments", err)
	}

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	controller := checkout.NewController(
		service.NewCachedBackend(client, cfg.CatalogTTL),
		executor,
		checkout.WithHandoffStore(handoffs),
		checkout.WithLogger(logger),
		checkout.WithNotifier(checkout.Notifiers(checkout.LogNotifier{Logger: logger}, hub)),
	)
	checkoutService := service.NewCheckoutService(controller, logger, service.WithSessionTTL(cfg.SessionTTL))
	if sweeper, ok := checkoutService.(service.Sweeper); ok {
		go service.RunSweeper(ctx, sweeper, cfg.SessionTTL/2, logger)
	}
	h := handlers.NewHandler(checkoutService)

	srv := &http.Server{
		Addr:         ":" + cfg.StorefrontPort,
		Handler:      router.SetupRouter(h, hub),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.APITimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("storefront starting",
			"port", cfg.StorefrontPort,
			"api", cfg.APIBaseURL,
			"executor", cfg.PaymentExecutor,
			"journal", cfg.JournalBackend,
			"handoff", cfg.HandoffBackend,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fail("server failed", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down storefront")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	cancel()

	logger.Info("storefront stopped")
}
