package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cx-tal-miterani/flight-checkout/internal/config"
	"github.com/cx-tal-miterani/flight-checkout/internal/fakeapi"
	"github.com/cx-tal-miterani/flight-checkout/internal/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.Init(cfg.LogLevel, cfg.LogFormat)

	srv := fakeapi.New(fakeapi.WithLogger(logger))

	go func() {
		logger.Info("fake backend starting", "port", cfg.FakeAPIPort)
		if err := srv.Start(":" + cfg.FakeAPIPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("fake backend failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down fake backend")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("fake backend forced to shutdown", "error", err)
		os.Exit(1)
	}
}
