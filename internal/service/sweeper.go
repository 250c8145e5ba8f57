package service

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper drops expired sessions
type Sweeper interface {
	Sweep() int
}

// RunSweeper calls Sweep every interval until ctx is done
func RunSweeper(ctx context.Context, sweeper Sweeper, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sweeper.Sweep(); n > 0 {
				logger.Info("expired idle sessions", "count", n)
			}
		}
	}
}
