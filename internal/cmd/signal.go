package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// notifyContext is cancelled by the first interrupt. Later interrupts are
// only logged while shutdown is in progress.
func notifyContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		stopping := false
		for {
			select {
			case <-done:
				return
			case sig := <-sigCh:
				if stopping {
					logger.Info("Already stopping, please wait")
					continue
				}
				stopping = true
				logger.Info("Stopping", "signal", sig.String())
				cancel()
			}
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		close(done)
		cancel()
	}
}
