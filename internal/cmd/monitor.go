package cmd

import (
	"log/slog"

	"github.com/Alia5/InputRedirect/internal/log"
	"github.com/Alia5/InputRedirect/internal/monitor"
)

type Monitor struct {
	Listen string `help:"Address to receive frames on" default:":4950" env:"INPUTREDIRECT_MONITOR_LISTEN"`
}

// Run is called by Kong when the monitor command is executed.
func (m *Monitor) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := notifyContext(logger)
	defer stop()

	logger.Info("Starting frame monitor", "listen", m.Listen)
	srv := monitor.New(m.Listen, logger, rawLogger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		_ = srv.Close()
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}
