package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/Alia5/InputRedirect/gamepad"
	"github.com/Alia5/InputRedirect/internal/log"
	"github.com/Alia5/InputRedirect/internal/redirect"
	"github.com/Alia5/InputRedirect/internal/status"
)

type Run struct {
	Session  redirect.Config `embed:""`
	Joystick Joystick        `embed:"" prefix:"joystick."`
	Status   bool            `help:"Show a live status line (terminal only)" env:"INPUTREDIRECT_STATUS"`
}

// Run is called by Kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := notifyContext(logger)
	defer stop()

	src, err := r.Joystick.Open(logger)
	if err != nil {
		return err
	}
	defer src.Close()

	return r.Redirect(ctx, src, logger, rawLogger)
}

// Redirect runs one session on src until ctx is done or the worker fails.
func (r *Run) Redirect(ctx context.Context, src gamepad.Source, logger *slog.Logger, rawLogger log.RawLogger) error {
	cfg := r.Session

	var line *status.Line
	var snaps chan redirect.Snapshot
	if r.Status {
		if status.IsTerminal(os.Stdout) {
			snaps = make(chan redirect.Snapshot, 16)
			cfg.Snapshots = snaps
			line = status.New(os.Stdout)
		} else {
			logger.Warn("Status line needs a terminal, disabled")
		}
	}

	sess, err := redirect.Start(ctx, src, cfg, logger, rawLogger)
	if err != nil {
		if errors.Is(err, redirect.ErrNoDevice) {
			logger.Error("No input device connected. Plug in a controller and try again.")
		}
		return err
	}

	logger.Info("Starting input redirection",
		"device", sess.Device(),
		"target", cfg.Target,
		"port", cfg.Port,
		"policy", cfg.Policy,
		"deadzone_left", cfg.Deadzone.Left,
		"deadzone_right", cfg.Deadzone.Right,
		"invert", invertFlags(cfg.Invert),
		"local", sess.LocalAddr(),
	)
	if cfg.Target == "" {
		logger.Warn("No target set, use --target with the IP address of the 3DS")
	}

	lineDone := make(chan struct{})
	lineCtx, stopLine := context.WithCancel(ctx)
	defer stopLine()
	if line != nil {
		go func() {
			defer close(lineDone)
			line.Run(lineCtx, snaps)
		}()
	} else {
		close(lineDone)
	}

	<-sess.Done()
	err = sess.Wait()
	stopLine()
	<-lineDone

	if err != nil {
		return err
	}
	logger.Info("Input redirection stopped")
	return nil
}

func invertFlags(c redirect.InvertConfig) string {
	var out []byte
	for _, f := range []struct {
		name string
		on   bool
	}{{"lx", c.LX}, {"ly", c.LY}, {"rx", c.RX}, {"ry", c.RY}} {
		if !f.on {
			continue
		}
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, f.name...)
	}
	if len(out) == 0 {
		return "none"
	}
	return string(out)
}
