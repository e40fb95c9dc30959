package redirect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"runtime/debug"

	"github.com/Alia5/InputRedirect/gamepad"
	"github.com/Alia5/InputRedirect/internal/log"
)

var (
	// ErrNoDevice is returned by Start when the source lists no device.
	ErrNoDevice = errors.New("no input device found")
	// ErrWorkerPanic wraps a panic recovered from the worker.
	ErrWorkerPanic = errors.New("worker panicked")
)

// Session is one running redirection: a worker goroutine plus the socket it owns.
type Session struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
	sender *Sender
	worker *Worker
	device gamepad.DeviceInfo
	logger *slog.Logger
}

// PickDevice returns devices[index], or the first device when index is out of range.
func PickDevice(devices []gamepad.DeviceInfo, index int) (gamepad.DeviceInfo, error) {
	if len(devices) == 0 {
		return gamepad.DeviceInfo{}, ErrNoDevice
	}
	if index >= 0 && index < len(devices) {
		return devices[index], nil
	}
	return devices[0], nil
}

// Start binds the socket, picks the startup device and runs the worker in
// its own goroutine. The source is not closed by the session.
func Start(ctx context.Context, src gamepad.Source, cfg Config, logger *slog.Logger, rawLogger log.RawLogger) (*Session, error) {
	dev, err := PickDevice(src.Devices(), cfg.Device)
	if err != nil {
		return nil, err
	}
	if cfg.Device >= len(src.Devices()) {
		logger.Debug("Requested device index not present, using first", "requested", cfg.Device, "using", dev)
	}

	sender, err := NewSender(SenderConfig{
		Target:           cfg.Target,
		Port:             cfg.Port,
		ThrottleInterval: cfg.ThrottleInterval,
		Encoder:          cfg.Encoder(),
	}, logger, rawLogger)
	if err != nil {
		return nil, err
	}

	worker := NewWorker(src, sender, WorkerConfig{
		Calibration: cfg.Calibrations(logger),
		Policy:      cfg.Policy,
		WaitTimeout: cfg.WaitTimeout,
		Snapshots:   cfg.Snapshots,
	}, &dev, logger)

	wctx, cancel := context.WithCancel(ctx)
	s := &Session{
		cancel: cancel,
		done:   make(chan struct{}),
		sender: sender,
		worker: worker,
		device: dev,
		logger: logger,
	}
	go s.run(wctx)
	return s, nil
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Worker panicked", "panic", r, "stack", string(debug.Stack()))
			s.err = fmt.Errorf("%w: %v", ErrWorkerPanic, r)
		}
	}()
	s.err = s.worker.Run(ctx)
}

// Device returns the device the session started with.
func (s *Session) Device() gamepad.DeviceInfo { return s.device }

// LocalAddr returns the bound local address of the outbound socket.
func (s *Session) LocalAddr() string { return s.sender.LocalAddr().String() }

// Done is closed once the worker has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Stop requests the worker to exit. It does not wait.
func (s *Session) Stop() { s.cancel() }

// Wait blocks until the worker exits, closes the socket and returns the
// worker's error. A worker panic is returned as ErrWorkerPanic.
func (s *Session) Wait() error {
	<-s.done
	if err := s.sender.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Debug("Closing sender socket", "error", err)
	}
	return s.err
}
