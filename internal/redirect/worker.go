package redirect

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Alia5/InputRedirect/device/n3ds"
	"github.com/Alia5/InputRedirect/gamepad"
	"github.com/Alia5/InputRedirect/internal/log"
)

// State is the lifecycle state of a Worker.
type State uint8

const (
	Running State = iota
	Stopped
)

func (s State) String() string {
	if s == Stopped {
		return "stopped"
	}
	return "running"
}

// Snapshot is a copy of the worker's view published after changes.
type Snapshot struct {
	State     n3ds.InputState
	Active    gamepad.DeviceInfo
	HasActive bool
	Sent      uint64
}

// WorkerConfig configures a Worker.
type WorkerConfig struct {
	Calibration n3ds.CalibrationSet
	Policy      Policy
	WaitTimeout time.Duration
	Snapshots   chan<- Snapshot
}

// Worker translates device events into frames.
//
// The device source, pad state and sender are owned by the goroutine
// running Run; the only input from other goroutines is ctx.
type Worker struct {
	source gamepad.Source
	sender *Sender
	cfg    WorkerConfig
	logger *slog.Logger

	state     n3ds.InputState
	active    gamepad.DeviceInfo
	hasActive bool
	phase     State
}

// NewWorker creates a worker tracking active, or no device when active is nil.
func NewWorker(source gamepad.Source, sender *Sender, cfg WorkerConfig, active *gamepad.DeviceInfo, logger *slog.Logger) *Worker {
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = 16 * time.Millisecond
	}
	if cfg.Policy == "" {
		cfg.Policy = PolicyThrottled
	}
	w := &Worker{
		source: source,
		sender: sender,
		cfg:    cfg,
		logger: logger,
		state:  n3ds.NewInputState(),
		phase:  Running,
	}
	if active != nil {
		w.active = *active
		w.hasActive = true
	}
	return w
}

// Run loops until ctx is done. Each iteration waits up to WaitTimeout for
// one event, sends immediately if the event changed the pad state, and
// then sends one heartbeat frame regardless.
//
// Run returns nil on cancellation and an error if the source fails.
func (w *Worker) Run(ctx context.Context) error {
	defer func() { w.phase = Stopped }()

	w.publish()
	for {
		ev, ok, err := w.source.Next(ctx, w.cfg.WaitTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("device source: %w", err)
		}

		if ok {
			w.logger.Log(ctx, log.LevelTrace, "Device event", "kind", ev.Kind, "device", ev.Device)
		}
		if ok && w.handle(ev) {
			w.sender.Send(&w.state, w.cfg.Policy)
			w.publish()
		}

		w.sender.Send(&w.state, PolicyUnconditional)

		if ctx.Err() != nil {
			return nil
		}
	}
}

// Phase returns Running until Run has returned.
func (w *Worker) Phase() State { return w.phase }

// PadState returns a copy of the current pad state.
func (w *Worker) PadState() n3ds.InputState { return w.state }

// Active returns the tracked device.
func (w *Worker) Active() (gamepad.DeviceInfo, bool) { return w.active, w.hasActive }

// handle applies ev and reports whether the pad state changed.
func (w *Worker) handle(ev gamepad.Event) bool {
	switch ev.Kind {
	case gamepad.Connected:
		if !w.hasActive {
			w.adopt(ev.Device)
		}
		return false

	case gamepad.Disconnected:
		if !w.hasActive || ev.Device != w.active.ID {
			return false
		}
		w.logger.Info("Active device disconnected", "device", w.active)
		w.hasActive = false
		w.active = gamepad.DeviceInfo{}
		for _, d := range w.source.Devices() {
			if d.ID != ev.Device {
				w.adopt(d.ID)
				break
			}
		}
		if !w.hasActive {
			w.logger.Info("No device left, waiting for a connection")
		}
		// drop anything still held by the lost device
		changed := w.state != n3ds.NewInputState()
		w.state = n3ds.NewInputState()
		if !changed {
			w.publish()
		}
		return changed
	}

	if !w.hasActive || ev.Device != w.active.ID {
		return false
	}

	switch ev.Kind {
	case gamepad.AxisChanged:
		return w.state.ApplyAxis(ev.Axis, ev.Value, w.cfg.Calibration.For(ev.Axis))
	case gamepad.ButtonPressed:
		w.state.UpdateButton(ev.Button, true)
		return true
	case gamepad.ButtonReleased:
		w.state.UpdateButton(ev.Button, false)
		return true
	}
	return false
}

func (w *Worker) adopt(id gamepad.DeviceID) {
	info := gamepad.DeviceInfo{ID: id}
	for _, d := range w.source.Devices() {
		if d.ID == id {
			info = d
			break
		}
	}
	w.active = info
	w.hasActive = true
	w.logger.Info("Active device set", "device", info)
	w.publish()
}

func (w *Worker) publish() {
	if w.cfg.Snapshots == nil {
		return
	}
	snap := Snapshot{State: w.state, Active: w.active, HasActive: w.hasActive, Sent: w.sender.Sent()}
	select {
	case w.cfg.Snapshots <- snap:
	default:
	}
}
