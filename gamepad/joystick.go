package gamepad

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/0xcafed00d/joystick"
)

// JoystickConfig controls the joystick backed Source.
type JoystickConfig struct {
	// MaxSlots is the number of joystick slots probed (js0..jsN-1 on Linux).
	MaxSlots int
	// PollInterval is the delay between two state reads while Next waits.
	PollInterval time.Duration
	// RescanInterval is the delay between two probes for hot-plugged devices.
	RescanInterval time.Duration
	// Mapping translates raw indices. Nil selects DefaultMapping.
	Mapping *Mapping
	// Open opens one slot. Nil selects joystick.Open.
	Open func(slot int) (joystick.Joystick, error)
}

func defaultJoystickConfig() JoystickConfig {
	return JoystickConfig{
		MaxSlots:       4,
		PollInterval:   4 * time.Millisecond,
		RescanInterval: time.Second,
	}
}

type trackedJoystick struct {
	info     DeviceInfo
	slot     int
	js       joystick.Joystick
	axes     []int
	buttons  uint32
	triggers map[int]bool
	hat      [2]int
}

// JoystickSource implements Source on top of github.com/0xcafed00d/joystick.
//
// The library exposes polled state only, so JoystickSource diffs successive
// reads into discrete events. All work happens inside Next on the caller's
// goroutine; the source must not be shared between goroutines.
type JoystickSource struct {
	cfg        JoystickConfig
	logger     *slog.Logger
	devices    map[int]*trackedJoystick
	pending    []Event
	nextID     DeviceID
	nextRescan time.Time
	closed     bool
	now        func() time.Time
}

// OpenJoystickSource probes all slots once and returns the source.
// Devices found by this first probe are enumerated but not announced
// with Connected events.
func OpenJoystickSource(cfg *JoystickConfig, logger *slog.Logger) *JoystickSource {
	c := defaultJoystickConfig()
	if cfg != nil {
		if cfg.MaxSlots > 0 {
			c.MaxSlots = cfg.MaxSlots
		}
		if cfg.PollInterval > 0 {
			c.PollInterval = cfg.PollInterval
		}
		if cfg.RescanInterval > 0 {
			c.RescanInterval = cfg.RescanInterval
		}
		c.Mapping = cfg.Mapping
		c.Open = cfg.Open
	}
	if c.Mapping == nil {
		c.Mapping, _ = LookupMapping(DefaultMapping)
	}
	if c.Open == nil {
		c.Open = joystick.Open
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &JoystickSource{
		cfg:     c,
		logger:  logger,
		devices: make(map[int]*trackedJoystick),
		nextID:  1,
		now:     time.Now,
	}
	s.rescan(false)
	return s
}

// Devices returns the currently enumerated devices ordered by slot.
func (s *JoystickSource) Devices() []DeviceInfo {
	slots := make([]int, 0, len(s.devices))
	for slot := range s.devices {
		slots = append(slots, slot)
	}
	sort.Ints(slots)
	out := make([]DeviceInfo, 0, len(slots))
	for _, slot := range slots {
		out = append(out, s.devices[slot].info)
	}
	return out
}

// Next implements Source.
func (s *JoystickSource) Next(ctx context.Context, timeout time.Duration) (Event, bool, error) {
	if s.closed {
		return Event{}, false, ErrClosed
	}
	deadline := s.now().Add(timeout)
	for {
		if len(s.pending) > 0 {
			ev := s.pending[0]
			s.pending = s.pending[1:]
			return ev, true, nil
		}
		if err := ctx.Err(); err != nil {
			return Event{}, false, err
		}

		now := s.now()
		if !now.Before(s.nextRescan) {
			s.rescan(true)
		}
		s.poll()
		if len(s.pending) > 0 {
			continue
		}

		remaining := deadline.Sub(now)
		if remaining <= 0 {
			return Event{}, false, nil
		}
		wait := s.cfg.PollInterval
		if remaining < wait {
			wait = remaining
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Event{}, false, ctx.Err()
		case <-timer.C:
		}
	}
}

// Close releases every open joystick. Next returns ErrClosed afterwards.
func (s *JoystickSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	for slot, d := range s.devices {
		d.js.Close()
		delete(s.devices, slot)
	}
	s.pending = nil
	return nil
}

func (s *JoystickSource) rescan(announce bool) {
	s.nextRescan = s.now().Add(s.cfg.RescanInterval)
	for slot := 0; slot < s.cfg.MaxSlots; slot++ {
		if _, ok := s.devices[slot]; ok {
			continue
		}
		js, err := s.cfg.Open(slot)
		if err != nil {
			continue
		}
		d := &trackedJoystick{
			info:     DeviceInfo{ID: s.nextID, Name: deviceName(js)},
			slot:     slot,
			js:       js,
			axes:     make([]int, js.AxisCount()),
			triggers: make(map[int]bool),
		}
		s.nextID++
		s.devices[slot] = d
		s.logger.Info("Joystick connected",
			"name", d.info.Name, "id", d.info.ID, "slot", slot,
			"axes", js.AxisCount(), "buttons", js.ButtonCount(), "mapping", s.cfg.Mapping.Name)
		if announce {
			s.pending = append(s.pending, Event{Kind: Connected, Device: d.info.ID})
		}
	}
}

// deviceName strips the NUL padding of the Linux JSIOCGNAME buffer.
func deviceName(js joystick.Joystick) string {
	return strings.TrimSpace(strings.TrimRight(js.Name(), "\x00"))
}

func (s *JoystickSource) poll() {
	slots := make([]int, 0, len(s.devices))
	for slot := range s.devices {
		slots = append(slots, slot)
	}
	sort.Ints(slots)

	for _, slot := range slots {
		d := s.devices[slot]
		state, err := d.js.Read()
		if err != nil {
			s.logger.Info("Joystick disconnected", "name", d.info.Name, "id", d.info.ID, "error", err)
			d.js.Close()
			delete(s.devices, slot)
			s.pending = append(s.pending, Event{Kind: Disconnected, Device: d.info.ID})
			continue
		}
		s.diff(d, state)
	}
}

func (s *JoystickSource) diff(d *trackedJoystick, state joystick.State) {
	for _, am := range s.cfg.Mapping.Axes {
		if am.Index >= len(state.AxisData) || am.Index >= len(d.axes) {
			continue
		}
		raw := state.AxisData[am.Index]
		if raw == d.axes[am.Index] {
			continue
		}
		d.axes[am.Index] = raw
		if am.Invert {
			raw = -raw
		}

		switch am.Role {
		case RoleStick:
			s.pending = append(s.pending, Event{
				Kind:   AxisChanged,
				Device: d.info.ID,
				Axis:   am.Channel,
				Value:  NormalizeAxis(raw),
			})
		case RoleTrigger:
			v := NormalizeTrigger(raw, am.RawMin, am.RawMax)
			held := d.triggers[am.Index]
			switch {
			case !held && v >= TriggerPressThreshold:
				d.triggers[am.Index] = true
				s.pushButton(d, am.Trigger, true)
			case held && v <= TriggerReleaseThreshold:
				d.triggers[am.Index] = false
				s.pushButton(d, am.Trigger, false)
			}
		case RoleHatX:
			s.hat(d, 0, NormalizeAxis(raw), DPadLeft, DPadRight)
		case RoleHatY:
			// joydev hat Y is negative when pressed up
			s.hat(d, 1, NormalizeAxis(raw), DPadUp, DPadDown)
		}
	}

	changed := state.Buttons ^ d.buttons
	for i := 0; i < 32 && changed != 0; i++ {
		bit := uint32(1) << i
		if changed&bit == 0 {
			continue
		}
		changed &^= bit
		b, ok := s.cfg.Mapping.ButtonFor(i)
		if !ok {
			continue
		}
		s.pushButton(d, b, state.Buttons&bit != 0)
	}
	d.buttons = state.Buttons
}

func (s *JoystickSource) hat(d *trackedJoystick, idx int, v float64, neg, pos Button) {
	dir := 0
	if v <= -hatThreshold {
		dir = -1
	} else if v >= hatThreshold {
		dir = 1
	}
	prev := d.hat[idx]
	if dir == prev {
		return
	}
	d.hat[idx] = dir
	switch prev {
	case -1:
		s.pushButton(d, neg, false)
	case 1:
		s.pushButton(d, pos, false)
	}
	switch dir {
	case -1:
		s.pushButton(d, neg, true)
	case 1:
		s.pushButton(d, pos, true)
	}
}

func (s *JoystickSource) pushButton(d *trackedJoystick, b Button, pressed bool) {
	kind := ButtonReleased
	if pressed {
		kind = ButtonPressed
	}
	s.pending = append(s.pending, Event{Kind: kind, Device: d.info.ID, Button: b})
}
