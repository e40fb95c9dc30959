package redirect

import (
	"log/slog"
	"math"
	"time"

	"github.com/Alia5/InputRedirect/device/n3ds"
	"github.com/Alia5/InputRedirect/gamepad"
)

// MaxDeadzone is the largest deadzone handed to the core.
const MaxDeadzone = 0.99

// Config is the resolved configuration of one redirection session.
type Config struct {
	Target           string         `help:"Receiver host (the 3DS IP address)" env:"INPUTREDIRECT_TARGET"`
	Port             int            `help:"Receiver UDP port" default:"4950" env:"INPUTREDIRECT_PORT"`
	Policy           Policy         `help:"Send policy for input changes" enum:"throttled,unconditional" default:"throttled" env:"INPUTREDIRECT_POLICY"`
	ThrottleInterval time.Duration  `help:"Minimum gap between throttled sends" default:"50ms" env:"INPUTREDIRECT_THROTTLE_INTERVAL"`
	WaitTimeout      time.Duration  `help:"Maximum wait for one device event; bounds shutdown latency" default:"16ms" env:"INPUTREDIRECT_WAIT_TIMEOUT"`
	CStickRotation   float64        `name:"cstick-rotation" help:"C-stick rotation factor; 1 sends unscaled axes" default:"0.7071067811865476" env:"INPUTREDIRECT_CSTICK_ROTATION"`
	Device           int            `help:"Index of the device to use at startup; -1 picks the first" default:"-1" env:"INPUTREDIRECT_DEVICE"`
	Deadzone         DeadzoneConfig `embed:"" prefix:"deadzone."`
	Invert           InvertConfig   `embed:"" prefix:"invert."`

	// Snapshots receives the pad state after every change. Sends never block.
	Snapshots chan<- Snapshot `kong:"-"`
}

// DeadzoneConfig holds the per-stick deadzones.
type DeadzoneConfig struct {
	Left  float64 `help:"Left stick deadzone in [0,1)" default:"0.1" env:"INPUTREDIRECT_DEADZONE_LEFT"`
	Right float64 `help:"Right stick deadzone in [0,1)" default:"0.1" env:"INPUTREDIRECT_DEADZONE_RIGHT"`
}

// InvertConfig holds the per-axis inversion flags.
type InvertConfig struct {
	LX bool `help:"Invert left stick X" env:"INPUTREDIRECT_INVERT_LX"`
	LY bool `help:"Invert left stick Y" env:"INPUTREDIRECT_INVERT_LY"`
	RX bool `help:"Invert right stick X" env:"INPUTREDIRECT_INVERT_RX"`
	RY bool `help:"Invert right stick Y" env:"INPUTREDIRECT_INVERT_RY"`
}

// DefaultConfig mirrors the kong defaults for callers that skip the CLI.
func DefaultConfig() Config {
	return Config{
		Port:             n3ds.DefaultPort,
		Policy:           PolicyThrottled,
		ThrottleInterval: DefaultThrottleInterval,
		WaitTimeout:      16 * time.Millisecond,
		CStickRotation:   n3ds.CStickRotation,
		Device:           -1,
		Deadzone:         DeadzoneConfig{Left: 0.1, Right: 0.1},
	}
}

// SanitizeDeadzone clamps d into [0, MaxDeadzone]. NaN becomes 0.
// It reports whether d was changed.
func SanitizeDeadzone(d float64) (float64, bool) {
	switch {
	case math.IsNaN(d) || d < 0:
		return 0, true
	case d > MaxDeadzone:
		return MaxDeadzone, true
	}
	return d, false
}

// Calibrations builds the per-channel calibration, clamping deadzones at
// the boundary. Every clamped value is logged.
func (c *Config) Calibrations(logger *slog.Logger) n3ds.CalibrationSet {
	left, fixed := SanitizeDeadzone(c.Deadzone.Left)
	if fixed {
		logger.Warn("Left deadzone out of range, clamped", "configured", c.Deadzone.Left, "used", left)
	}
	right, fixed := SanitizeDeadzone(c.Deadzone.Right)
	if fixed {
		logger.Warn("Right deadzone out of range, clamped", "configured", c.Deadzone.Right, "used", right)
	}

	var set n3ds.CalibrationSet
	set[gamepad.LeftX] = n3ds.Calibration{Invert: c.Invert.LX, Deadzone: left}
	set[gamepad.LeftY] = n3ds.Calibration{Invert: c.Invert.LY, Deadzone: left}
	set[gamepad.RightX] = n3ds.Calibration{Invert: c.Invert.RX, Deadzone: right}
	set[gamepad.RightY] = n3ds.Calibration{Invert: c.Invert.RY, Deadzone: right}
	return set
}

// Encoder returns the frame encoder for the configured c-stick rotation.
func (c *Config) Encoder() n3ds.Encoder {
	rot := c.CStickRotation
	if math.IsNaN(rot) || math.IsInf(rot, 0) || rot <= 0 {
		rot = n3ds.CStickRotation
	}
	return n3ds.Encoder{CStickRotation: rot}
}
