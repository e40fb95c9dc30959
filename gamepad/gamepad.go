// Package gamepad defines the logical input vocabulary shared by device
// backends and the redirection core, and the Source capability that
// backends implement.
package gamepad

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrClosed is returned by Source.Next after the source has been closed.
var ErrClosed = errors.New("gamepad: source closed")

// DeviceID identifies a device for the lifetime of a Source.
// IDs are never reused by the same Source.
type DeviceID uint32

// DeviceInfo describes one enumerated device.
type DeviceInfo struct {
	ID   DeviceID
	Name string
}

func (d DeviceInfo) String() string {
	return fmt.Sprintf("%s (id %d)", d.Name, d.ID)
}

// AxisChannel selects one analog stick axis.
type AxisChannel uint8

const (
	LeftX AxisChannel = iota
	LeftY
	RightX
	RightY
)

// IsLeft reports whether the channel belongs to the left stick pair.
func (a AxisChannel) IsLeft() bool { return a == LeftX || a == LeftY }

func (a AxisChannel) String() string {
	switch a {
	case LeftX:
		return "lx"
	case LeftY:
		return "ly"
	case RightX:
		return "rx"
	case RightY:
		return "ry"
	}
	return fmt.Sprintf("axis(%d)", uint8(a))
}

// Button is a logical, layout-position based button id.
// South/East/West/North name the face buttons by position, not by label.
type Button uint8

const (
	ButtonUnknown Button = iota
	South
	East
	West
	North
	Select
	Start
	Mode
	LeftTrigger
	LeftTrigger2
	RightTrigger
	RightTrigger2
	LeftThumb
	RightThumb
	DPadUp
	DPadDown
	DPadLeft
	DPadRight
)

var buttonNames = map[Button]string{
	ButtonUnknown: "unknown",
	South:         "south",
	East:          "east",
	West:          "west",
	North:         "north",
	Select:        "select",
	Start:         "start",
	Mode:          "mode",
	LeftTrigger:   "lt",
	LeftTrigger2:  "lt2",
	RightTrigger:  "rt",
	RightTrigger2: "rt2",
	LeftThumb:     "l3",
	RightThumb:    "r3",
	DPadUp:        "dpad_up",
	DPadDown:      "dpad_down",
	DPadLeft:      "dpad_left",
	DPadRight:     "dpad_right",
}

func (b Button) String() string {
	if n, ok := buttonNames[b]; ok {
		return n
	}
	return fmt.Sprintf("button(%d)", uint8(b))
}

// ParseButton resolves a button by the name String returns.
func ParseButton(name string) (Button, bool) {
	for b, n := range buttonNames {
		if n == name && b != ButtonUnknown {
			return b, true
		}
	}
	return ButtonUnknown, false
}

// EventKind discriminates Event.
type EventKind uint8

const (
	AxisChanged EventKind = iota
	ButtonPressed
	ButtonReleased
	Connected
	Disconnected
)

func (k EventKind) String() string {
	switch k {
	case AxisChanged:
		return "axis_changed"
	case ButtonPressed:
		return "button_pressed"
	case ButtonReleased:
		return "button_released"
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	}
	return fmt.Sprintf("event(%d)", uint8(k))
}

// Event is one discrete input event.
// Axis and Value are set for AxisChanged, Button for ButtonPressed and
// ButtonReleased. Value is in [-1, 1], stick up and right are positive.
type Event struct {
	Kind   EventKind
	Device DeviceID
	Axis   AxisChannel
	Value  float64
	Button Button
}

// Source is the device capability consumed by the redirection core.
//
// Next blocks until an event is available, timeout elapses, or ctx is done.
// It returns ok=false on timeout. It returns ctx.Err() when ctx is done and
// ErrClosed after Close.
type Source interface {
	Devices() []DeviceInfo
	Next(ctx context.Context, timeout time.Duration) (ev Event, ok bool, err error)
	Close() error
}
