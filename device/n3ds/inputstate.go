package n3ds

import (
	"math"

	"github.com/Alia5/InputRedirect/gamepad"
)

// InputState is the point-in-time pad snapshot sent to the receiver.
//
// Sticks hold calibrated values in [-1, 1]. Buttons is active-low
// (0 = pressed) in its low 12 bits; IRButtons is active-high.
type InputState struct {
	LX, LY    float64
	RX, RY    float64
	Buttons   uint32
	IRButtons uint8
}

// NewInputState returns the session start state: every button released and
// both sticks resting on their nudge floor.
func NewInputState() InputState {
	return InputState{
		LX:      NudgeLeft,
		LY:      NudgeLeft,
		RX:      NudgeRight,
		RY:      NudgeRight,
		Buttons: ButtonsReleased,
	}
}

func (s *InputState) axis(ch gamepad.AxisChannel) *float64 {
	switch ch {
	case gamepad.LeftX:
		return &s.LX
	case gamepad.LeftY:
		return &s.LY
	case gamepad.RightX:
		return &s.RX
	case gamepad.RightY:
		return &s.RY
	}
	return nil
}

// Axis returns the stored value of ch.
func (s *InputState) Axis(ch gamepad.AxisChannel) float64 {
	if p := s.axis(ch); p != nil {
		return *p
	}
	return 0
}

// ApplyAxis normalizes raw with cal and stores it on ch.
// It reports whether the stored value changed.
func (s *InputState) ApplyAxis(ch gamepad.AxisChannel, raw float64, cal Calibration) bool {
	p := s.axis(ch)
	if p == nil {
		return false
	}
	v := Normalize(raw, ch, cal)
	if !(math.Abs(*p-v) > epsilon) {
		return false
	}
	*p = v
	return true
}

// hidBits maps logical buttons onto the active-low buttons word.
var hidBits = map[gamepad.Button]uint{
	gamepad.South:        BitB,
	gamepad.East:         BitA,
	gamepad.West:         BitX,
	gamepad.North:        BitY,
	gamepad.DPadUp:       BitDUp,
	gamepad.DPadDown:     BitDDown,
	gamepad.DPadLeft:     BitDLeft,
	gamepad.DPadRight:    BitDRight,
	gamepad.Select:       BitSelect,
	gamepad.Start:        BitStart,
	gamepad.Mode:         BitStart,
	gamepad.LeftTrigger:  BitL,
	gamepad.RightTrigger: BitR,
}

// irBits maps logical buttons onto the active-high IR word.
var irBits = map[gamepad.Button]uint{
	gamepad.LeftTrigger2:  BitZL,
	gamepad.RightTrigger2: BitZR,
}

// UpdateButton records a press or release of b. Buttons without a
// receiver counterpart are ignored.
func (s *InputState) UpdateButton(b gamepad.Button, pressed bool) {
	if bit, ok := hidBits[b]; ok {
		if pressed {
			s.Buttons &^= 1 << bit
		} else {
			s.Buttons |= 1 << bit
		}
		return
	}
	if bit, ok := irBits[b]; ok {
		if pressed {
			s.IRButtons |= 1 << bit
		} else {
			s.IRButtons &^= 1 << bit
		}
	}
}

// Pressed reports whether b is currently held.
func (s *InputState) Pressed(b gamepad.Button) bool {
	if bit, ok := hidBits[b]; ok {
		return s.Buttons&(1<<bit) == 0
	}
	if bit, ok := irBits[b]; ok {
		return s.IRButtons&(1<<bit) != 0
	}
	return false
}

// MarshalBinary encodes the state with the default c-stick rotation.
func (s *InputState) MarshalBinary() ([]byte, error) {
	f := DefaultEncoder.Encode(s)
	return f[:], nil
}
