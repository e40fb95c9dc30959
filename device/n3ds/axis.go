package n3ds

import (
	"math"

	"github.com/Alia5/InputRedirect/gamepad"
)

// epsilon is the smallest stick change worth a frame.
const epsilon = 0x1p-23

// Calibration is the per-channel axis adjustment.
// Deadzone is expected in [0, 1); range checks happen before values get here.
type Calibration struct {
	Invert   bool
	Deadzone float64
}

// CalibrationSet holds one Calibration per AxisChannel.
type CalibrationSet [4]Calibration

// For returns the calibration of ch.
func (c *CalibrationSet) For(ch gamepad.AxisChannel) Calibration {
	if int(ch) >= len(c) {
		return Calibration{}
	}
	return c[ch]
}

// Nudge returns the deadzone floor magnitude of ch's stick pair.
func Nudge(ch gamepad.AxisChannel) float64 {
	if ch.IsLeft() {
		return NudgeLeft
	}
	return NudgeRight
}

// Normalize applies inversion and the deadzone to one raw sample.
// Samples inside the deadzone become the signed nudge of the stick pair;
// zero counts as positive.
func Normalize(raw float64, ch gamepad.AxisChannel, cal Calibration) float64 {
	v := raw
	if cal.Invert {
		v = -v
	}
	if math.Abs(v) < cal.Deadzone {
		if v >= 0 {
			return Nudge(ch)
		}
		return -Nudge(ch)
	}
	return v
}
