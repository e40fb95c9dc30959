// Package n3ds implements the input redirection wire format understood by
// the 3DS input-redirection listener: the pad state it carries, the axis
// calibration applied before encoding, and the 20-byte frame codec.
package n3ds

import "math"

// DefaultPort is the UDP port the receiver listens on.
const DefaultPort = 4950

// FrameSize is the size of one input frame on the wire.
const FrameSize = 20

// Circle pad scaling: 12 bits per axis centered on 0x800.
const (
	CPadBound        = 0x5D0
	CPadCenterOffset = 0x800
)

// C-stick scaling: 8 bits per axis centered on 0x80.
const (
	CStickBound        = 0x7F
	CStickCenterOffset = 0x80
)

// CStickRotation compensates for the c-stick being mounted 45° rotated.
// Encoders with a rotation of 1 emit the unscaled variant.
const CStickRotation = 1 / math.Sqrt2

// Deadzone floors. A stick inside its deadzone reports this signed magnitude
// instead of zero; the receiver treats exact center specially.
const (
	NudgeLeft  = 0.001
	NudgeRight = 0.008
)

// Fixed frame words.
const (
	// NoTouch marks "no touch-screen input" in the touch word.
	NoTouch uint32 = 0x02000000
	// CStickValid marks a valid c-stick sample in the low byte of word 3.
	CStickValid uint32 = 0x81
)

// HID button bit positions in the buttons word. The field is active-low.
const (
	BitA      = 0
	BitB      = 1
	BitSelect = 2
	BitStart  = 3
	BitDRight = 4
	BitDLeft  = 5
	BitDUp    = 6
	BitDDown  = 7
	BitR      = 8
	BitL      = 9
	BitX      = 10
	BitY      = 11
)

// ButtonsReleased is the buttons word with every button released.
const ButtonsReleased uint32 = 0xFFF

// IR button bit positions. The field is active-high.
const (
	BitZR = 1
	BitZL = 2
)
