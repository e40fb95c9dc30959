package n3ds

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Encoder builds wire frames from InputState.
type Encoder struct {
	// CStickRotation scales the rotated c-stick axes. Zero selects the
	// package default CStickRotation.
	CStickRotation float64
}

// DefaultEncoder uses CStickRotation.
var DefaultEncoder = Encoder{CStickRotation: CStickRotation}

// Encode builds the 20-byte frame for s.
// Layout, five little-endian uint32 words:
//
//	 0-3:  buttons (active-low, 12 bits)
//	 4-7:  touch word, always NoTouch
//	 8-11: circle pad, y<<12 | x, 12 bits each
//	12-15: c-stick y<<24 | x<<16 | ir buttons<<8 | CStickValid
//	16-19: zero
//
// Encode saturates every field and never panics.
func (e Encoder) Encode(s *InputState) [FrameSize]byte {
	rot := e.CStickRotation
	if rot == 0 {
		rot = CStickRotation
	}

	var b [FrameSize]byte
	binary.LittleEndian.PutUint32(b[0:4], s.Buttons&ButtonsReleased)
	binary.LittleEndian.PutUint32(b[4:8], NoTouch)

	x := clampU12(s.LX*CPadBound + CPadCenterOffset)
	y := clampU12(s.LY*CPadBound + CPadCenterOffset)
	binary.LittleEndian.PutUint32(b[8:12], y<<12|x)

	cx := clampU8(rot*(s.RX+s.RY)*CStickBound + CStickCenterOffset)
	cy := clampU8(rot*(s.RY-s.RX)*CStickBound + CStickCenterOffset)
	ir := uint32(s.IRButtons & (1<<BitZR | 1<<BitZL))
	binary.LittleEndian.PutUint32(b[12:16], cy<<24|cx<<16|ir<<8|CStickValid)

	binary.LittleEndian.PutUint32(b[16:20], 0)
	return b
}

// clampU12 truncates toward zero and saturates to [0, 0xFFF]. NaN maps to 0.
func clampU12(v float64) uint32 {
	return uint32(saturate(v, 0xFFF))
}

// clampU8 truncates toward zero and saturates to [0, 0xFF]. NaN maps to 0.
func clampU8(v float64) uint32 {
	return uint32(saturate(v, 0xFF))
}

func saturate(v, hi float64) float64 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= hi:
		return hi
	}
	return math.Trunc(v)
}

// Frame is a decoded wire frame.
type Frame struct {
	Buttons     uint32
	Touch       uint32
	CPadX       uint16
	CPadY       uint16
	CStickX     uint8
	CStickY     uint8
	IRButtons   uint8
	CStickFlags uint8
	Reserved    uint32
}

// Pressed reports whether the HID button at bit is held.
func (f *Frame) Pressed(bit uint) bool {
	return f.Buttons&(1<<bit) == 0
}

// UnmarshalBinary decodes a 20-byte frame.
func (f *Frame) UnmarshalBinary(data []byte) error {
	if len(data) < FrameSize {
		return io.ErrUnexpectedEOF
	}
	f.Buttons = binary.LittleEndian.Uint32(data[0:4])
	f.Touch = binary.LittleEndian.Uint32(data[4:8])
	cpad := binary.LittleEndian.Uint32(data[8:12])
	f.CPadX = uint16(cpad & 0xFFF)
	f.CPadY = uint16(cpad >> 12 & 0xFFF)
	cs := binary.LittleEndian.Uint32(data[12:16])
	f.CStickFlags = uint8(cs)
	f.IRButtons = uint8(cs >> 8)
	f.CStickX = uint8(cs >> 16)
	f.CStickY = uint8(cs >> 24)
	f.Reserved = binary.LittleEndian.Uint32(data[16:20])
	return nil
}

// MarshalBinary re-encodes the decoded fields.
func (f *Frame) MarshalBinary() ([]byte, error) {
	b := make([]byte, FrameSize)
	binary.LittleEndian.PutUint32(b[0:4], f.Buttons)
	binary.LittleEndian.PutUint32(b[4:8], f.Touch)
	binary.LittleEndian.PutUint32(b[8:12], uint32(f.CPadY&0xFFF)<<12|uint32(f.CPadX&0xFFF))
	binary.LittleEndian.PutUint32(b[12:16],
		uint32(f.CStickY)<<24|uint32(f.CStickX)<<16|uint32(f.IRButtons)<<8|uint32(f.CStickFlags))
	binary.LittleEndian.PutUint32(b[16:20], f.Reserved)
	return b, nil
}

func (f Frame) String() string {
	return fmt.Sprintf("buttons=%03X cpad=(%d,%d) cstick=(%d,%d) ir=%02X",
		f.Buttons&ButtonsReleased, f.CPadX, f.CPadY, f.CStickX, f.CStickY, f.IRButtons)
}
