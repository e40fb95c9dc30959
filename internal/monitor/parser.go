package monitor

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Alia5/InputRedirect/device/n3ds"
)

var hidNames = [...]string{
	n3ds.BitA:      "A",
	n3ds.BitB:      "B",
	n3ds.BitSelect: "SELECT",
	n3ds.BitStart:  "START",
	n3ds.BitDRight: "RIGHT",
	n3ds.BitDLeft:  "LEFT",
	n3ds.BitDUp:    "UP",
	n3ds.BitDDown:  "DOWN",
	n3ds.BitR:      "R",
	n3ds.BitL:      "L",
	n3ds.BitX:      "X",
	n3ds.BitY:      "Y",
}

// Parser decodes frames and logs them, at Info when a peer's frame changed
// and at Debug when it repeats.
type Parser struct {
	logger *slog.Logger

	mu     sync.Mutex
	last   map[string]n3ds.Frame
	frames uint64
	bad    uint64
}

func NewParser(logger *slog.Logger) *Parser {
	return &Parser{
		logger: logger,
		last:   make(map[string]n3ds.Frame),
	}
}

// Parse decodes one datagram from peer. It reports whether data was a valid frame.
func (p *Parser) Parse(peer string, data []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(data) != n3ds.FrameSize {
		p.bad++
		p.logger.Warn("Unexpected datagram size", "peer", peer, "size", len(data), "want", n3ds.FrameSize)
		return false
	}

	var f n3ds.Frame
	if err := f.UnmarshalBinary(data); err != nil {
		p.bad++
		p.logger.Warn("Failed to decode frame", "peer", peer, "error", err)
		return false
	}
	p.frames++

	prev, seen := p.last[peer]
	p.last[peer] = f
	level := slog.LevelInfo
	if seen && prev == f {
		level = slog.LevelDebug
	}
	if !p.logger.Enabled(context.Background(), level) {
		return true
	}

	attrs := []any{
		"peer", peer,
		"buttons", Pressed(&f),
		"cpad_x", f.CPadX,
		"cpad_y", f.CPadY,
		"cstick_x", f.CStickX,
		"cstick_y", f.CStickY,
	}
	if f.IRButtons&(1<<n3ds.BitZL) != 0 {
		attrs = append(attrs, "zl", true)
	}
	if f.IRButtons&(1<<n3ds.BitZR) != 0 {
		attrs = append(attrs, "zr", true)
	}
	if f.Touch != n3ds.NoTouch {
		attrs = append(attrs, "touch", f.Touch)
	}
	if uint32(f.CStickFlags) != n3ds.CStickValid {
		attrs = append(attrs, "cstick_flags", f.CStickFlags)
	}
	p.logger.Log(context.Background(), level, "3DS frame", attrs...)
	return true
}

// Pressed lists the names of the held HID buttons in bit order.
func Pressed(f *n3ds.Frame) []string {
	var out []string
	for bit, name := range hidNames {
		if f.Pressed(uint(bit)) {
			out = append(out, name)
		}
	}
	return out
}

// Frames returns the number of valid frames parsed.
func (p *Parser) Frames() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames
}

// Rejected returns the number of datagrams that were not valid frames.
func (p *Parser) Rejected() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bad
}
