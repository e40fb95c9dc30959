package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Direction labels a raw frame.
type Direction bool

const (
	// TX marks frames written to the receiver.
	TX Direction = false
	// RX marks frames read by the monitor.
	RX Direction = true
)

func (d Direction) String() string {
	if d == RX {
		return "RX"
	}
	return "TX"
}

// RawLogger records wire frames with optional file output.
type RawLogger interface {
	Log(dir Direction, peer string, data []byte)
}

// rawLogger implements RawLogger with thread-safe writes.
type rawLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewRaw creates a new RawLogger. If w is nil, the logger drops everything.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w}
}

// Log emits a single line with timestamp, direction, peer and hex dump.
func (r *rawLogger) Log(dir Direction, peer string, data []byte) {
	if len(data) == 0 || r.w == nil {
		return
	}

	var hexbuf strings.Builder
	const hexdigits = "0123456789abcdef"
	for i, b := range data {
		if i > 0 && i%4 == 0 {
			hexbuf.WriteByte(' ')
		}
		hexbuf.WriteByte(hexdigits[b>>4])
		hexbuf.WriteByte(hexdigits[b&0x0f])
	}

	line := fmt.Sprintf("%s %s %s %d bytes: %s\n",
		time.Now().Format("2006/01/02 15:04:05.000"),
		dir,
		peer,
		len(data),
		hexbuf.String())

	r.mu.Lock()
	_, _ = io.WriteString(r.w, line)
	r.mu.Unlock()
}
