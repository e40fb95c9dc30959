// Package status renders a single self-overwriting terminal line with the
// current pad state.
package status

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/Alia5/InputRedirect/device/n3ds"
	"github.com/Alia5/InputRedirect/internal/redirect"
)

// MinInterval caps the redraw rate at 10 Hz.
const MinInterval = 100 * time.Millisecond

type Line struct {
	out      io.Writer
	width    func() int
	interval time.Duration
	drawn    bool
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// New returns a line drawing to f, sized to the terminal width.
func New(f *os.File) *Line {
	fd := int(f.Fd())
	return &Line{
		out: f,
		width: func() int {
			w, _, err := term.GetSize(fd)
			if err != nil {
				return 0
			}
			return w
		},
		interval: MinInterval,
	}
}

// NewWriter returns a line drawing to w with a fixed width; 0 disables truncation.
func NewWriter(w io.Writer, width int, interval time.Duration) *Line {
	if interval < MinInterval {
		interval = MinInterval
	}
	return &Line{out: w, width: func() int { return width }, interval: interval}
}

// Render formats one snapshot.
func Render(s redirect.Snapshot) string {
	dev := "none"
	if s.HasActive {
		dev = s.Active.String()
	}
	return fmt.Sprintf("LX %+.3f  LY %+.3f  RX %+.3f  RY %+.3f  HID %03X  IR %02X  dev %s  sent %d",
		s.State.LX, s.State.LY, s.State.RX, s.State.RY,
		s.State.Buttons&n3ds.ButtonsReleased, s.State.IRButtons,
		dev, s.Sent)
}

// Draw overwrites the current line with s.
func (l *Line) Draw(s redirect.Snapshot) {
	text := Render(s)
	// leave the last column free so the cursor never wraps
	if w := l.width() - 1; w > 0 {
		if len(text) > w {
			text = text[:w]
		} else {
			text += strings.Repeat(" ", w-len(text))
		}
	}
	_, _ = fmt.Fprintf(l.out, "\r%s", text)
	l.drawn = true
}

// Run draws the latest snapshot from snaps at most once per interval until
// ctx is done or snaps is closed.
func (l *Line) Run(ctx context.Context, snaps <-chan redirect.Snapshot) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	defer l.finish()

	var latest redirect.Snapshot
	dirty := false
	for {
		select {
		case <-ctx.Done():
			if dirty {
				l.Draw(latest)
			}
			return
		case s, ok := <-snaps:
			if !ok {
				if dirty {
					l.Draw(latest)
				}
				return
			}
			latest, dirty = s, true
		case <-ticker.C:
			if dirty {
				l.Draw(latest)
				dirty = false
			}
		}
	}
}

func (l *Line) finish() {
	if l.drawn {
		_, _ = io.WriteString(l.out, "\n")
	}
}
