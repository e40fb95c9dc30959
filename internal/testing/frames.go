package testing

import (
	"net"
	"sync"
	"testing"
	"time"
)

// FrameListener collects datagrams received on a loopback UDP socket.
type FrameListener struct {
	conn   *net.UDPConn
	mu     sync.Mutex
	frames [][]byte
	notify chan struct{}
	done   chan struct{}
}

// ListenFrames starts a loopback listener that is closed with the test.
func ListenFrames(t *testing.T) *FrameListener {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen udp: %v", err)
	}
	l := &FrameListener{
		conn:   conn,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go l.serve()
	t.Cleanup(func() {
		_ = conn.Close()
		<-l.done
	})
	return l
}

func (l *FrameListener) serve() {
	defer close(l.done)
	buf := make([]byte, 1500)
	for {
		n, _, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		l.mu.Lock()
		l.frames = append(l.frames, append([]byte(nil), buf[:n]...))
		l.mu.Unlock()
		select {
		case l.notify <- struct{}{}:
		default:
		}
	}
}

// Host returns the listener IP for use as a send target.
func (l *FrameListener) Host() string { return "127.0.0.1" }

// Port returns the bound port.
func (l *FrameListener) Port() int { return l.conn.LocalAddr().(*net.UDPAddr).Port }

// Frames returns a copy of everything received so far.
func (l *FrameListener) Frames() [][]byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([][]byte(nil), l.frames...)
}

// Count returns the number of datagrams received.
func (l *FrameListener) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.frames)
}

// WaitFor blocks until at least n datagrams arrived or timeout elapses.
func (l *FrameListener) WaitFor(n int, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for l.Count() < n {
		select {
		case <-l.notify:
		case <-deadline.C:
			return l.Count() >= n
		}
	}
	return true
}
