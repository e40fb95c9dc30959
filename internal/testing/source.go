package testing

import (
	"context"
	"sync"
	"time"

	"github.com/Alia5/InputRedirect/gamepad"
)

// FakeSource is a scripted gamepad.Source.
// Unlike real sources it is safe to drive from the test goroutine while a
// worker consumes it.
type FakeSource struct {
	mu      sync.Mutex
	devices []gamepad.DeviceInfo
	events  chan gamepad.Event
	calls   int
	closed  bool

	// OnNext runs at the start of every Next call, on the caller's goroutine.
	OnNext func()
}

// NewFakeSource returns a source listing devices.
func NewFakeSource(devices ...gamepad.DeviceInfo) *FakeSource {
	return &FakeSource{
		devices: append([]gamepad.DeviceInfo(nil), devices...),
		events:  make(chan gamepad.Event, 1024),
	}
}

// Push queues events for Next.
func (f *FakeSource) Push(events ...gamepad.Event) {
	for _, ev := range events {
		f.events <- ev
	}
}

// SetDevices replaces the enumerated device list.
func (f *FakeSource) SetDevices(devices ...gamepad.DeviceInfo) {
	f.mu.Lock()
	f.devices = append([]gamepad.DeviceInfo(nil), devices...)
	f.mu.Unlock()
}

// Calls returns how many times Next was called.
func (f *FakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Pending returns the number of queued events not yet consumed.
func (f *FakeSource) Pending() int { return len(f.events) }

func (f *FakeSource) Devices() []gamepad.DeviceInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]gamepad.DeviceInfo(nil), f.devices...)
}

func (f *FakeSource) Next(ctx context.Context, timeout time.Duration) (gamepad.Event, bool, error) {
	f.mu.Lock()
	f.calls++
	closed := f.closed
	hook := f.OnNext
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if closed {
		return gamepad.Event{}, false, gamepad.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return gamepad.Event{}, false, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ev := <-f.events:
		return ev, true, nil
	case <-ctx.Done():
		return gamepad.Event{}, false, ctx.Err()
	case <-timer.C:
		return gamepad.Event{}, false, nil
	}
}

func (f *FakeSource) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}
