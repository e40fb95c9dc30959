package gamepad_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/0xcafed00d/joystick"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/InputRedirect/gamepad"
)

type fakeJoystick struct {
	name   string
	state  joystick.State
	err    error
	closed bool
}

func (f *fakeJoystick) AxisCount() int   { return len(f.state.AxisData) }
func (f *fakeJoystick) ButtonCount() int { return 11 }
func (f *fakeJoystick) Name() string     { return f.name }
func (f *fakeJoystick) Close()           { f.closed = true }
func (f *fakeJoystick) Read() (joystick.State, error) {
	if f.err != nil {
		return joystick.State{}, f.err
	}
	s := f.state
	s.AxisData = append([]int(nil), f.state.AxisData...)
	return s, nil
}

type slots map[int]*fakeJoystick

func (s slots) open(slot int) (joystick.Joystick, error) {
	if js, ok := s[slot]; ok {
		return js, nil
	}
	return nil, errors.New("no such joystick")
}

func newPad(name string) *fakeJoystick {
	return &fakeJoystick{name: name, state: joystick.State{AxisData: []int{0, 0, -32767, 0, 0, -32767, 0, 0}}}
}

func openSource(t *testing.T, s slots) *gamepad.JoystickSource {
	t.Helper()
	src := gamepad.OpenJoystickSource(&gamepad.JoystickConfig{
		MaxSlots:       4,
		PollInterval:   time.Millisecond,
		RescanInterval: time.Hour,
		Open:           s.open,
	}, slog.Default())
	t.Cleanup(func() { _ = src.Close() })
	return src
}

func drain(t *testing.T, src *gamepad.JoystickSource) []gamepad.Event {
	t.Helper()
	var out []gamepad.Event
	for {
		ev, ok, err := src.Next(context.Background(), 5*time.Millisecond)
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, ev)
	}
}

func TestJoystickSourceEnumeratesInSlotOrder(t *testing.T) {
	s := slots{2: newPad("second"), 0: newPad("first")}
	src := openSource(t, s)

	devs := src.Devices()
	require.Len(t, devs, 2)
	assert.Equal(t, "first", devs[0].Name)
	assert.Equal(t, "second", devs[1].Name)
	assert.NotEqual(t, devs[0].ID, devs[1].ID)

	// initial probe does not announce
	assert.Empty(t, drain(t, src))
}

func TestJoystickSourceTrimsNamePadding(t *testing.T) {
	s := slots{0: newPad("Xbox Wireless Controller" + strings.Repeat("\x00", 200))}
	src := openSource(t, s)

	devs := src.Devices()
	require.Len(t, devs, 1)
	assert.Equal(t, "Xbox Wireless Controller", devs[0].Name)
	assert.Equal(t, "Xbox Wireless Controller (id 1)", devs[0].String())
}

func TestJoystickSourceDiffsIntoEvents(t *testing.T) {
	pad := newPad("pad")
	src := openSource(t, slots{0: pad})
	id := src.Devices()[0].ID
	require.Empty(t, drain(t, src))

	tests := []struct {
		name   string
		mutate func(s *joystick.State)
		want   []gamepad.Event
	}{
		{
			name:   "left stick right",
			mutate: func(s *joystick.State) { s.AxisData[0] = 32767 },
			want:   []gamepad.Event{{Kind: gamepad.AxisChanged, Device: id, Axis: gamepad.LeftX, Value: 1}},
		},
		{
			name:   "left stick up is positive",
			mutate: func(s *joystick.State) { s.AxisData[1] = -32767 },
			want:   []gamepad.Event{{Kind: gamepad.AxisChanged, Device: id, Axis: gamepad.LeftY, Value: 1}},
		},
		{
			name:   "south pressed",
			mutate: func(s *joystick.State) { s.Buttons |= 1 },
			want:   []gamepad.Event{{Kind: gamepad.ButtonPressed, Device: id, Button: gamepad.South}},
		},
		{
			name:   "south released",
			mutate: func(s *joystick.State) { s.Buttons &^= 1 },
			want:   []gamepad.Event{{Kind: gamepad.ButtonReleased, Device: id, Button: gamepad.South}},
		},
		{
			name:   "left trigger past press threshold",
			mutate: func(s *joystick.State) { s.AxisData[2] = 32767 },
			want:   []gamepad.Event{{Kind: gamepad.ButtonPressed, Device: id, Button: gamepad.LeftTrigger2}},
		},
		{
			name:   "left trigger inside hysteresis band",
			mutate: func(s *joystick.State) { s.AxisData[2] = 0 },
			want:   nil,
		},
		{
			name:   "left trigger released",
			mutate: func(s *joystick.State) { s.AxisData[2] = -32767 },
			want:   []gamepad.Event{{Kind: gamepad.ButtonReleased, Device: id, Button: gamepad.LeftTrigger2}},
		},
		{
			name:   "hat up",
			mutate: func(s *joystick.State) { s.AxisData[7] = -32767 },
			want:   []gamepad.Event{{Kind: gamepad.ButtonPressed, Device: id, Button: gamepad.DPadUp}},
		},
		{
			name:   "hat up to down",
			mutate: func(s *joystick.State) { s.AxisData[7] = 32767 },
			want: []gamepad.Event{
				{Kind: gamepad.ButtonReleased, Device: id, Button: gamepad.DPadUp},
				{Kind: gamepad.ButtonPressed, Device: id, Button: gamepad.DPadDown},
			},
		},
		{
			name:   "unmapped button index is dropped",
			mutate: func(s *joystick.State) { s.Buttons |= 1 << 20 },
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mutate(&pad.state)
			assert.Equal(t, tt.want, drain(t, src))
		})
	}
}

func TestJoystickSourceReportsDisconnect(t *testing.T) {
	pad := newPad("pad")
	src := openSource(t, slots{0: pad})
	id := src.Devices()[0].ID

	pad.err = errors.New("read: no such device")
	evs := drain(t, src)
	require.Len(t, evs, 1)
	assert.Equal(t, gamepad.Event{Kind: gamepad.Disconnected, Device: id}, evs[0])
	assert.True(t, pad.closed)
	assert.Empty(t, src.Devices())
}

func TestJoystickSourceAnnouncesHotplug(t *testing.T) {
	s := slots{}
	src := gamepad.OpenJoystickSource(&gamepad.JoystickConfig{
		MaxSlots:       2,
		PollInterval:   time.Millisecond,
		RescanInterval: time.Millisecond,
		Open:           s.open,
	}, slog.Default())
	defer src.Close()
	require.Empty(t, src.Devices())

	s[1] = newPad("late")
	var got []gamepad.Event
	deadline := time.Now().Add(time.Second)
	for len(got) == 0 && time.Now().Before(deadline) {
		got = drain(t, src)
	}
	require.NotEmpty(t, got)
	assert.Equal(t, gamepad.Connected, got[0].Kind)
	require.Len(t, src.Devices(), 1)
	assert.Equal(t, src.Devices()[0].ID, got[0].Device)
}

func TestJoystickSourceNextHonorsContextAndClose(t *testing.T) {
	src := openSource(t, slots{0: newPad("pad")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok, err := src.Next(ctx, time.Second)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)

	start := time.Now()
	_, ok, err = src.Next(context.Background(), 10*time.Millisecond)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	require.NoError(t, src.Close())
	_, _, err = src.Next(context.Background(), time.Millisecond)
	assert.ErrorIs(t, err, gamepad.ErrClosed)
}
