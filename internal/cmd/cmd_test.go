package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	toml "github.com/pelletier/go-toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"

	"github.com/Alia5/InputRedirect/gamepad"
	"github.com/Alia5/InputRedirect/internal/redirect"
	irtest "github.com/Alia5/InputRedirect/internal/testing"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestConfigInitJSON(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "run.json")
	var logs bytes.Buffer
	require.NoError(t, (&ConfigInit{Command: "run", Format: "json", Output: dest}).Run(testLogger(&logs)))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, "", got["target"])
	assert.EqualValues(t, 4950, got["port"])
	assert.Equal(t, "throttled", got["policy"])
	assert.Equal(t, "50ms", got["throttle_interval"])
	assert.Equal(t, "16ms", got["wait_timeout"])
	assert.InDelta(t, 0.70710678, got["cstick_rotation"], 1e-8)
	assert.EqualValues(t, -1, got["device"])
	assert.Equal(t, false, got["status"])
	assert.NotContains(t, got, "snapshots")

	dz, ok := got["deadzone"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 0.1, dz["left"], 1e-12)
	inv, ok := got["invert"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, inv["lx"])
	js, ok := got["joystick"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "xpad", js["mapping"])
	assert.EqualValues(t, 4, js["max_slots"])
	assert.Equal(t, "4ms", js["poll_interval"])

	assert.Contains(t, logs.String(), "Wrote config template")
}

func TestConfigInitFormats(t *testing.T) {
	dir := t.TempDir()
	var logs bytes.Buffer

	yml := filepath.Join(dir, "monitor.yaml")
	require.NoError(t, (&ConfigInit{Command: "monitor", Format: "yml", Output: yml}).Run(testLogger(&logs)))
	data, err := os.ReadFile(yml)
	require.NoError(t, err)
	var y map[string]any
	require.NoError(t, yaml.Unmarshal(data, &y))
	assert.Equal(t, ":4950", y["listen"])

	tml := filepath.Join(dir, "run.toml")
	require.NoError(t, (&ConfigInit{Command: "run", Format: "toml", Output: tml}).Run(testLogger(&logs)))
	tree, err := toml.LoadFile(tml)
	require.NoError(t, err)
	assert.Equal(t, "xpad", tree.Get("joystick.mapping"))
	assert.Equal(t, "throttled", tree.Get("policy"))
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, os.WriteFile(dest, []byte("{}"), 0o644))
	var logs bytes.Buffer

	err := (&ConfigInit{Command: "run", Format: "json", Output: dest}).Run(testLogger(&logs))
	require.Error(t, err)

	require.NoError(t, (&ConfigInit{Command: "run", Format: "json", Output: dest, Force: true}).Run(testLogger(&logs)))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "throttle_interval")
}

func TestConfigInitUserDir(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", xdg)
	var logs bytes.Buffer

	c := &ConfigInit{Command: "monitor", Format: "toml", User: true}
	if err := c.Run(testLogger(&logs)); err != nil {
		t.Skipf("user config dir unavailable: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(xdg, "*", "monitor.toml"))
	assert.NotEmpty(t, matches)
}

func TestConfigInitErrors(t *testing.T) {
	var logs bytes.Buffer
	assert.Error(t, (&ConfigInit{Command: "server", Format: "json"}).Run(testLogger(&logs)))
	assert.Error(t, (&ConfigInit{Command: "run", Format: "ini"}).Run(testLogger(&logs)))
}

func TestJoystickConfig(t *testing.T) {
	j := Joystick{Mapping: "playstation", MaxSlots: 2, PollInterval: time.Millisecond, RescanInterval: time.Second}
	cfg, err := j.Config()
	require.NoError(t, err)
	assert.Equal(t, "playstation", cfg.Mapping.Name)
	assert.Equal(t, 2, cfg.MaxSlots)

	_, err = (&Joystick{Mapping: "nope"}).Config()
	assert.ErrorContains(t, err, "unknown mapping")
}

func TestListDevices(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ListDevices(&buf, irtest.NewFakeSource()))
	assert.Equal(t, "No devices found\n", buf.String())

	buf.Reset()
	src := irtest.NewFakeSource(gamepad.DeviceInfo{ID: 1, Name: "Pad"}, gamepad.DeviceInfo{ID: 4, Name: "Stick"})
	require.NoError(t, ListDevices(&buf, src))
	assert.Equal(t, "0: Pad (id 1)\n1: Stick (id 4)\n", buf.String())
}

func TestInvertFlags(t *testing.T) {
	assert.Equal(t, "none", invertFlags(redirect.InvertConfig{}))
	assert.Equal(t, "ly,rx", invertFlags(redirect.InvertConfig{LY: true, RX: true}))
}

func TestRunRedirect(t *testing.T) {
	l := irtest.ListenFrames(t)
	src := irtest.NewFakeSource(gamepad.DeviceInfo{ID: 1, Name: "Pad"})
	var logs bytes.Buffer

	r := &Run{Session: redirect.DefaultConfig()}
	r.Session.Target = l.Host()
	r.Session.Port = l.Port()
	r.Session.WaitTimeout = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Redirect(ctx, src, testLogger(&logs), nil) }()

	require.True(t, l.WaitFor(3, 2*time.Second))
	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("redirect did not stop")
	}
	assert.Contains(t, logs.String(), "Starting input redirection")
	assert.Contains(t, logs.String(), "Input redirection stopped")
}

func TestRunRedirectWithoutDevice(t *testing.T) {
	var logs bytes.Buffer
	r := &Run{Session: redirect.DefaultConfig()}
	err := r.Redirect(context.Background(), irtest.NewFakeSource(), testLogger(&logs), nil)
	assert.ErrorIs(t, err, redirect.ErrNoDevice)
	assert.Contains(t, logs.String(), "No input device connected")
}
