package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/InputRedirect/internal/config"
	"github.com/Alia5/InputRedirect/internal/log"
)

func TestFindUserConfig(t *testing.T) {
	t.Setenv("INPUTREDIRECT_CONFIG", "")
	tests := []struct {
		name string
		args []string
		env  string
		want string
	}{
		{name: "none", args: []string{"run"}},
		{name: "equals", args: []string{"--config=/tmp/a.yaml", "run"}, want: "/tmp/a.yaml"},
		{name: "separate", args: []string{"run", "--config", "b.toml"}, want: "b.toml"},
		{name: "dangling", args: []string{"run", "--config"}},
		{name: "env", args: []string{"run"}, env: "c.json", want: "c.json"},
		{name: "flag beats env", args: []string{"--config=d.json"}, env: "c.json", want: "d.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("INPUTREDIRECT_CONFIG", tt.env)
			assert.Equal(t, tt.want, findUserConfig(tt.args))
		})
	}
}

func TestOpenRawLogger(t *testing.T) {
	frame := []byte{0xff, 0x0f, 0x00, 0x00}
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "frames.log")
		var stdout bytes.Buffer
		raw, closer := openRawLogger(config.LogConfig{Level: "trace", RawFile: path}, &stdout, quiet)
		require.NotNil(t, closer)
		raw.Log(log.TX, "peer", frame)
		require.NoError(t, closer.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "TX peer 4 bytes: ff0f0000")
		assert.Empty(t, stdout.String(), "file wins over trace stdout")
	})

	t.Run("trace goes to stdout", func(t *testing.T) {
		var stdout bytes.Buffer
		raw, closer := openRawLogger(config.LogConfig{Level: "TRACE"}, &stdout, quiet)
		assert.Nil(t, closer)
		raw.Log(log.TX, "peer", frame)
		assert.Contains(t, stdout.String(), "TX peer 4 bytes")
	})

	t.Run("info drops frames", func(t *testing.T) {
		var stdout bytes.Buffer
		raw, closer := openRawLogger(config.LogConfig{Level: "info"}, &stdout, quiet)
		assert.Nil(t, closer)
		raw.Log(log.TX, "peer", frame)
		assert.Empty(t, stdout.String())
	})

	t.Run("unwritable file", func(t *testing.T) {
		var stdout, logs bytes.Buffer
		bad := filepath.Join(t.TempDir(), "missing", "frames.log")
		raw, closer := openRawLogger(config.LogConfig{RawFile: bad}, &stdout, slog.New(slog.NewTextHandler(&logs, nil)))
		assert.Nil(t, closer)
		assert.NotPanics(t, func() { raw.Log(log.TX, "peer", frame) })
		assert.Contains(t, logs.String(), "Failed to open raw log file")
	})
}
