package log_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alia5/InputRedirect/internal/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "trace", want: log.LevelTrace},
		{in: "debug", want: slog.LevelDebug},
		{in: "", want: slog.LevelInfo},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "bogus", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, log.ParseLevel(tt.in))
		})
	}
}

func TestHandlerSplitsErrors(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := slog.New(log.NewHandler(log.LevelTrace, &out, &errOut))

	logger.Log(context.Background(), log.LevelTrace, "frame")
	logger.Info("hello", "k", 1)
	logger.Error("boom")

	assert.Contains(t, out.String(), "level=TRACE msg=frame")
	assert.Contains(t, out.String(), "msg=hello k=1")
	assert.NotContains(t, out.String(), "boom")
	assert.Contains(t, errOut.String(), "msg=boom")
	assert.NotContains(t, errOut.String(), "hello")
}

func TestHandlerRespectsLevel(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := slog.New(log.NewHandler(slog.LevelWarn, &out, &errOut))
	logger.Info("quiet")
	logger.Warn("loud")
	assert.NotContains(t, out.String(), "quiet")
	assert.Contains(t, out.String(), "loud")
}

func TestRawLogger(t *testing.T) {
	var buf bytes.Buffer
	raw := log.NewRaw(&buf)

	raw.Log(log.TX, "192.168.1.20:4950", []byte{0xff, 0x0f, 0x00, 0x00, 0x00, 0x00, 0x00, 0x02})
	raw.Log(log.RX, "peer", nil)

	line := buf.String()
	assert.Equal(t, 1, strings.Count(line, "\n"))
	assert.Contains(t, line, "TX 192.168.1.20:4950 8 bytes: ff0f0000 00000002")

	assert.NotPanics(t, func() { log.NewRaw(nil).Log(log.RX, "x", []byte{1}) })
}
