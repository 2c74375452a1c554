package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestWithFields_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf).WithFields("run_id", "abc", "provider", "gcp")

	log.Info("collector started")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "collector started", entry["msg"])
	assert.Equal(t, "abc", entry["run_id"])
	assert.Equal(t, "gcp", entry["provider"])
}

func TestNewWithWriter_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("error", &buf)

	log.Info("hidden")
	log.Debug("hidden")
	assert.Zero(t, buf.Len())

	log.Error("shown")
	assert.Contains(t, buf.String(), "shown")
}
