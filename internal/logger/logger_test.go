package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_DefaultLevelDropsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf)

	log.DebugContextf(context.Background(), "request %d", 1)
	if buf.Len() != 0 {
		t.Errorf("expected debug to be dropped, got %q", buf.String())
	}

	log.WarnContextf(context.Background(), "slow %s", "call")
	if !strings.Contains(buf.String(), "slow call") {
		t.Errorf("expected warning in output, got %q", buf.String())
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, WithLevel("DEBUG"), WithFormat("json"))

	log.Debug("hello", "k", "v")
	if !strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), `"k":"v"`) {
		t.Errorf("expected json output, got %q", buf.String())
	}
}
