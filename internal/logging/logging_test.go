package logging

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	orig := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(orig) })
	fn()
	return buf.String()
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LogLevel(42), "unknown(42)"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestInfoIncludesPrefix(t *testing.T) {
	out := captureOutput(t, func() {
		Info("serving %d pages", 42)
	})
	if !strings.Contains(out, "[INFO] serving 42 pages") {
		t.Errorf("output = %q", out)
	}
}

func TestWarnAndErrorAlwaysPrint(t *testing.T) {
	out := captureOutput(t, func() {
		Warn("render slow")
		Error("render failed")
	})
	if !strings.Contains(out, "[WARN] render slow") {
		t.Errorf("warn missing from %q", out)
	}
	if !strings.Contains(out, "[ERROR] render failed") {
		t.Errorf("error missing from %q", out)
	}
}

func TestDebugSuppressedAtInfoLevel(t *testing.T) {
	if IsDebugEnabled() {
		t.Skip("debug logging enabled in this environment")
	}
	out := captureOutput(t, func() {
		Debug("verbose detail")
	})
	if strings.Contains(out, "verbose detail") {
		t.Errorf("debug output leaked at info level: %q", out)
	}
}
