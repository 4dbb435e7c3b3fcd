package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func newJSON(t *testing.T, level string) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := New(Config{Level: level, Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l, &buf
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log %q: %v", buf.String(), err)
	}
	return entry
}

func TestNew_Formats(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"json", `"msg":"hello"`},
		{"text", "msg=hello"},
		{"", "msg=hello"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		l, err := New(Config{Level: "info", Format: tt.format, Output: &buf})
		if err != nil {
			t.Fatalf("New(%q) error = %v", tt.format, err)
		}
		l.Info("hello")
		if !strings.Contains(buf.String(), tt.want) {
			t.Errorf("format %q output = %q, want %q", tt.format, buf.String(), tt.want)
		}
	}
}

func TestNew_Rejects(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("unknown level accepted")
	}
	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, buf := newJSON(t, "warn")

	l.Debug("debug")
	l.Info("info")
	if buf.Len() != 0 {
		t.Errorf("expected no output below warn, got %q", buf.String())
	}

	l.Warn("careful", "component", "session")
	entry := decode(t, buf)
	if entry["level"] != "WARN" || entry["component"] != "session" {
		t.Errorf("entry = %v", entry)
	}
}

func TestLogger_With(t *testing.T) {
	l, buf := newJSON(t, "info")
	l.With("service", "bookings").Info("listed")

	entry := decode(t, buf)
	if entry["service"] != "bookings" {
		t.Errorf("service = %v, want bookings", entry["service"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"", slog.LevelWarn},
		{" error ", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseLevel("trace"); err == nil {
		t.Error("ParseLevel(trace) should fail")
	}
}

func TestDiscardAndSlog(t *testing.T) {
	d := Discard()
	d.Error("dropped")

	if Slog(d) == nil {
		t.Error("Slog() returned nil")
	}
	if Default() != Default() {
		t.Error("Default() should return the same logger")
	}
}
