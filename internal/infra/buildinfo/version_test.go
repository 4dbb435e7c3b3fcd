package buildinfo

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()

	tests := []struct {
		name  string
		value string
	}{
		{"Version", info.Version},
		{"Commit", info.Commit},
		{"BuildTime", info.BuildTime},
		{"GoVersion", info.GoVersion},
		{"Platform", info.Platform},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value == "" {
				t.Errorf("%s should not be empty", tt.name)
			}
		})
	}

	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
}

func TestGet_LdflagsWin(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "1.2.3"
	if got := Get().Version; got != "1.2.3" {
		t.Errorf("Version = %q, want 1.2.3", got)
	}
	if got := UserAgent(); got != "hyperlocal-cli/1.2.3" {
		t.Errorf("UserAgent() = %q", got)
	}
}

func TestString(t *testing.T) {
	s := String()
	if !strings.Contains(s, " built at ") || !strings.Contains(s, runtime.GOOS) {
		t.Errorf("String() = %q", s)
	}
}
