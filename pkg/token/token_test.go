package token

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestPlaceholder(t *testing.T) {
	tok, err := Placeholder()
	if err != nil {
		t.Fatalf("Placeholder() error = %v", err)
	}
	if len(tok) != 48 {
		t.Errorf("len = %d, want 48", len(tok))
	}
	if !IsPlaceholder(tok) {
		t.Errorf("IsPlaceholder(%q) = false", tok)
	}
	body := strings.TrimPrefix(tok, PlaceholderPrefix)
	if decoded, err := base64.RawURLEncoding.DecodeString(body); err != nil || len(decoded) != placeholderBytes {
		t.Errorf("body %q decodes to %d bytes, err %v", body, len(decoded), err)
	}

	other, _ := Placeholder()
	if other == tok {
		t.Error("two placeholders should differ")
	}
}

func TestIsPlaceholder(t *testing.T) {
	tests := []struct {
		tok  string
		want bool
	}{
		{"hlst_abc", true},
		{"eyJhbGciOiJIUzI1NiJ9.x.y", false},
		{"", false},
		{"HLST_abc", false},
	}
	for _, tt := range tests {
		if got := IsPlaceholder(tt.tok); got != tt.want {
			t.Errorf("IsPlaceholder(%q) = %v, want %v", tt.tok, got, tt.want)
		}
	}
}

func TestFingerprint(t *testing.T) {
	if Fingerprint("") != "" {
		t.Error("empty token should have an empty fingerprint")
	}
	a := Fingerprint("server-token")
	if len(a) != fingerprintLen {
		t.Errorf("len = %d, want %d", len(a), fingerprintLen)
	}
	if a != Fingerprint("server-token") {
		t.Error("fingerprint should be stable")
	}
	if a == Fingerprint("server-token2") {
		t.Error("different tokens should differ")
	}
	if strings.Contains(a, "server") {
		t.Error("fingerprint leaks the token")
	}
}

func TestEqual(t *testing.T) {
	if !Equal("abc", "abc") {
		t.Error("Equal(abc, abc) = false")
	}
	if Equal("abc", "abd") || Equal("abc", "ab") {
		t.Error("Equal should reject different tokens")
	}
}
