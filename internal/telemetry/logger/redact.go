package logger

import (
	"log/slog"
	"strings"
)

// Value prefixes that identify credentials regardless of the key name.
var sensitiveValuePrefixes = []string{
	"hlst_",   // client placeholder session token
	"Bearer ", // Authorization header value
}

// Key fragments that mark a string attribute as sensitive.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"authorization",
	"bearer",
	"encryption_key",
}

// RedactedValue replaces sensitive values in logs and displayed config.
const RedactedValue = "***REDACTED***"

// redactedBody replaces everything after a credential prefix.
const redactedBody = "***"

// redactSensitive masks string attributes that look like credentials.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		s := a.Value.String()
		if masked, ok := maskKnownPrefix(s); ok {
			return slog.String(a.Key, masked)
		}
		if s != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, RedactedValue)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

func maskKnownPrefix(s string) (string, bool) {
	for _, prefix := range sensitiveValuePrefixes {
		if strings.HasPrefix(s, prefix) {
			return prefix + redactedBody, true
		}
	}
	return s, false
}

// RedactString masks value if it carries a known credential prefix.
func RedactString(value string) string {
	masked, _ := maskKnownPrefix(value)
	return masked
}

// IsSensitiveKey reports whether a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(k, pattern) {
			return true
		}
	}
	return false
}

// IsSensitiveValue reports whether value carries a known credential prefix.
func IsSensitiveValue(value string) bool {
	_, ok := maskKnownPrefix(value)
	return ok
}
