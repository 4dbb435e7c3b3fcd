package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Logger is the logging interface used across the client.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// Config selects the level, encoding and destination of log output.
type Config struct {
	Level  string    // debug, info, warn, error
	Format string    // text or json
	Output io.Writer // nil means os.Stderr
}

// DefaultConfig logs warnings and errors as text on stderr.
func DefaultConfig() Config {
	return Config{Level: "warn", Format: "text", Output: os.Stderr}
}

// slogLogger adapts *slog.Logger to Logger.
type slogLogger struct {
	*slog.Logger
}

func (l slogLogger) With(args ...any) Logger {
	return slogLogger{l.Logger.With(args...)}
}

// New builds a logger from cfg. Sensitive attributes are masked on output.
func New(cfg Config) (Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return redactSensitive(a)
		},
	}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		h = slog.NewTextHandler(out, opts)
	case "json":
		h = slog.NewJSONHandler(out, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return slogLogger{slog.New(h)}, nil
}

// ParseLevel maps a level name to slog.Level. Empty means warn.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", name)
}

// Discard returns a logger that drops everything.
func Discard() Logger {
	return slogLogger{slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// Slog exposes l as a *slog.Logger for libraries that want one.
// Loggers not created by this package fall back to slog.Default.
func Slog(l Logger) *slog.Logger {
	if sl, ok := l.(slogLogger); ok {
		return sl.Logger
	}
	return slog.Default()
}

var defaultLogger = sync.OnceValue(func() Logger {
	l, _ := New(DefaultConfig())
	return l
})

// Default returns the stderr logger used by components built without one.
func Default() Logger {
	return defaultLogger()
}
