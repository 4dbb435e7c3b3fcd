package config

import (
	"time"
)

// DefaultAPIBaseURL is the hosted marketplace backend.
const DefaultAPIBaseURL = "https://hyperlocal-backend-8mjq.onrender.com"

// Session backends.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendMemory = "memory"
	// BackendMemoryKV keeps the session in an in-process KV engine with the
	// same key layout as badger.
	BackendMemoryKV = "memory-kv"
)

// CLIConfig is the configuration for hyperlocal-cli.
type CLIConfig struct {
	API     APIConfig     `koanf:"api" yaml:"api"`
	Output  string        `koanf:"output" yaml:"output"` // table, json, yaml
	Log     LogConfig     `koanf:"log" yaml:"log"`
	Session SessionConfig `koanf:"session" yaml:"session"`
	REPL    REPLConfig    `koanf:"repl" yaml:"repl"`
}

// APIConfig controls the HTTP client.
type APIConfig struct {
	BaseURL   string        `koanf:"base_url" yaml:"base_url"`
	Timeout   time.Duration `koanf:"timeout" yaml:"timeout"`
	RateLimit float64       `koanf:"rate_limit" yaml:"rate_limit"` // requests per second, 0 = off
	RateBurst int           `koanf:"rate_burst" yaml:"rate_burst"`
	CAFile    string        `koanf:"ca_file" yaml:"ca_file,omitempty"`
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// SessionConfig controls where the session is persisted.
type SessionConfig struct {
	Backend       string `koanf:"backend" yaml:"backend"`
	Path          string `koanf:"path" yaml:"path,omitempty"`
	EncryptionKey string `koanf:"encryption_key" yaml:"encryption_key,omitempty"`
}

// REPLConfig controls the interactive shell.
type REPLConfig struct {
	HistoryFile  string `koanf:"history_file" yaml:"history_file,omitempty"`
	WatchSession bool   `koanf:"watch_session" yaml:"watch_session"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		API: APIConfig{
			BaseURL:   DefaultAPIBaseURL,
			Timeout:   30 * time.Second,
			RateBurst: 1,
		},
		Output: "table",
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Session: SessionConfig{
			Backend: BackendFile,
		},
		REPL: REPLConfig{
			WatchSession: true,
		},
	}
}

// knownKeys lists keys containing underscores, so env variables resolve to them.
var knownKeys = []string{
	"api.base_url",
	"api.rate_limit",
	"api.rate_burst",
	"api.ca_file",
	"session.encryption_key",
	"repl.history_file",
	"repl.watch_session",
}
