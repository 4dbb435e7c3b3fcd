package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/hyperlocal-go/internal/infra/confloader"
	"github.com/yndnr/hyperlocal-go/internal/telemetry/logger"
)

// legacyBaseURLEnv is the variable the web client reads its backend from.
// It is honoured when HYPERLOCAL_API_BASE_URL is not set.
const legacyBaseURLEnv = "VITE_API_BASE_URL"

// DefaultDir returns the directory holding CLI state.
func DefaultDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".hyperlocal")
}

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultDir(), "cli.yaml")
}

// SessionPath returns the configured session location, or the default for
// the backend.
func (c *CLIConfig) SessionPath() string {
	if c.Session.Path != "" {
		return ExpandPath(c.Session.Path)
	}
	if c.Session.Backend == BackendBadger {
		return filepath.Join(DefaultDir(), "session.db")
	}
	return filepath.Join(DefaultDir(), "session.yaml")
}

// HistoryPath returns the REPL history file.
func (c *CLIConfig) HistoryPath() string {
	if c.REPL.HistoryFile != "" {
		return ExpandPath(c.REPL.HistoryFile)
	}
	return filepath.Join(DefaultDir(), "history")
}

// ExpandPath replaces a leading "~" with the home directory.
func ExpandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// Load reads configuration from path (default path if empty), .env,
// the environment and finally overrides, keyed by dotted config keys.
// A missing file yields defaults.
func Load(path string, overrides map[string]any) (*CLIConfig, error) {
	explicit := path != ""
	if path == "" {
		path = DefaultConfigPath()
	}
	path = ExpandPath(path)

	opts := []confloader.Option{
		confloader.WithKnownKeys(knownKeys...),
		confloader.WithDotEnv(".env"),
	}
	if _, err := os.Stat(path); err == nil {
		opts = append(opts, confloader.WithConfigFile(path))
	} else if explicit && errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file %s not found", path)
	}

	l := confloader.NewLoader(opts...)
	cfg := Default()
	if err := l.Load(cfg); err != nil {
		return nil, err
	}

	if !l.Exists("api.base_url") {
		if v := os.Getenv(legacyBaseURLEnv); v != "" {
			cfg.API.BaseURL = v
		}
	}

	if err := l.Override(overrides, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg to path (default path if empty) with 0600 permissions.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	path = ExpandPath(path)

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate reports every invalid setting.
func (c *CLIConfig) Validate() error {
	var errs []error

	u, err := url.Parse(c.API.BaseURL)
	switch {
	case c.API.BaseURL == "":
		errs = append(errs, errors.New("api.base_url is required"))
	case err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "":
		errs = append(errs, fmt.Errorf("api.base_url %q must be an http(s) URL", c.API.BaseURL))
	}
	if c.API.Timeout < 0 {
		errs = append(errs, errors.New("api.timeout must not be negative"))
	}
	if c.API.RateLimit < 0 {
		errs = append(errs, errors.New("api.rate_limit must not be negative"))
	}
	if c.API.CAFile != "" {
		if _, err := os.Stat(ExpandPath(c.API.CAFile)); err != nil {
			errs = append(errs, fmt.Errorf("api.ca_file: %w", err))
		}
	}

	if !oneOf(c.Output, "table", "json", "yaml") {
		errs = append(errs, fmt.Errorf("output %q must be table, json or yaml", c.Output))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if !oneOf(c.Log.Format, "text", "json") {
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}

	if !oneOf(c.Session.Backend, BackendFile, BackendBadger, BackendMemory, BackendMemoryKV) {
		errs = append(errs, fmt.Errorf("session.backend %q must be file, badger, memory or memory-kv", c.Session.Backend))
	}
	if c.Session.EncryptionKey != "" && c.Session.Backend != BackendFile {
		errs = append(errs, errors.New("session.encryption_key is only supported by the file backend"))
	}

	return errors.Join(errs...)
}

func oneOf(v string, options ...string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}
