package confloader

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "HYPERLOCAL_"

// Loader layers configuration sources over the values already held by the
// target struct: YAML file, then .env files, then the environment. Command
// line values are layered last with Override.
type Loader struct {
	k      *koanf.Koanf
	prefix string
	file   string
	dotEnv []string
	known  map[string]string
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) { l.prefix = prefix }
}

// WithConfigFile reads path as YAML. The file must exist.
func WithConfigFile(path string) Option {
	return func(l *Loader) { l.file = path }
}

// WithDotEnv applies .env files to the process environment before it is
// read. Missing files are skipped and variables that are already set win.
func WithDotEnv(paths ...string) Option {
	return func(l *Loader) { l.dotEnv = append(l.dotEnv, paths...) }
}

// WithKnownKeys lets env variables address keys that contain underscores:
// HYPERLOCAL_API_BASE_URL resolves to "api.base_url" rather than
// "api.base.url" once that key is known.
func WithKnownKeys(keys ...string) Option {
	return func(l *Loader) {
		for _, k := range keys {
			l.known[strings.ReplaceAll(k, ".", "_")] = k
		}
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:      koanf.New("."),
		prefix: DefaultEnvPrefix,
		known:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads every source and unmarshals the result into target. Fields no
// source sets keep their current value.
func (l *Loader) Load(target any) error {
	stages := []struct {
		name string
		run  func() error
	}{
		{"config file", l.loadFile},
		{".env", l.loadDotEnv},
		{"environment", l.loadEnv},
	}
	for _, s := range stages {
		if err := s.run(); err != nil {
			return fmt.Errorf("load %s: %w", s.name, err)
		}
	}
	if err := l.k.Unmarshal("", target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

// Override layers values, keyed by dotted path, over everything loaded so
// far and unmarshals again into target.
func (l *Loader) Override(values map[string]any, target any) error {
	if len(values) == 0 {
		return nil
	}
	if err := l.k.Load(mapProvider(values), nil); err != nil {
		return fmt.Errorf("load overrides: %w", err)
	}
	if err := l.k.Unmarshal("", target); err != nil {
		return fmt.Errorf("apply overrides: %w", err)
	}
	return nil
}

// Exists reports whether any source set key.
func (l *Loader) Exists(key string) bool {
	return l.k.Exists(key)
}

func (l *Loader) loadFile() error {
	if l.file == "" {
		return nil
	}
	return l.k.Load(file.Provider(l.file), yaml.Parser())
}

func (l *Loader) loadDotEnv() error {
	for _, p := range l.dotEnv {
		err := godotenv.Load(p)
		switch {
		case err == nil, errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// loadEnv maps HYPERLOCAL_LOG_LEVEL=debug to log.level.
func (l *Loader) loadEnv() error {
	return l.k.Load(env.Provider(l.prefix, ".", l.envKey), nil)
}

func (l *Loader) envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, l.prefix))
	if k, ok := l.known[s]; ok {
		return k
	}
	return strings.ReplaceAll(s, "_", ".")
}
