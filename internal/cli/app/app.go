package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/yndnr/hyperlocal-go/internal/cli/api"
	"github.com/yndnr/hyperlocal-go/internal/cli/config"
	"github.com/yndnr/hyperlocal-go/internal/cli/connection"
	"github.com/yndnr/hyperlocal-go/internal/cli/guard"
	"github.com/yndnr/hyperlocal-go/internal/cli/session"
	"github.com/yndnr/hyperlocal-go/internal/infra/shutdown"
	"github.com/yndnr/hyperlocal-go/internal/infra/tlsroots"
	"github.com/yndnr/hyperlocal-go/internal/storage"
	"github.com/yndnr/hyperlocal-go/internal/telemetry/logger"
	"github.com/yndnr/hyperlocal-go/internal/telemetry/metric"
	"github.com/yndnr/hyperlocal-go/pkg/crypto/adaptive"
)

// Session event labels.
const (
	EventLogin    = "login"
	EventRegister = "register"
	EventLogout   = "logout"
	EventExpired  = "expired"
	EventReload   = "reload"
)

// App is the assembled client.
type App struct {
	Config    *config.CLIConfig
	Logger    logger.Logger
	Metrics   *metric.Registry
	Session   *session.Store
	HTTP      *connection.HTTPClient
	API       *api.Client
	Guard     *guard.Guard
	Navigator *guard.Navigator

	closer *shutdown.Handler
}

// Option customises New.
type Option func(*options)

type options struct {
	logger     logger.Logger
	logOutput  io.Writer
	backend    session.Backend
	clientOpts []connection.Option
}

// WithLogger overrides the logger built from config.
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithLogOutput sets where the config-built logger writes.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logOutput = w }
}

// WithSessionBackend overrides the backend selected by config.
func WithSessionBackend(b session.Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithClientOptions appends HTTP client options, applied after the ones
// derived from config.
func WithClientOptions(opts ...connection.Option) Option {
	return func(o *options) { o.clientOpts = append(o.clientOpts, opts...) }
}

// New builds the client graph from cfg.
func New(ctx context.Context, cfg *config.CLIConfig, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	log := o.logger
	if log == nil {
		lc := logger.DefaultConfig()
		lc.Level = cfg.Log.Level
		lc.Format = cfg.Log.Format
		if o.logOutput != nil {
			lc.Output = o.logOutput
		}
		var err error
		if log, err = logger.New(lc); err != nil {
			return nil, fmt.Errorf("create logger: %w", err)
		}
	}

	a := &App{
		Config:  cfg,
		Logger:  log,
		Metrics: metric.NewRegistry(),
		closer:  shutdown.NewHandler(shutdown.DefaultTimeout),
	}

	backend := o.backend
	if backend == nil {
		var err error
		if backend, err = openBackend(cfg, log); err != nil {
			return nil, err
		}
	}

	store, err := session.Open(ctx, backend, session.WithLogger(log.With("component", "session")))
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("open session: %w", err)
	}
	a.Session = store
	a.closer.OnShutdown("session", func(context.Context) error { return store.Close() })
	a.Metrics.MustRegister(metric.NewCollector(store))

	clientOpts := []connection.Option{
		connection.WithLogger(log.With("component", "http")),
		connection.WithMetrics(a.Metrics),
	}
	if cfg.API.Timeout > 0 {
		clientOpts = append(clientOpts, connection.WithTimeout(cfg.API.Timeout))
	}
	if cfg.API.RateLimit > 0 {
		clientOpts = append(clientOpts, connection.WithRateLimit(cfg.API.RateLimit, cfg.API.RateBurst))
	}
	tlsCfg, err := tlsroots.ClientConfig(config.ExpandPath(cfg.API.CAFile))
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("load CA file: %w", err)
	}
	if tlsCfg != nil {
		clientOpts = append(clientOpts, connection.WithTLSConfig(tlsCfg))
	}
	clientOpts = append(clientOpts, o.clientOpts...)

	a.HTTP = connection.NewHTTPClient(cfg.API.BaseURL, store, clientOpts...)
	a.API = api.New(a.HTTP, store)
	a.Guard = guard.New(store)
	a.Navigator = guard.NewNavigator(a.Guard)

	a.HTTP.OnUnauthorized(func(ctx context.Context, ev connection.UnauthorizedEvent) {
		a.Metrics.SessionEvents.WithLabelValues(EventExpired).Inc()
		a.Navigator.HandleUnauthorized(ctx)
	})
	a.closer.OnShutdown("subscriptions", unsubscribeAll(
		store.Subscribe(func(s session.Snapshot) {
			log.Debug("session changed", "authenticated", s.IsAuthenticated())
		}),
		a.Navigator.Subscribe(func(from, to string) {
			log.Debug("location changed", "from", from, "to", to)
		}),
	))
	log.Debug("client ready", "api", a.HTTP.BaseURL(), "backend", cfg.Session.Backend)

	return a, nil
}

// openBackend selects the session backend named by cfg.
func openBackend(cfg *config.CLIConfig, log logger.Logger) (session.Backend, error) {
	switch cfg.Session.Backend {
	case config.BackendMemory:
		return session.NewMemoryBackend(), nil

	case config.BackendMemoryKV:
		return session.NewKVBackend(storage.NewMemoryEngine()), nil

	case config.BackendBadger:
		kv, err := storage.NewBadgerEngine(storage.DefaultKVConfig(cfg.SessionPath()), logger.Slog(log))
		if err != nil {
			return nil, fmt.Errorf("open session database: %w", err)
		}
		return session.NewKVBackend(kv), nil

	case config.BackendFile, "":
		var fopts []session.FileOption
		if cfg.Session.EncryptionKey != "" {
			key, err := adaptive.ParseKey(cfg.Session.EncryptionKey)
			if err != nil {
				return nil, fmt.Errorf("session.encryption_key: %w", err)
			}
			fopts = append(fopts, session.WithSealKey(key))
		}
		fb, err := session.NewFileBackend(cfg.SessionPath(), fopts...)
		if err != nil {
			return nil, err
		}
		log.Debug("session file", "path", fb.Path(), "sealed", fb.Sealed())
		return fb, nil

	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}

func unsubscribeAll(cancels ...func()) shutdown.Hook {
	return func(context.Context) error {
		for _, cancel := range cancels {
			cancel()
		}
		return nil
	}
}

// OnClose registers a hook run by Close before the session is closed.
func (a *App) OnClose(name string, fn shutdown.Hook) {
	a.closer.OnShutdown(name, fn)
}

// Close releases the session backend and any registered resources.
// It is safe to call more than once.
func (a *App) Close() error {
	if a == nil || a.closer == nil {
		return nil
	}
	err := a.closer.Shutdown()
	if errors.Is(err, context.DeadlineExceeded) {
		a.Logger.Warn("shutdown timed out", "error", err)
	}
	return err
}
