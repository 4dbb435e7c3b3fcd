package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// DefaultTimeout bounds the total time spent running hooks.
const DefaultTimeout = 5 * time.Second

// Hook releases a resource.
type Hook func(context.Context) error

type namedHook struct {
	name string
	fn   Hook
}

// WithSignals returns a context cancelled on SIGINT or SIGTERM.
func WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// Handler runs registered hooks exactly once.
type Handler struct {
	timeout time.Duration

	mu    sync.Mutex
	hooks []namedHook

	once sync.Once
	err  error
	done chan struct{}
}

// NewHandler creates a new shutdown handler. A non-positive timeout
// selects DefaultTimeout.
func NewHandler(timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Handler{
		timeout: timeout,
		done:    make(chan struct{}),
	}
}

// OnShutdown registers a hook.
// Hooks are called in reverse order of registration.
func (h *Handler) OnShutdown(name string, fn Hook) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, namedHook{name: name, fn: fn})
}

// Shutdown runs the hooks. Later calls return the result of the first.
func (h *Handler) Shutdown() error {
	h.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		h.mu.Lock()
		hooks := make([]namedHook, len(h.hooks))
		copy(hooks, h.hooks)
		h.mu.Unlock()

		var errs []error
		for i := len(hooks) - 1; i >= 0; i-- {
			if err := hooks[i].fn(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", hooks[i].name, err))
			}
		}
		h.err = errors.Join(errs...)
		close(h.done)
	})
	return h.err
}

// Wait blocks until ctx is done and then runs Shutdown.
func (h *Handler) Wait(ctx context.Context) error {
	<-ctx.Done()
	return h.Shutdown()
}

// Done returns a channel that closes when shutdown is complete.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
