package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/yndnr/hyperlocal-go/internal/core/domain"
	"github.com/yndnr/hyperlocal-go/internal/telemetry/logger"
	"github.com/yndnr/hyperlocal-go/pkg/token"
)

// Store is the single owner of the client's token and current user.
//
// Store is safe for concurrent use. Readers always observe a consistent
// pair: either both fields from the same Set, or neither. Mutations are
// serialised through backend I/O and notification, so subscribers see
// changes in the order they were applied. Subscribers must not mutate the
// store from their callback.
type Store struct {
	writeMu sync.Mutex

	mu      sync.RWMutex
	snap    Snapshot
	backend Backend
	logger  logger.Logger

	subMu  sync.Mutex
	subs   map[int]func(Snapshot)
	nextID int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used by the store.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// Open creates a store over backend and rehydrates it. A persisted user
// without a token is discarded.
func Open(ctx context.Context, backend Backend, opts ...Option) (*Store, error) {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	s := &Store{
		backend: backend,
		logger:  logger.Default(),
		subs:    make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Set replaces the session. The backend is written first; on failure the
// in-memory state is unchanged.
func (s *Store) Set(ctx context.Context, tok string, user domain.User) error {
	if tok == "" {
		return domain.ErrEmptyToken
	}

	u := user.Redacted()
	next := Snapshot{Token: tok, User: &u}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.backend.Save(ctx, next); err != nil {
		return domain.ErrSessionStorage.WithCause(err)
	}
	s.mu.Lock()
	s.snap = next
	s.mu.Unlock()

	s.logger.Debug("session set", "user_id", u.ID, "fingerprint", token.Fingerprint(tok))
	s.notify(next)
	return nil
}

// Clear removes the token and user. Memory is always cleared; a backend
// failure is reported to the caller.
func (s *Store) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	was := s.snap.IsAuthenticated()
	s.snap = Snapshot{}
	s.mu.Unlock()
	err := s.backend.Clear(ctx)

	if was {
		s.logger.Debug("session cleared")
		s.notify(Snapshot{})
	}
	if err != nil {
		return domain.ErrSessionStorage.WithCause(err)
	}
	return nil
}

// Reload re-reads the backend, picking up changes written by another
// process. Subscribers are notified if the session changed.
func (s *Store) Reload(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	loaded, err := s.backend.Load(ctx)
	if err != nil {
		return domain.ErrSessionStorage.WithCause(err)
	}
	stale := loaded.User != nil && loaded.Token == ""
	loaded = loaded.normalize()

	s.mu.Lock()
	changed := !sameSession(s.snap, loaded)
	s.snap = loaded
	s.mu.Unlock()
	if stale {
		if err := s.backend.Clear(ctx); err != nil {
			s.logger.Warn("failed to discard tokenless session", "error", err)
		}
	}

	if changed {
		s.logger.Debug("session reloaded", "authenticated", loaded.IsAuthenticated())
		s.notify(loaded)
	}
	return nil
}

// Token returns the current token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Token
}

// User returns a copy of the current user, or nil.
func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone().User
}

// UserID returns the current user's id.
func (s *Store) UserID() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap.User == nil {
		return 0, false
	}
	return s.snap.User.ID, true
}

// Snapshot returns a consistent copy of the session.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

// IsAuthenticated reports whether a token is present.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// Subscribe registers fn to be called after every change. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Close releases the backend.
func (s *Store) Close() error {
	if err := s.backend.Close(); err != nil {
		return fmt.Errorf("close session backend: %w", err)
	}
	return nil
}

func (s *Store) notify(snap Snapshot) {
	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap.clone())
	}
}

func sameSession(a, b Snapshot) bool {
	if !token.Equal(a.Token, b.Token) {
		return false
	}
	if (a.User == nil) != (b.User == nil) {
		return false
	}
	return a.User == nil || *a.User == *b.User
}
