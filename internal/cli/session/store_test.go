package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/hyperlocal-go/internal/core/domain"
)

// failingBackend wraps MemoryBackend and fails writes on demand.
type failingBackend struct {
	MemoryBackend
	failSave  bool
	failClear bool
}

func (b *failingBackend) Save(ctx context.Context, s Snapshot) error {
	if b.failSave {
		return errors.New("disk full")
	}
	return b.MemoryBackend.Save(ctx, s)
}

func (b *failingBackend) Clear(ctx context.Context) error {
	if b.failClear {
		return errors.New("read-only filesystem")
	}
	return b.MemoryBackend.Clear(ctx)
}

var asha = domain.User{ID: 7, Name: "Asha", Email: "asha@example.com", Password: "hunter22"}

func TestStore_SetAndRead(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, NewMemoryBackend())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if s.IsAuthenticated() {
		t.Error("new store should not be authenticated")
	}
	if s.User() != nil {
		t.Error("new store should have no user")
	}

	if err := s.Set(ctx, "tok-1", asha); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := s.Token(); got != "tok-1" {
		t.Errorf("Token() = %q, want %q", got, "tok-1")
	}
	u := s.User()
	if u == nil || u.ID != 7 || u.Email != "asha@example.com" {
		t.Fatalf("User() = %+v", u)
	}
	if u.Password != "" {
		t.Error("stored user should not keep the password")
	}
	if id, ok := s.UserID(); !ok || id != 7 {
		t.Errorf("UserID() = %d, %v", id, ok)
	}

	// Mutating the returned copy does not affect the store.
	u.Name = "Mallory"
	if s.User().Name != "Asha" {
		t.Error("User() should return a copy")
	}
}

func TestStore_SetEmptyToken(t *testing.T) {
	ctx := context.Background()
	s, _ := Open(ctx, NewMemoryBackend())
	_ = s.Set(ctx, "tok-1", asha)

	err := s.Set(ctx, "", domain.User{ID: 9})
	if !errors.Is(err, domain.ErrEmptyToken) {
		t.Fatalf("Set(\"\") error = %v, want ErrEmptyToken", err)
	}
	if s.Token() != "tok-1" || s.User().ID != 7 {
		t.Error("state should be untouched after rejected Set")
	}
}

func TestStore_SetPersistFailure(t *testing.T) {
	ctx := context.Background()
	b := &failingBackend{}
	s, _ := Open(ctx, b)
	_ = s.Set(ctx, "tok-1", asha)

	b.failSave = true
	err := s.Set(ctx, "tok-2", domain.User{ID: 9})
	if !errors.Is(err, domain.ErrSessionStorage) {
		t.Fatalf("Set() error = %v, want ErrSessionStorage", err)
	}
	if s.Token() != "tok-1" {
		t.Errorf("Token() = %q, want previous token", s.Token())
	}
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	s, _ := Open(ctx, b)
	_ = s.Set(ctx, "tok-1", asha)

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if s.IsAuthenticated() || s.User() != nil {
		t.Error("store should be empty after Clear")
	}
	persisted, _ := b.Load(ctx)
	if persisted.Token != "" || persisted.User != nil {
		t.Errorf("backend should be empty after Clear, got %+v", persisted)
	}

	// Clearing an empty store is fine.
	if err := s.Clear(ctx); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}

func TestStore_ClearBackendFailure(t *testing.T) {
	ctx := context.Background()
	b := &failingBackend{failClear: true}
	s, _ := Open(ctx, b)
	_ = s.Set(ctx, "tok-1", asha)

	err := s.Clear(ctx)
	if !errors.Is(err, domain.ErrSessionStorage) {
		t.Errorf("Clear() error = %v, want ErrSessionStorage", err)
	}
	if s.IsAuthenticated() {
		t.Error("memory should be cleared even when the backend fails")
	}
}

func TestStore_Rehydrate(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	s1, _ := Open(ctx, b)
	_ = s1.Set(ctx, "tok-1", asha)

	s2, err := Open(ctx, b)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if s2.Token() != "tok-1" || s2.User() == nil || s2.User().ID != 7 {
		t.Errorf("rehydrated snapshot = %+v", s2.Snapshot())
	}
}

func TestStore_RehydrateUserWithoutToken(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	_ = b.Save(ctx, Snapshot{User: &domain.User{ID: 3}})

	s, err := Open(ctx, b)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if s.User() != nil || s.IsAuthenticated() {
		t.Error("tokenless user should be discarded")
	}
	persisted, _ := b.Load(ctx)
	if persisted.User != nil {
		t.Error("tokenless user should be removed from the backend")
	}
}

func TestStore_ReloadAndSubscribe(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	s, _ := Open(ctx, b)

	var got []Snapshot
	unsubscribe := s.Subscribe(func(snap Snapshot) {
		got = append(got, snap)
	})

	// Another process logs in.
	_ = b.Save(ctx, Snapshot{Token: "other", User: &domain.User{ID: 2}})
	if err := s.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if s.Token() != "other" {
		t.Errorf("Token() = %q after reload", s.Token())
	}

	// Unchanged reload does not notify.
	_ = s.Reload(ctx)

	_ = s.Clear(ctx)

	if len(got) != 2 {
		t.Fatalf("notifications = %d, want 2", len(got))
	}
	if got[0].Token != "other" || got[1].IsAuthenticated() {
		t.Errorf("notifications = %+v", got)
	}

	unsubscribe()
	_ = s.Set(ctx, "tok", asha)
	if len(got) != 2 {
		t.Error("unsubscribed callback should not be called")
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s, _ := Open(ctx, NewMemoryBackend())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = s.Set(ctx, "tok", asha)
			} else {
				_ = s.Clear(ctx)
			}
		}(i)
		go func() {
			defer wg.Done()
			snap := s.Snapshot()
			if snap.Token == "" && snap.User != nil {
				t.Error("observed user without token")
			}
			if snap.Token != "" && snap.User == nil {
				t.Error("observed token without user")
			}
		}()
	}
	wg.Wait()
}

func TestStore_NotificationsFollowFinalState(t *testing.T) {
	ctx := context.Background()
	s, _ := Open(ctx, NewMemoryBackend())

	var mu sync.Mutex
	var last Snapshot
	notified := false
	s.Subscribe(func(snap Snapshot) {
		mu.Lock()
		last, notified = snap, true
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Set(ctx, "tok", asha)
		}()
		go func() {
			defer wg.Done()
			_ = s.Clear(ctx)
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if !notified {
		t.Fatal("no notifications")
	}
	if last.IsAuthenticated() != s.IsAuthenticated() {
		t.Errorf("last notification authenticated = %v, store = %v", last.IsAuthenticated(), s.IsAuthenticated())
	}
}

// pausingBackend reads the stored snapshot, then blocks Load until released.
type pausingBackend struct {
	MemoryBackend
	armed   bool
	entered chan struct{}
	release chan struct{}
}

func (b *pausingBackend) Load(ctx context.Context) (Snapshot, error) {
	snap, err := b.MemoryBackend.Load(ctx)
	if b.armed {
		b.armed = false
		close(b.entered)
		<-b.release
	}
	return snap, err
}

func TestStore_ReloadDoesNotUndoConcurrentSet(t *testing.T) {
	ctx := context.Background()
	b := &pausingBackend{entered: make(chan struct{}), release: make(chan struct{})}
	s, err := Open(ctx, b)
	if err != nil {
		t.Fatal(err)
	}

	b.armed = true
	reloaded := make(chan error, 1)
	go func() { reloaded <- s.Reload(ctx) }()
	<-b.entered

	set := make(chan error, 1)
	go func() { set <- s.Set(ctx, "fresh", asha) }()

	select {
	case <-set:
		t.Fatal("Set completed while Reload was reading the backend")
	case <-time.After(50 * time.Millisecond):
	}
	close(b.release)

	if err := <-reloaded; err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if err := <-set; err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := s.Token(); got != "fresh" {
		t.Errorf("Token() = %q, want fresh", got)
	}
}
