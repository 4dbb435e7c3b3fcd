package session

import (
	"context"
	"sync"
)

// MemoryBackend keeps the session in process memory only.
type MemoryBackend struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) Load(_ context.Context) (Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snap.clone(), nil
}

func (b *MemoryBackend) Save(_ context.Context, s Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snap = s.clone()
	return nil
}

func (b *MemoryBackend) Clear(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snap = Snapshot{}
	return nil
}

func (b *MemoryBackend) Close() error {
	return nil
}
