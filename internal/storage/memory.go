package storage

import (
	"context"
	"sync"
)

// MemoryEngine implements KV in process memory.
type MemoryEngine struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemoryEngine creates an empty in-memory engine.
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{data: make(map[string][]byte)}
}

// Get retrieves a copy of the value stored under key.
func (m *MemoryEngine) Get(ctx context.Context, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	v, ok := m.data[string(key)]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value under key.
func (m *MemoryEngine) Set(ctx context.Context, key, value []byte) error {
	return m.Apply(ctx, []Op{{Key: key, Value: value}})
}

// Delete removes key.
func (m *MemoryEngine) Delete(ctx context.Context, key []byte) error {
	return m.Apply(ctx, []Op{{Key: key}})
}

// Apply executes all operations under one lock.
func (m *MemoryEngine) Apply(ctx context.Context, ops []Op) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	for _, op := range ops {
		if op.IsDelete() {
			delete(m.data, string(op.Key))
			continue
		}
		m.data[string(op.Key)] = append([]byte(nil), op.Value...)
	}
	return nil
}

// Close marks the engine closed.
func (m *MemoryEngine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
