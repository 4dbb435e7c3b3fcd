package storage

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrClosed      = errors.New("kv engine closed")
)

// KV defines the interface for embedded key-value storage.
//
// Implementation requirements:
//   - Thread-safe: concurrent reads/writes must be safe
//   - Synchronous: a write has reached the engine when the call returns,
//     so an immediately following Get observes it
//   - Atomic batches: all operations in an Apply call become visible together
type KV interface {
	// Get retrieves a value by key.
	// Returns ErrKeyNotFound if key doesn't exist.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set stores a key-value pair.
	Set(ctx context.Context, key, value []byte) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key []byte) error

	// Apply executes a batch of operations atomically.
	Apply(ctx context.Context, ops []Op) error

	// Close releases engine resources.
	Close() error
}

// Op is a single batch operation. A nil Value deletes the key.
type Op struct {
	Key   []byte
	Value []byte
}

// SetOp returns an operation that stores value under key.
func SetOp(key string, value []byte) Op {
	return Op{Key: []byte(key), Value: value}
}

// DeleteOp returns an operation that removes key.
func DeleteOp(key string) Op {
	return Op{Key: []byte(key)}
}

// IsDelete reports whether the operation removes its key.
func (o Op) IsDelete() bool {
	return o.Value == nil
}

// KVConfig holds configuration for the KV engine.
type KVConfig struct {
	// Dir is the storage directory.
	Dir string

	// InMemory runs Badger without touching disk.
	InMemory bool

	// SyncWrites fsyncs every write before returning.
	// Default: true
	SyncWrites bool

	// ValueLogFileSize is the max value log file size in bytes.
	// Session state is tiny, so the default is kept small.
	// Default: 16MB
	ValueLogFileSize int64
}

// DefaultKVConfig returns the default configuration for dir.
func DefaultKVConfig(dir string) KVConfig {
	return KVConfig{
		Dir:              dir,
		SyncWrites:       true,
		ValueLogFileSize: 16 << 20,
	}
}
