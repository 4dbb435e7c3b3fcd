// Package storage provides the embedded key-value layer used for client
// state persistence.
//
// This package contains:
//
//   - kv.go: KV interface and batch operations
//   - badger.go: Badger v3 implementation (durable, synchronous writes)
//   - memory.go: in-memory implementation for tests and ephemeral sessions
//
// Writes are applied atomically per batch so callers can persist several
// related keys as one unit.
package storage
