// Package session holds the client's authentication state.
//
// A Store owns the bearer token and the current user record. Both are set
// and cleared together and written through to a Backend before the call
// returns, so a new process started right after login sees the session.
//
// Persistence uses two well-known keys, "authToken" and "user". Three
// backends are available:
//   - MemoryBackend: no persistence, for tests and one-shot commands
//   - FileBackend: a YAML document, optionally sealed at rest
//   - KVBackend: an embedded key-value engine (Badger)
package session
