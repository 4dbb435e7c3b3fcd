// Package adaptive provides authenticated encryption with automatic
// algorithm selection, used to seal client state at rest.
//
// Supported algorithms:
//
//   - AES-256-GCM: preferred when hardware AES support is available
//   - ChaCha20-Poly1305: fallback for other architectures
//
// Sealed envelopes record the algorithm that produced them, so a file
// written on one machine opens on another regardless of its preference.
//
// Usage:
//
//	key, err := adaptive.ParseKey(os.Getenv("HYPERLOCAL_SESSION_ENCRYPTION_KEY"))
//	c, err := adaptive.New(key)
//	sealed, err := adaptive.Seal(c, plaintext, aad)
//	plaintext, err := adaptive.Open(key, sealed, aad)
package adaptive
