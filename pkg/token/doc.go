// Package token provides local session token generation and fingerprinting.
//
// Placeholder Token Format:
//
//   - Prefix: hlst_ (5 characters)
//   - Body: 43 characters of Base64 RawURL encoded random bytes
//   - Total: 48 characters
//
// Placeholders stand in for a bearer token when the login endpoint
// answers without one. Fingerprints are short SHA-256 digests that can be
// logged in place of a credential.
package token
