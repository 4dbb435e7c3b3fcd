package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// PlaceholderPrefix marks tokens generated on the client.
const PlaceholderPrefix = "hlst_"

// placeholderBytes is the amount of randomness in a placeholder body.
const placeholderBytes = 32

// fingerprintLen is the number of hex characters kept by Fingerprint.
const fingerprintLen = 12

// Placeholder returns a fresh client-side session token.
func Placeholder() (string, error) {
	b := make([]byte, placeholderBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return PlaceholderPrefix + base64.RawURLEncoding.EncodeToString(b), nil
}

// IsPlaceholder reports whether tok was produced by Placeholder.
func IsPlaceholder(tok string) bool {
	return strings.HasPrefix(tok, PlaceholderPrefix)
}

// Fingerprint returns a short, stable identifier for tok that is safe to
// print. The empty token has the empty fingerprint.
func Fingerprint(tok string) string {
	if tok == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}

// Equal compares two tokens in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
