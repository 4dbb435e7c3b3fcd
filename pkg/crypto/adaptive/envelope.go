package adaptive

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// envelopeMagic starts every sealed envelope.
const envelopeMagic = "HLSEAL1"

// ErrNotSealed is returned by Open for data that is not a sealed envelope.
var ErrNotSealed = errors.New("adaptive: data is not a sealed envelope")

// Seal encrypts plaintext and wraps it in a text envelope of the form
// "HLSEAL1:<cipher-type>:<base64 ciphertext>\n".
func Seal(c Cipher, plaintext, additionalData []byte) ([]byte, error) {
	ct, err := c.Encrypt(plaintext, additionalData)
	if err != nil {
		return nil, fmt.Errorf("adaptive: seal: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(envelopeMagic)
	buf.WriteByte(':')
	buf.WriteString(string(c.Type()))
	buf.WriteByte(':')
	buf.WriteString(base64.StdEncoding.EncodeToString(ct))
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// IsSealed reports whether data looks like a sealed envelope.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, []byte(envelopeMagic+":"))
}

// Open decrypts an envelope produced by Seal using the algorithm recorded
// in it.
func Open(key, envelope, additionalData []byte) ([]byte, error) {
	if !IsSealed(envelope) {
		return nil, ErrNotSealed
	}
	parts := strings.SplitN(strings.TrimSpace(string(envelope)), ":", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("adaptive: malformed envelope")
	}

	c, err := NewWithType(key, CipherType(parts[1]))
	if err != nil {
		return nil, err
	}
	ct, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("adaptive: decode envelope: %w", err)
	}
	plaintext, err := c.Decrypt(ct, additionalData)
	if err != nil {
		return nil, fmt.Errorf("adaptive: open envelope: %w", err)
	}
	return plaintext, nil
}

// ParseKey turns configuration text into a 32-byte key. It accepts 64 hex
// characters or standard/URL base64 of 32 bytes; anything else is treated
// as a passphrase and hashed with SHA-256.
func ParseKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("adaptive: empty key")
	}
	if len(s) == hex.EncodedLen(KeySize) {
		if key, err := hex.DecodeString(s); err == nil {
			return key, nil
		}
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding} {
		if key, err := enc.DecodeString(s); err == nil && len(key) == KeySize {
			return key, nil
		}
	}
	sum := sha256.Sum256([]byte(s))
	return sum[:], nil
}
