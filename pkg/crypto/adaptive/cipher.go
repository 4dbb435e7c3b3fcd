package adaptive

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/chacha20poly1305"
)

// CipherType identifies the cipher algorithm.
type CipherType string

const (
	CipherAESGCM   CipherType = "aes-gcm"
	CipherChaCha20 CipherType = "chacha20-poly1305"
)

// KeySize is the key length accepted by every cipher in this package.
const KeySize = 32

// ErrInvalidKeySize is returned for keys that are not KeySize bytes long.
var ErrInvalidKeySize = errors.New("adaptive: key must be 32 bytes")

// Cipher provides authenticated encryption.
type Cipher interface {
	// Type returns the cipher type.
	Type() CipherType

	// Encrypt encrypts plaintext with additional data. The random nonce is
	// prepended to the returned ciphertext.
	Encrypt(plaintext, additionalData []byte) ([]byte, error)

	// Decrypt reverses Encrypt.
	Decrypt(ciphertext, additionalData []byte) ([]byte, error)
}

// New creates a cipher for key, picking the fastest algorithm for this
// platform.
func New(key []byte) (Cipher, error) {
	if hasAESAcceleration() {
		return NewWithType(key, CipherAESGCM)
	}
	return NewWithType(key, CipherChaCha20)
}

// NewWithType creates a cipher of the specified type.
func NewWithType(key []byte, cipherType CipherType) (Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}

	var (
		aead cipher.AEAD
		err  error
	)
	switch cipherType {
	case CipherAESGCM:
		var block cipher.Block
		block, err = aes.NewCipher(key)
		if err == nil {
			aead, err = cipher.NewGCM(block)
		}
	case CipherChaCha20:
		aead, err = chacha20poly1305.New(key)
	default:
		return nil, fmt.Errorf("adaptive: unknown cipher type %q", cipherType)
	}
	if err != nil {
		return nil, fmt.Errorf("adaptive: init %s: %w", cipherType, err)
	}

	return &aeadCipher{typ: cipherType, aead: aead}, nil
}

// hasAESAcceleration reports whether crypto/aes runs on hardware support.
// Go uses AES-NI on amd64 and the ARMv8 crypto extensions on arm64.
func hasAESAcceleration() bool {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return true
	default:
		return false
	}
}

type aeadCipher struct {
	typ  CipherType
	aead cipher.AEAD
}

func (c *aeadCipher) Type() CipherType {
	return c.typ
}

func (c *aeadCipher) Encrypt(plaintext, additionalData []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plaintext, additionalData), nil
}

func (c *aeadCipher) Decrypt(ciphertext, additionalData []byte) ([]byte, error) {
	if len(ciphertext) < c.aead.NonceSize() {
		return nil, errors.New("adaptive: ciphertext too short")
	}
	nonce := ciphertext[:c.aead.NonceSize()]
	return c.aead.Open(nil, nonce, ciphertext[c.aead.NonceSize():], additionalData)
}
