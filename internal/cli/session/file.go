package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/hyperlocal-go/pkg/crypto/adaptive"
)

// sealAAD binds sealed envelopes to their purpose.
var sealAAD = []byte("hyperlocal-session")

// FileBackend stores the session as a YAML document:
//
//	authToken: <token>
//	user:
//	  id: 7
//	  name: Asha
//	  email: asha@example.com
//
// Writes go to a temp file in the same directory and are renamed into
// place, so readers never observe a partial document.
type FileBackend struct {
	path   string
	key    []byte
	cipher adaptive.Cipher
}

// FileOption configures a FileBackend.
type FileOption func(*FileBackend) error

// WithSealKey seals the file with key. Existing plain files are still
// readable and get sealed on the next write.
func WithSealKey(key []byte) FileOption {
	return func(b *FileBackend) error {
		c, err := adaptive.New(key)
		if err != nil {
			return err
		}
		b.key = key
		b.cipher = c
		return nil
	}
}

// NewFileBackend creates a backend writing to path.
func NewFileBackend(path string, opts ...FileOption) (*FileBackend, error) {
	if path == "" {
		return nil, errors.New("session: file path is required")
	}
	b := &FileBackend{path: path}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
	}
	return b, nil
}

// Path returns the session file path.
func (b *FileBackend) Path() string {
	return b.path
}

// Sealed reports whether writes are encrypted.
func (b *FileBackend) Sealed() bool {
	return b.cipher != nil
}

func (b *FileBackend) Load(_ context.Context) (Snapshot, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read session file: %w", err)
	}

	if adaptive.IsSealed(data) {
		if b.key == nil {
			return Snapshot{}, fmt.Errorf("session file %s is sealed and no encryption key is configured", b.path)
		}
		if data, err = adaptive.Open(b.key, data, sealAAD); err != nil {
			return Snapshot{}, fmt.Errorf("unseal session file: %w", err)
		}
	}

	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("parse session file: %w", err)
	}
	return s, nil
}

func (b *FileBackend) Save(_ context.Context, s Snapshot) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if b.cipher != nil {
		if data, err = adaptive.Seal(b.cipher, data, sealAAD); err != nil {
			return err
		}
	}
	return writeFileAtomic(b.path, data)
}

func (b *FileBackend) Clear(_ context.Context) error {
	err := os.Remove(b.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func (b *FileBackend) Close() error {
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename session file: %w", err)
	}
	return nil
}
