package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yndnr/hyperlocal-go/internal/core/domain"
	"github.com/yndnr/hyperlocal-go/internal/storage"
)

// KVBackend stores the session under the well-known keys of a KV engine.
// The user record is stored as JSON, the token as raw bytes.
type KVBackend struct {
	kv storage.KV
}

// NewKVBackend wraps kv. The backend owns kv and closes it on Close.
func NewKVBackend(kv storage.KV) *KVBackend {
	return &KVBackend{kv: kv}
}

func (b *KVBackend) Load(ctx context.Context) (Snapshot, error) {
	tok, err := b.kv.Get(ctx, []byte(KeyToken))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load token: %w", err)
	}

	s := Snapshot{Token: string(tok)}
	raw, err := b.kv.Get(ctx, []byte(KeyUser))
	switch {
	case errors.Is(err, storage.ErrKeyNotFound):
		return s, nil
	case err != nil:
		return Snapshot{}, fmt.Errorf("load user: %w", err)
	}

	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return Snapshot{}, fmt.Errorf("decode user: %w", err)
	}
	s.User = &u
	return s, nil
}

func (b *KVBackend) Save(ctx context.Context, s Snapshot) error {
	ops := []storage.Op{storage.SetOp(KeyToken, []byte(s.Token))}
	if s.User != nil {
		u := s.User.Redacted()
		raw, err := json.Marshal(u)
		if err != nil {
			return fmt.Errorf("encode user: %w", err)
		}
		ops = append(ops, storage.SetOp(KeyUser, raw))
	} else {
		ops = append(ops, storage.DeleteOp(KeyUser))
	}
	return b.kv.Apply(ctx, ops)
}

func (b *KVBackend) Clear(ctx context.Context) error {
	return b.kv.Apply(ctx, []storage.Op{
		storage.DeleteOp(KeyToken),
		storage.DeleteOp(KeyUser),
	})
}

func (b *KVBackend) Close() error {
	return b.kv.Close()
}
