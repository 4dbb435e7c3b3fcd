package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/dgraph-io/badger/v3"
)

// ErrLocked is returned when another process holds the database directory.
var ErrLocked = errors.New("database is in use by another process")

// BadgerEngine is a KV backed by a Badger v3 database.
type BadgerEngine struct {
	db     *badger.DB
	closed atomic.Bool
}

// NewBadgerEngine opens or creates the database described by cfg.
func NewBadgerEngine(cfg KVConfig, log *slog.Logger) (*BadgerEngine, error) {
	if cfg.Dir == "" && !cfg.InMemory {
		return nil, errors.New("badger: dir is required")
	}
	if log == nil {
		log = slog.Default()
	}

	db, err := badger.Open(badgerOptions(cfg, log))
	if err != nil {
		// Badger reports a held flock only through the message text.
		if strings.Contains(err.Error(), "Cannot acquire directory lock") {
			return nil, fmt.Errorf("badger: %s: %w", cfg.Dir, ErrLocked)
		}
		return nil, fmt.Errorf("badger: open %s: %w", cfg.Dir, err)
	}
	log.Debug("badger engine opened", "dir", cfg.Dir, "in_memory", cfg.InMemory)
	return &BadgerEngine{db: db}, nil
}

func badgerOptions(cfg KVConfig, log *slog.Logger) badger.Options {
	opts := badger.DefaultOptions(cfg.Dir).
		WithSyncWrites(cfg.SyncWrites).
		WithLogger(badgerLogger{log})
	if cfg.InMemory {
		opts = opts.WithDir("").WithValueDir("").WithInMemory(true)
	}
	if cfg.ValueLogFileSize > 0 {
		opts = opts.WithValueLogFileSize(cfg.ValueLogFileSize)
	}
	return opts
}

// Get returns a copy of the value under key, or ErrKeyNotFound.
func (e *BadgerEngine) Get(ctx context.Context, key []byte) ([]byte, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	var out []byte
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrKeyNotFound
		} else if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	return out, err
}

// Set stores value under key.
func (e *BadgerEngine) Set(ctx context.Context, key, value []byte) error {
	return e.Apply(ctx, []Op{{Key: key, Value: value}})
}

// Delete removes key.
func (e *BadgerEngine) Delete(ctx context.Context, key []byte) error {
	return e.Apply(ctx, []Op{{Key: key}})
}

// Apply commits ops in one transaction.
func (e *BadgerEngine) Apply(ctx context.Context, ops []Op) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	txn := e.db.NewTransaction(true)
	defer txn.Discard()
	for _, op := range ops {
		var err error
		if op.IsDelete() {
			err = txn.Delete(op.Key)
		} else {
			err = txn.Set(op.Key, op.Value)
		}
		if err != nil {
			return fmt.Errorf("badger: apply %q: %w", op.Key, err)
		}
	}
	return txn.Commit()
}

// Close closes the database. Later calls do nothing.
func (e *BadgerEngine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	return e.db.Close()
}

// badgerLogger routes Badger's log output through slog. Info lines are
// demoted to debug because they share stderr with command output.
type badgerLogger struct{ l *slog.Logger }

func (b badgerLogger) Errorf(f string, args ...any)   { b.l.Error(fmt.Sprintf(f, args...)) }
func (b badgerLogger) Warningf(f string, args ...any) { b.l.Warn(fmt.Sprintf(f, args...)) }
func (b badgerLogger) Infof(f string, args ...any)    { b.l.Debug(fmt.Sprintf(f, args...)) }
func (b badgerLogger) Debugf(f string, args ...any)   { b.l.Debug(fmt.Sprintf(f, args...)) }
