package store

import (
	"context"
	stderrors "errors"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v4"

	"github.com/matzehuels/distindex/pkg/errors"
)

// BadgerConfig configures a [BadgerStore].
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string `toml:"path" yaml:"path"`

	// InMemory keeps the database in memory only.
	InMemory bool `toml:"in_memory" yaml:"in_memory"`

	// SyncWrites flushes every write to disk before returning.
	SyncWrites bool `toml:"sync_writes" yaml:"sync_writes"`

	// Logger receives Badger's own log output. Nil discards it.
	Logger *log.Logger `toml:"-" yaml:"-"`
}

// BadgerStore keeps snapshots in an embedded Badger database. Expiry uses
// Badger's entry TTL.
type BadgerStore struct {
	db *badger.DB
}

// badgerLogger adapts a charmbracelet logger to badger.Logger.
type badgerLogger struct{ *log.Logger }

func (l badgerLogger) Warningf(format string, args ...any) { l.Warnf(format, args...) }

// NewBadgerStore opens the database.
func NewBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := errors.ValidatePath(cfg.Path); err != nil {
			return nil, err
		}
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "create database directory %s", cfg.Path)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(badgerLogger{cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "open badger database")
	}
	return &BadgerStore{db: db}, nil
}

// Get retrieves a snapshot.
func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeStore, err, "badger get %s", key)
	}
	return data, true, nil
}

// Set stores a snapshot with the given ttl.
func (s *BadgerStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := errors.ValidateStoreKey(key); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "badger set %s", key)
	}
	return nil
}

// Delete removes a snapshot.
func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "badger delete %s", key)
	}
	return nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

var _ Store = (*BadgerStore)(nil)
