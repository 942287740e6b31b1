package kv

import (
	"os"

	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrKeyNotFound raised when the key does not present.
	ErrKeyNotFound = errors.New("no such key")

	// ErrKeyExists raised by SetIfAbsent when the key already presents.
	ErrKeyExists = errors.New("key already exists")
)

// IterFn is applied to every key/value pair visited by Iter. Returning
// an error halts the iteration.
type IterFn func(key string, value []byte) error

// Store is a small key-value store used as the local index.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error

	// SetIfAbsent sets the key only when it is not present yet, in a
	// single transaction. It returns ErrKeyExists otherwise.
	SetIfAbsent(key string, value []byte) error

	Delete(key string) error

	// Iter visits every key with the given prefix in key order.
	Iter(prefix string, fn IterFn) error

	Close() error
}

// Open opens a badger backed store rooted at dir. When inMemory is set,
// dir is ignored and nothing touches the disk.
func Open(dir string, inMemory bool, logger *zap.Logger) (Store, error) {
	opts := badger.DefaultOptions(dir)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create store directory %s", dir)
	}
	return open(opts, logger)
}

// OpenReadOnly opens an existing store at dir without write access. It
// still fails while a writer holds the directory lock.
func OpenReadOnly(dir string, logger *zap.Logger) (Store, error) {
	return open(badger.DefaultOptions(dir).WithReadOnly(true), logger)
}

func open(opts badger.Options, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts = opts.
		WithLogger(badgerLogger{logger.Named("badger").Sugar()}).
		WithLoggingLevel(badger.WARNING).
		WithMemTableSize(16 << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open badger")
	}
	return &store{db: db}, nil
}

type store struct {
	db *badger.DB
}

func (s *store) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrKeyNotFound
			}
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	return value, err
}

func (s *store) Set(key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

func (s *store) SetIfAbsent(key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		switch {
		case err == nil:
			return ErrKeyExists
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return txn.Set([]byte(key), value)
	})
	// A concurrent writer committed the same key first.
	if errors.Is(err, badger.ErrConflict) {
		return ErrKeyExists
	}
	return err
}

func (s *store) Delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (s *store) Iter(prefix string, fn IterFn) error {
	if fn == nil {
		return nil
	}
	return s.db.View(func(txn *badger.Txn) error {
		p := []byte(prefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = p

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(string(item.KeyCopy(nil)), val); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *store) Close() error {
	return s.db.Close()
}

// badgerLogger routes badger logs through zap.
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}
