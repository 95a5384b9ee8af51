package kv

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/driftpix/driftpix-server/internal/logger"
)

// BadgerStore is the embedded Store backend. All mutations run inside
// badger transactions, so concurrent pushes and increments stay atomic
// within the process.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens the embedded store at the given directory.
func OpenBadger(path string, log *logger.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // badger's own logging is too chatty for the default setup
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	if log != nil {
		log.Debug("opened embedded kv store", "path", path)
	}
	return &BadgerStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// PushTrim prepends values and trims the list in one transaction.
func (s *BadgerStore) PushTrim(_ context.Context, key string, size int, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	return s.db.Update(func(txn *badger.Txn) error {
		list, err := readList(txn, key)
		if err != nil {
			return err
		}

		// values arrive newest first, so the batch goes ahead of the
		// existing list as-is and trimming evicts from the tail.
		merged := make([]string, 0, len(values)+len(list))
		merged = append(merged, values...)
		merged = append(merged, list...)
		if len(merged) > size {
			merged = merged[:size]
		}

		data, err := json.Marshal(merged)
		if err != nil {
			return fmt.Errorf("marshal list %q: %w", key, err)
		}
		return txn.Set([]byte(key), data)
	})
}

// Range returns the list at key, newest first.
func (s *BadgerStore) Range(_ context.Context, key string) ([]string, error) {
	var list []string
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		list, err = readList(txn, key)
		return err
	})
	return list, err
}

// IncrWindow increments an expiring counter, preserving the TTL set when
// the window opened.
func (s *BadgerStore) IncrWindow(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	var count int64
	var remaining time.Duration

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			count, remaining = 1, window
			entry := badger.NewEntry([]byte(key), []byte("1")).WithTTL(window)
			return txn.SetEntry(entry)
		}
		if err != nil {
			return err
		}

		if err := item.Value(func(val []byte) error {
			count, err = strconv.ParseInt(string(val), 10, 64)
			return err
		}); err != nil {
			return fmt.Errorf("read counter %q: %w", key, err)
		}
		count++

		remaining = time.Until(time.Unix(int64(item.ExpiresAt()), 0))
		if remaining <= 0 {
			// Badger only evicts expired keys lazily; treat an expired
			// counter as a fresh window.
			count, remaining = 1, window
		}
		entry := badger.NewEntry([]byte(key), []byte(strconv.FormatInt(count, 10))).WithTTL(remaining)
		return txn.SetEntry(entry)
	})

	return count, remaining, err
}

func readList(txn *badger.Txn, key string) ([]string, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var list []string
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &list)
	}); err != nil {
		return nil, fmt.Errorf("read list %q: %w", key, err)
	}
	return list, nil
}
