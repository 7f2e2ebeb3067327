// Package badger implements the registry contracts on BadgerDB.
//
// This is the persistent registry backend: file nodes, direct shares,
// and share links survive restarts and crashes (WAL-based recovery).
// See keys.go for the key schema and serialization.go for the value
// encoding.
package badger

import (
	"context"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/harborfs/harbordrive/pkg/store"
)

// BadgerStore implements store.Store using BadgerDB for persistence.
//
// Thread Safety:
// Every operation runs inside a single BadgerDB transaction, and a
// coarse read-write mutex serializes writers so update transactions
// never conflict. Simple and correct; fine-grained locking could improve
// throughput if it ever matters.
type BadgerStore struct {
	mu sync.RWMutex
	db *badger.DB
}

// NewBadgerStore opens (or creates) a BadgerDB registry at path.
func NewBadgerStore(ctx context.Context, path string) (*BadgerStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if path == "" {
		return nil, fmt.Errorf("badger store path is required")
	}

	opts := badger.DefaultOptions(path)
	// Badger's own logger is chatty at INFO; registry operations are
	// logged at the service layer instead.
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", path, err)
	}

	return &BadgerStore{db: db}, nil
}

// Close implements store.Store.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// getValue reads the value at key inside txn, returning notFoundErr when
// the key is absent.
func getValue(txn *badger.Txn, key []byte, notFoundErr error) ([]byte, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, notFoundErr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return item.ValueCopy(nil)
}

// scanKeys collects a copy of every key under prefix inside txn.
func scanKeys(txn *badger.Txn, prefix []byte) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Rewind(); it.Valid(); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys
}

// Compile-time check that BadgerStore implements store.Store.
var _ store.Store = (*BadgerStore)(nil)
