// Package learned persists counterparty-to-category associations in an
// embedded Badger database so classifications refine across runs.
package learned

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"

	"github.com/jumahq/pesaflow/internal/categorize"
)

const keyPrefix = "assoc:"

// Store implements categorize.LearnedStore on top of Badger. Values are
// JSON-encoded associations keyed by normalized counterparty signature.
type Store struct {
	db *badger.DB
}

// Open creates (or reopens) the store at dataDir.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("learned.Open: create data dir: %w", err)
	}

	options := badger.DefaultOptions(dataDir)
	options.Logger = nil // Badger's own logger is too chatty for a library

	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("learned.Open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the association for a counterparty signature, or
// categorize.ErrNotFound when none has been learned.
func (s *Store) Get(ctx context.Context, signature string) (categorize.Association, error) {
	var assoc categorize.Association

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(signature))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return categorize.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &assoc)
		})
	})
	if err != nil {
		if errors.Is(err, categorize.ErrNotFound) {
			return categorize.Association{}, categorize.ErrNotFound
		}
		return categorize.Association{}, fmt.Errorf("learned.Get %q: %w", signature, err)
	}
	return assoc, nil
}

// Put stores (or overwrites) the association for a counterparty signature.
func (s *Store) Put(ctx context.Context, signature string, assoc categorize.Association) error {
	data, err := json.Marshal(assoc)
	if err != nil {
		return fmt.Errorf("learned.Put %q: marshal: %w", signature, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(signature), data)
	})
	if err != nil {
		return fmt.Errorf("learned.Put %q: %w", signature, err)
	}
	return nil
}

// Associations returns every learned mapping, keyed by signature.
func (s *Store) Associations(ctx context.Context) (map[string]categorize.Association, error) {
	out := map[string]categorize.Association{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(keyPrefix)); it.Valid(); it.Next() {
			item := it.Item()
			signature := string(item.Key()[len(keyPrefix):])

			var assoc categorize.Association
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &assoc)
			})
			if err != nil {
				return err
			}
			out[signature] = assoc
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("learned.Associations: %w", err)
	}
	return out, nil
}

// RunGC runs value-log garbage collection. Safe to call periodically.
func (s *Store) RunGC() error {
	return s.db.RunValueLogGC(0.5)
}

func key(signature string) []byte {
	return []byte(keyPrefix + signature)
}
