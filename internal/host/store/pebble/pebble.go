// Package pebble adapts a cockroachdb/pebble database to store.Backend,
// generalizing goXRPLd's storage/keyValueDb/pebble adapter to Shade's flat
// tagged keyspace.
package pebble

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// ErrClosed is returned once Close has been called.
var ErrClosed = errors.New("pebble backend: closed")

// Backend adapts *pebble.DB to store.Backend.
type Backend struct {
	db *pebble.DB
}

// Open opens (creating if necessary) a pebble database at dir.
func Open(dir string) (*Backend, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble backend: open %s: %w", dir, err)
	}
	return &Backend{db: db}, nil
}

// Get implements store.Backend.
func (b *Backend) Get(key []byte) ([]byte, bool, error) {
	if b.db == nil {
		return nil, false, ErrClosed
	}
	v, closer, err := b.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer closer.Close()
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// WriteBatch implements store.Backend.
func (b *Backend) WriteBatch(puts map[string][]byte, deletes map[string]struct{}) error {
	if b.db == nil {
		return ErrClosed
	}
	batch := b.db.NewBatch()
	defer batch.Close()
	for k, v := range puts {
		if err := batch.Set([]byte(k), v, nil); err != nil {
			return err
		}
	}
	for k := range deletes {
		if err := batch.Delete([]byte(k), nil); err != nil {
			return err
		}
	}
	return batch.Commit(pebble.Sync)
}

// Close implements store.Backend.
func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}
