// Package goleveldb adapts syndtr/goleveldb to store.Backend, offering a
// pure-Go alternative to the default pebble backend for environments where
// cgo-free storage is preferred, the way goXRPLd lets node_db.backend
// select among multiple physical engines.
package goleveldb

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// Backend adapts *leveldb.DB to store.Backend.
type Backend struct {
	db *leveldb.DB
}

// Open opens (creating if necessary) a goleveldb database at dir.
func Open(dir string) (*Backend, error) {
	db, err := leveldb.OpenFile(dir, &opt.Options{})
	if err != nil {
		return nil, fmt.Errorf("goleveldb backend: open %s: %w", dir, err)
	}
	return &Backend{db: db}, nil
}

// Get implements store.Backend.
func (b *Backend) Get(key []byte) ([]byte, bool, error) {
	v, err := b.db.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return v, true, nil
}

// WriteBatch implements store.Backend.
func (b *Backend) WriteBatch(puts map[string][]byte, deletes map[string]struct{}) error {
	batch := new(leveldb.Batch)
	for k, v := range puts {
		batch.Put([]byte(k), v)
	}
	for k := range deletes {
		batch.Delete([]byte(k))
	}
	return b.db.Write(batch, nil)
}

// Close implements store.Backend.
func (b *Backend) Close() error { return b.db.Close() }
