// Package store implements host.Store on top of a pluggable physical
// key/value Backend (pebble or goleveldb), fronted by an LRU read cache —
// generalizing goXRPLd's keyValueDb.DB abstraction and
// ledger/manager/cache.go read cache to Shade's tagged keyspace.
package store

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Ogstevyn/shade/internal/host"
	"github.com/Ogstevyn/shade/internal/keylet"
)

// Backend is the minimal physical storage contract, matching the
// Read/Write/Delete/Batch shape of keyValueDb.DB.
type Backend interface {
	Get(key []byte) ([]byte, bool, error)
	WriteBatch(puts map[string][]byte, deletes map[string]struct{}) error
	Close() error
}

// Store wraps a Backend with an LRU cache and batched, all-or-nothing
// commits.
type Store struct {
	backend Backend
	cache   *lru.Cache[keylet.Key, []byte]
}

// New builds a Store over backend with a cache holding up to cacheSize hot
// entries.
func New(backend Backend, cacheSize int) (*Store, error) {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	c, err := lru.New[keylet.Key, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("store: building cache: %w", err)
	}
	return &Store{backend: backend, cache: c}, nil
}

// Get implements host.Store.
func (s *Store) Get(key keylet.Key) ([]byte, bool, error) {
	if v, ok := s.cache.Get(key); ok {
		if v == nil {
			return nil, false, nil
		}
		return v, true, nil
	}
	v, ok, err := s.backend.Get(key[:])
	if err != nil {
		return nil, false, err
	}
	if ok {
		s.cache.Add(key, v)
	} else {
		s.cache.Add(key, nil)
	}
	return v, ok, nil
}

// NewBatch implements host.Store.
func (s *Store) NewBatch() host.Batch {
	return &batch{
		store:   s,
		puts:    make(map[keylet.Key][]byte),
		deletes: make(map[keylet.Key]struct{}),
	}
}

// batch accumulates writes for one façade entry point. Events are
// published by the caller (internal/shade.Contract) only after Commit
// succeeds, so a discarded batch never leaks an event — spec.md §5's
// "rollback discards events" requirement.
type batch struct {
	store   *Store
	puts    map[keylet.Key][]byte
	deletes map[keylet.Key]struct{}
	done    bool
}

func (b *batch) Get(key keylet.Key) ([]byte, bool, error) {
	if _, deleted := b.deletes[key]; deleted {
		return nil, false, nil
	}
	if v, ok := b.puts[key]; ok {
		return v, true, nil
	}
	return b.store.Get(key)
}

func (b *batch) Put(key keylet.Key, value []byte) {
	delete(b.deletes, key)
	b.puts[key] = value
}

func (b *batch) Delete(key keylet.Key) {
	delete(b.puts, key)
	b.deletes[key] = struct{}{}
}

// Commit writes the batch atomically to the backend and refreshes the
// cache. It publishes no events; shade/contract publishes after a
// successful commit.
func (b *batch) Commit() error {
	if b.done {
		return fmt.Errorf("store: batch already finalized")
	}
	b.done = true

	puts := make(map[string][]byte, len(b.puts))
	for k, v := range b.puts {
		puts[string(k[:])] = v
	}
	deletes := make(map[string]struct{}, len(b.deletes))
	for k := range b.deletes {
		deletes[string(k[:])] = struct{}{}
	}
	if err := b.store.backend.WriteBatch(puts, deletes); err != nil {
		return err
	}
	for k, v := range b.puts {
		b.store.cache.Add(k, v)
	}
	for k := range b.deletes {
		b.store.cache.Add(k, nil)
	}
	return nil
}

// Discard abandons the batch; no writes are ever visible.
func (b *batch) Discard() {
	b.done = true
	b.puts = nil
	b.deletes = nil
}
