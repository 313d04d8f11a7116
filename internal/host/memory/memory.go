// Package memory provides an in-process host.Host, the harness core-module
// tests run against (the CLI always uses a durable backend) — analogous to goXRPLd's
// "standalone mode" which relaxes real network/consensus dependencies while
// keeping the same Engine/LedgerView contract.
package memory

import (
	"crypto/ed25519"
	"sync"
	"time"

	"github.com/Ogstevyn/shade/internal/host"
	"github.com/Ogstevyn/shade/internal/keylet"
)

// mapBackend is a trivial map-backed store.Backend.
type mapBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func newMapBackend() *mapBackend { return &mapBackend{data: make(map[string][]byte)} }

func (m *mapBackend) Get(key []byte) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[string(key)]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *mapBackend) WriteBatch(puts map[string][]byte, deletes map[string]struct{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range puts {
		m.data[k] = v
	}
	for k := range deletes {
		delete(m.data, k)
	}
	return nil
}

func (m *mapBackend) Close() error { return nil }

// store is a direct, cache-free implementation of host.Store over
// mapBackend, since an in-memory test host gains nothing from an LRU front
// cache.
type store struct{ backend *mapBackend }

func (s *store) Get(key keylet.Key) ([]byte, bool, error) { return s.backend.Get(key[:]) }

func (s *store) NewBatch() host.Batch {
	return &batch{backend: s.backend, puts: map[keylet.Key][]byte{}, deletes: map[keylet.Key]struct{}{}}
}

type batch struct {
	backend *mapBackend
	puts    map[keylet.Key][]byte
	deletes map[keylet.Key]struct{}
}

func (b *batch) Get(key keylet.Key) ([]byte, bool, error) {
	if _, deleted := b.deletes[key]; deleted {
		return nil, false, nil
	}
	if v, ok := b.puts[key]; ok {
		return v, true, nil
	}
	return b.backend.Get(key[:])
}

func (b *batch) Put(key keylet.Key, value []byte) {
	delete(b.deletes, key)
	b.puts[key] = value
}

func (b *batch) Delete(key keylet.Key) {
	delete(b.puts, key)
	b.deletes[key] = struct{}{}
}

func (b *batch) Commit() error {
	puts := make(map[string][]byte, len(b.puts))
	for k, v := range b.puts {
		puts[string(k[:])] = v
	}
	deletes := make(map[string]struct{}, len(b.deletes))
	for k := range b.deletes {
		deletes[string(k[:])] = struct{}{}
	}
	return b.backend.WriteBatch(puts, deletes)
}

func (b *batch) Discard() {}

// EventRecord is one published event, retained for assertions in tests.
type EventRecord struct {
	Topic   string
	Payload any
}

type eventBus struct {
	mu     sync.Mutex
	events []EventRecord
}

func (e *eventBus) Publish(topic string, payload any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, EventRecord{Topic: topic, Payload: payload})
}

// clock is a manually-advanced ledger timestamp oracle.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type cryptoVerifier struct{}

func (cryptoVerifier) VerifyEd25519(pub, msg, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), msg, sig)
}

// authChecker tracks which address, if any, is authorized for the call
// currently in flight — the in-process stand-in for the host's real
// transaction-signer authorization check.
type authChecker struct {
	mu      sync.Mutex
	current *host.Address
}

func (a *authChecker) RequireAuth(addr host.Address) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current != nil && *a.current == addr
}

// Host is the in-memory host.Host implementation.
type Host struct {
	store  *store
	events *eventBus
	clock  *clock
	crypto cryptoVerifier
	auth   *authChecker
}

// New builds a fresh in-memory host with the clock set to now.
func New() *Host {
	return &Host{
		store:  &store{backend: newMapBackend()},
		events: &eventBus{},
		clock:  &clock{now: time.Now().UTC()},
		auth:   &authChecker{},
	}
}

func (h *Host) Store() host.Store           { return h.store }
func (h *Host) Events() host.EventBus       { return h.events }
func (h *Host) Clock() host.Clock           { return h.clock }
func (h *Host) Crypto() host.CryptoVerifier { return h.crypto }
func (h *Host) Auth() host.AuthChecker      { return h.auth }

// SetNow advances the ledger timestamp oracle — tests use this to exercise
// expiry and the 7-day refund window deterministically.
func (h *Host) SetNow(t time.Time) { h.clock.set(t) }

// Advance moves the clock forward by d.
func (h *Host) Advance(d time.Duration) { h.clock.set(h.clock.Now().Add(d)) }

// Authorize makes addr the authorized caller for subsequent RequireAuth
// checks, simulating the host validating a transaction's signer.
func (h *Host) Authorize(addr host.Address) { h.auth.current = &addr }

// Deauthorize clears the authorized caller.
func (h *Host) Deauthorize() { h.auth.current = nil }

// EventLog returns every event published so far, for test assertions.
func (h *Host) EventLog() []EventRecord {
	h.events.mu.Lock()
	defer h.events.mu.Unlock()
	out := make([]EventRecord, len(h.events.events))
	copy(out, h.events.events)
	return out
}
