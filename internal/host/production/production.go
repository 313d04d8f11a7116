// Package production wires together a real host.Host for shaded serve and
// shaded sweep-subscriptions: a durable store.Backend, a fan-out event bus
// feeding whichever subscribers are registered (the CLI always adds an
// event-log recorder, and internal/indexer and internal/indexer/archive
// when configured), a wall clock, and crypto.Ed25519. It plays the role
// goXRPLd's non-standalone node wiring plays for xrpld: the concrete
// collaborator set a facade is handed outside of tests.
package production

import (
	"crypto/ed25519"
	"sync"
	"time"

	"github.com/Ogstevyn/shade/internal/host"
	"github.com/Ogstevyn/shade/internal/host/store"
)

// Subscriber receives every event the façade publishes. internal/indexer
// and internal/indexer/archive both satisfy a Subscriber-shaped method;
// Host.AddSubscriber adapts them.
type Subscriber func(topic string, payload any)

// eventBus fans out each published event to every registered subscriber,
// synchronously and in registration order: a subscriber that blocks blocks
// the publisher, matching spec.md §5's "the host publishes events only
// after commit" invariant (there is nothing left to roll back by the time
// subscribers run).
type eventBus struct {
	mu          sync.Mutex
	subscribers []Subscriber
}

func (b *eventBus) Publish(topic string, payload any) {
	b.mu.Lock()
	subs := append([]Subscriber(nil), b.subscribers...)
	b.mu.Unlock()
	for _, s := range subs {
		s(topic, payload)
	}
}

func (b *eventBus) add(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, s)
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now().UTC() }

type ed25519Verifier struct{}

func (ed25519Verifier) VerifyEd25519(pub, msg, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), msg, sig)
}

// authChecker authorizes exactly the address the operator surface
// (internal/grpc, internal/cli) set for the call currently in flight. This
// mirrors host/memory's test double: shaded never receives a raw signed
// transaction over the wire the way a blockchain node would, so the
// gRPC/CLI layer is itself the thing attesting "this caller is who they
// claim to be" before invoking a façade method.
type authChecker struct {
	mu      sync.Mutex
	current *host.Address
}

func (a *authChecker) RequireAuth(addr host.Address) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current != nil && *a.current == addr
}

// Host is the production host.Host implementation.
type Host struct {
	store  *store.Store
	events *eventBus
	clock  wallClock
	crypto ed25519Verifier
	auth   *authChecker
}

// New builds a Host over backend with an LRU cache of cacheSize entries.
func New(backend store.Backend, cacheSize int) (*Host, error) {
	s, err := store.New(backend, cacheSize)
	if err != nil {
		return nil, err
	}
	return &Host{
		store:  s,
		events: &eventBus{},
		auth:   &authChecker{},
	}, nil
}

func (h *Host) Store() host.Store           { return h.store }
func (h *Host) Events() host.EventBus       { return h.events }
func (h *Host) Clock() host.Clock           { return h.clock }
func (h *Host) Crypto() host.CryptoVerifier { return h.crypto }
func (h *Host) Auth() host.AuthChecker      { return h.auth }

// AddSubscriber registers fn to receive every future published event.
func (h *Host) AddSubscriber(fn Subscriber) { h.events.add(fn) }

// Authorize marks addr as the authorized caller for the next façade call
// the operator surface makes on its behalf.
func (h *Host) Authorize(addr host.Address) { h.auth.current = &addr }

// Deauthorize clears the currently-authorized caller.
func (h *Host) Deauthorize() { h.auth.current = nil }

// WithAuthorized runs fn with addr authorized, clearing it again
// afterwards regardless of outcome — the pattern every operator-surface
// write path (internal/grpc, internal/cli) funnels through so a caller
// address is never left authorized longer than the single call it was set
// for.
func WithAuthorized(h *Host, addr host.Address, fn func() error) error {
	h.Authorize(addr)
	defer h.Deauthorize()
	return fn()
}
