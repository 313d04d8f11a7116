// Package host defines the contract between Shade's core modules and the
// ledger host collaborator that spec.md §1 places out of scope: a
// deterministic transactional key/value store, an event bus, a timestamp
// oracle, an Ed25519 primitive and an authorization predicate. Core modules
// (internal/shade/...) depend only on the Host interface, never on a
// concrete backend, generalizing the separation goXRPLd draws between
// tx.Engine and tx.LedgerView.
package host

import (
	"time"

	"github.com/Ogstevyn/shade/internal/keylet"
)

// Address is an opaque account identifier. The core protocol does not
// interpret its contents; it is compared for equality and used as a map
// key and as raw bytes in the signed-invoice canonical message.
type Address [32]byte

// IsZero reports whether this is the unset/zero address.
func (a Address) IsZero() bool { return a == Address{} }

// Store is a tagged keyed persistent map with batched, all-or-nothing
// commits — spec.md §5's "single transactional call" requirement realized
// for a non-blockchain host.
type Store interface {
	Get(key keylet.Key) ([]byte, bool, error)
	NewBatch() Batch
}

// Batch accumulates writes for one façade entry point. Nothing is visible
// to Get until Commit succeeds; Discard (or simply never calling Commit)
// leaves the store untouched, matching spec.md §5's rollback-on-failure
// requirement.
type Batch interface {
	Get(key keylet.Key) ([]byte, bool, error)
	Put(key keylet.Key, value []byte)
	Delete(key keylet.Key)
	Commit() error
	Discard()
}

// EventBus publishes structured events. Publish delivers immediately; it
// does not queue against a Batch, so callers publish only after their
// batch has committed.
type EventBus interface {
	Publish(topic string, payload any)
}

// Clock is the ledger timestamp oracle: read once per invocation, never
// decreasing across invocations.
type Clock interface {
	Now() time.Time
}

// CryptoVerifier exposes the host's Ed25519 primitive.
type CryptoVerifier interface {
	VerifyEd25519(pub, msg, sig []byte) bool
}

// AuthChecker answers "is the current call authorized by addr" — the host
// auth check spec.md §4 requires before every mutation.
type AuthChecker interface {
	RequireAuth(addr Address) bool
}

// Host bundles the five host capabilities a façade needs.
type Host interface {
	Store() Store
	Events() EventBus
	Clock() Clock
	Crypto() CryptoVerifier
	Auth() AuthChecker
}
