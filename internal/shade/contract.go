// Package shade implements the Shade merchant payment protocol's core
// state machine: the invoice lifecycle, the signed-invoice creation path,
// the subscription engine, and the access-control/pause/admin-registry
// subsystems that gate every write — spec.md §§1-9. Every public method on
// Contract corresponds to one named entry point in spec.md §6 and
// preserves its precondition ordering and numeric error codes exactly.
//
// The ledger host itself (storage, events, clock, Ed25519, auth) is
// injected via internal/host.Host rather than implemented here, per
// spec.md §1's scope boundary.
package shade

import (
	"github.com/Ogstevyn/shade/internal/host"
	"github.com/Ogstevyn/shade/internal/keylet"
)

// Contract is the single façade every entry point in spec.md §6 hangs off.
// It holds no mutable state of its own beyond the injected Host: all
// entity state lives in Host.Store(). selfAddress is the contract's own
// on-ledger address, needed to build the signed-invoice canonical message
// (spec.md §4.5 item 1).
type Contract struct {
	host        host.Host
	selfAddress host.Address
	tokens      TokenLedger
	escrow      Escrow
}

// NewContract wires a façade against the given host, identified on-ledger
// by selfAddress.
func NewContract(h host.Host, selfAddress host.Address) *Contract {
	return &Contract{host: h, selfAddress: selfAddress}
}

// txn bundles one entry point's batch and read access, so module code
// never talks to host.Store()/host.NewBatch() directly.
type txn struct {
	c *Contract
	b host.Batch
}

func (c *Contract) begin() *txn { return &txn{c: c, b: c.host.Store().NewBatch()} }

func (t *txn) get(k keylet.Key) ([]byte, bool, error) { return t.b.Get(k) }
func (t *txn) put(k keylet.Key, v []byte)             { t.b.Put(k, v) }
func (t *txn) del(k keylet.Key)                       { t.b.Delete(k) }

// commit finalizes the batch. Callers must not publish events until commit
// has returned nil, so a failed commit never leaks an event — spec.md §5's
// rollback-discards-events requirement.
func (t *txn) commit() error { return t.b.Commit() }

func (t *txn) discard() { t.b.Discard() }

func (c *Contract) emit(topic string, payload any) { c.host.Events().Publish(topic, payload) }

func (c *Contract) requireAuth(addr host.Address) bool { return c.host.Auth().RequireAuth(addr) }

// Initialize creates the singleton ContractInfo. It may only be called
// once; a second call fails AlreadyInitialized.
func (c *Contract) Initialize(admin host.Address) error {
	t := c.begin()
	if _, ok, err := t.get(keylet.ContractInfo()); err != nil {
		t.discard()
		return wrapErr(ErrNotInitialized, err)
	} else if ok {
		t.discard()
		return newErr(ErrAlreadyInitialized)
	}
	info := &ContractInfo{Admin: admin, InitializedAt: c.host.Clock().Now()}
	enc, err := info.encode()
	if err != nil {
		t.discard()
		return wrapErr(ErrNotInitialized, err)
	}
	t.put(keylet.ContractInfo(), enc)
	if err := t.commit(); err != nil {
		return wrapErr(ErrNotInitialized, err)
	}
	c.emit("Initialized", struct{ Admin host.Address }{admin})
	return nil
}

// GetAdmin returns the stored admin address.
func (c *Contract) GetAdmin() (host.Address, error) {
	info, err := c.contractInfo()
	if err != nil {
		return host.Address{}, err
	}
	return info.Admin, nil
}

func (c *Contract) contractInfo() (*ContractInfo, error) {
	raw, ok, err := c.host.Store().Get(keylet.ContractInfo())
	if err != nil {
		return nil, wrapErr(ErrNotInitialized, err)
	}
	if !ok {
		return nil, newErr(ErrNotInitialized)
	}
	return decodeContractInfo(raw)
}

func (c *Contract) isAdmin(addr host.Address) (bool, error) {
	info, err := c.contractInfo()
	if err != nil {
		return false, err
	}
	return info.Admin == addr, nil
}

// assertNotPaused is called at the start of every mutation except
// access-control, merchant-account restriction, and admin transfer,
// matching spec.md §4.2.
func (c *Contract) assertNotPaused() error {
	raw, ok, err := c.host.Store().Get(keylet.Paused())
	if err != nil {
		return wrapErr(ErrContractPaused, err)
	}
	if ok && decodeBool(raw) {
		return newErr(ErrContractPaused)
	}
	return nil
}
