// Admin / token registry: accepted-token set, per-token fee in basis
// points, and the merchant-account wasm hash, spec.md §4.3.
package shade

import (
	"time"

	"github.com/Ogstevyn/shade/internal/host"
	"github.com/Ogstevyn/shade/internal/keylet"
	"github.com/Ogstevyn/shade/internal/money"
)

// AddAcceptedToken adds token to the accepted set. Admin-only; idempotent.
func (c *Contract) AddAcceptedToken(admin, token host.Address) error {
	if err := c.requireAdmin(admin); err != nil {
		return err
	}
	if err := c.assertNotPaused(); err != nil {
		return err
	}
	t := c.begin()
	t.put(keylet.AcceptedToken(token[:]), encodeBool(true))
	if err := t.commit(); err != nil {
		return wrapErr(ErrNotAuthorized, err)
	}
	return nil
}

// AddAcceptedTokens adds every token in tokens. Admin-only; idempotent.
func (c *Contract) AddAcceptedTokens(admin host.Address, tokens []host.Address) error {
	if err := c.requireAdmin(admin); err != nil {
		return err
	}
	if err := c.assertNotPaused(); err != nil {
		return err
	}
	t := c.begin()
	for _, token := range tokens {
		t.put(keylet.AcceptedToken(token[:]), encodeBool(true))
	}
	if err := t.commit(); err != nil {
		return wrapErr(ErrNotAuthorized, err)
	}
	return nil
}

// RemoveAcceptedToken removes token from the accepted set. Admin-only.
func (c *Contract) RemoveAcceptedToken(admin, token host.Address) error {
	if err := c.requireAdmin(admin); err != nil {
		return err
	}
	if err := c.assertNotPaused(); err != nil {
		return err
	}
	t := c.begin()
	t.del(keylet.AcceptedToken(token[:]))
	if err := t.commit(); err != nil {
		return wrapErr(ErrNotAuthorized, err)
	}
	return nil
}

// IsAcceptedToken reports whether token may appear on new payments.
func (c *Contract) IsAcceptedToken(token host.Address) (bool, error) {
	raw, ok, err := c.host.Store().Get(keylet.AcceptedToken(token[:]))
	if err != nil {
		return false, wrapErr(ErrTokenNotAccepted, err)
	}
	return ok && decodeBool(raw), nil
}

// SetFee sets token's fee in basis points. Admin-only; bp must be in
// [0, 10_000].
func (c *Contract) SetFee(admin, token host.Address, bp int64) error {
	if err := c.requireAdmin(admin); err != nil {
		return err
	}
	if err := c.assertNotPaused(); err != nil {
		return err
	}
	if bp < 0 || bp > money.BasisPointsDenominator {
		return newErr(ErrInvalidAmount)
	}
	t := c.begin()
	t.put(keylet.TokenFee(token[:]), encodeInt64(bp))
	if err := t.commit(); err != nil {
		return wrapErr(ErrNotAuthorized, err)
	}
	return nil
}

// GetFee returns token's fee in basis points, or 0 if unset.
func (c *Contract) GetFee(token host.Address) (int64, error) {
	raw, ok, err := c.host.Store().Get(keylet.TokenFee(token[:]))
	if err != nil {
		return 0, wrapErr(ErrTokenNotAccepted, err)
	}
	if !ok {
		return 0, nil
	}
	return decodeInt64(raw), nil
}

// SetAccountWasmHash stores the code hash used to deploy merchant
// accounts. Admin-only.
func (c *Contract) SetAccountWasmHash(admin host.Address, hash [32]byte) error {
	if err := c.requireAdmin(admin); err != nil {
		return err
	}
	if err := c.assertNotPaused(); err != nil {
		return err
	}
	t := c.begin()
	t.put(keylet.AccountWasmHash(), hash[:])
	if err := t.commit(); err != nil {
		return wrapErr(ErrNotAuthorized, err)
	}
	return nil
}

// AccountWasmHash returns the stored merchant-account code hash, or
// WasmHashNotSet if it has never been set.
func (c *Contract) AccountWasmHash() ([32]byte, error) {
	var out [32]byte
	raw, ok, err := c.host.Store().Get(keylet.AccountWasmHash())
	if err != nil {
		return out, wrapErr(ErrWasmHashNotSet, err)
	}
	if !ok {
		return out, newErr(ErrWasmHashNotSet)
	}
	copy(out[:], raw)
	return out, nil
}

// Upgrade records newWasmHash as the code hash this contract has upgraded
// to. Admin-only. On a real WASM host this entry point would swap the
// contract's executing bytecode in place; this host is a plain Go binary
// with no bytecode to swap, so Upgrade is host-delegated by design — an
// operator upgrades by deploying a new shaded build against the same
// store, and Upgrade's job here is only to leave a durable, auditable
// record of which hash that deploy corresponds to, the same way
// SetAccountWasmHash records the hash merchant accounts deploy with.
func (c *Contract) Upgrade(admin host.Address, newWasmHash [32]byte) error {
	if err := c.requireAdmin(admin); err != nil {
		return err
	}
	if err := c.assertNotPaused(); err != nil {
		return err
	}
	t := c.begin()
	t.put(keylet.ContractWasmHash(), newWasmHash[:])
	if err := t.commit(); err != nil {
		return wrapErr(ErrNotAuthorized, err)
	}
	c.emit("ContractUpgraded", struct {
		NewWasmHash [32]byte
		Timestamp   time.Time
	}{newWasmHash, c.host.Clock().Now()})
	return nil
}

// ContractWasmHash returns the code hash last recorded via Upgrade, or
// WasmHashNotSet if Upgrade has never been called.
func (c *Contract) ContractWasmHash() ([32]byte, error) {
	var out [32]byte
	raw, ok, err := c.host.Store().Get(keylet.ContractWasmHash())
	if err != nil {
		return out, wrapErr(ErrWasmHashNotSet, err)
	}
	if !ok {
		return out, newErr(ErrWasmHashNotSet)
	}
	copy(out[:], raw)
	return out, nil
}
