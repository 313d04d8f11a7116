// Merchant registry: spec.md §4.4.
package shade

import (
	"github.com/Ogstevyn/shade/internal/host"
	"github.com/Ogstevyn/shade/internal/keylet"
)

// RegisterMerchant enrolls addr as a merchant. addr must authenticate.
func (c *Contract) RegisterMerchant(addr host.Address) (uint64, error) {
	if !c.requireAuth(addr) {
		return 0, newErr(ErrNotAuthorized)
	}
	if err := c.assertNotPaused(); err != nil {
		return 0, err
	}
	t := c.begin()
	if _, ok, err := t.get(keylet.MerchantByAddress(addr[:])); err != nil {
		t.discard()
		return 0, wrapErr(ErrMerchantAlreadyRegistered, err)
	} else if ok {
		t.discard()
		return 0, newErr(ErrMerchantAlreadyRegistered)
	}
	countRaw, _, err := t.get(keylet.MerchantCount())
	if err != nil {
		t.discard()
		return 0, wrapErr(ErrMerchantAlreadyRegistered, err)
	}
	id := decodeU64(countRaw) + 1

	m := &Merchant{ID: id, Address: addr, Active: true, Verified: false, RegisteredAt: c.host.Clock().Now()}
	enc, err := m.encode()
	if err != nil {
		t.discard()
		return 0, wrapErr(ErrMerchantAlreadyRegistered, err)
	}
	t.put(keylet.Merchant(id), enc)
	t.put(keylet.MerchantByAddress(addr[:]), encodeU64(id))
	t.put(keylet.MerchantCount(), encodeU64(id))
	if err := t.commit(); err != nil {
		return 0, wrapErr(ErrMerchantAlreadyRegistered, err)
	}
	c.emit("MerchantRegistered", struct {
		ID      uint64
		Address host.Address
	}{id, addr})
	return id, nil
}

func (c *Contract) getMerchant(id uint64) (*Merchant, error) {
	raw, ok, err := c.host.Store().Get(keylet.Merchant(id))
	if err != nil {
		return nil, wrapErr(ErrMerchantNotFound, err)
	}
	if !ok {
		return nil, newErr(ErrMerchantNotFound)
	}
	return decodeMerchant(raw)
}

// GetMerchant looks up a merchant by id.
func (c *Contract) GetMerchant(id uint64) (*Merchant, error) { return c.getMerchant(id) }

// MerchantFilter narrows GetMerchants results.
type MerchantFilter struct {
	ActiveOnly   bool
	VerifiedOnly bool
}

// GetMerchants scans ids 1..=count and returns those matching filter — a
// bounded convenience method; spec.md §9 notes this is a poor fit for
// large deployments and recommends an off-chain indexer (internal/indexer)
// instead for production query volume.
func (c *Contract) GetMerchants(filter MerchantFilter) ([]*Merchant, error) {
	countRaw, _, err := c.host.Store().Get(keylet.MerchantCount())
	if err != nil {
		return nil, wrapErr(ErrMerchantNotFound, err)
	}
	count := decodeU64(countRaw)
	out := make([]*Merchant, 0, count)
	for id := uint64(1); id <= count; id++ {
		m, err := c.getMerchant(id)
		if err != nil {
			return nil, err
		}
		if filter.ActiveOnly && !m.Active {
			continue
		}
		if filter.VerifiedOnly && !m.Verified {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// IsMerchant reports whether addr has registered.
func (c *Contract) IsMerchant(addr host.Address) (bool, error) {
	_, ok, err := c.host.Store().Get(keylet.MerchantByAddress(addr[:]))
	if err != nil {
		return false, wrapErr(ErrMerchantNotFound, err)
	}
	return ok, nil
}

func (c *Contract) merchantIDOf(addr host.Address) (uint64, bool, error) {
	raw, ok, err := c.host.Store().Get(keylet.MerchantByAddress(addr[:]))
	if err != nil || !ok {
		return 0, false, err
	}
	return decodeU64(raw), true, nil
}

// SetMerchantStatus flips a merchant's active flag. Admin-only.
func (c *Contract) SetMerchantStatus(admin host.Address, id uint64, active bool) error {
	if err := c.requireAdmin(admin); err != nil {
		return err
	}
	if err := c.assertNotPaused(); err != nil {
		return err
	}
	return c.updateMerchant(id, func(m *Merchant) { m.Active = active })
}

// IsMerchantActive reports whether merchant id is active.
func (c *Contract) IsMerchantActive(id uint64) (bool, error) {
	m, err := c.getMerchant(id)
	if err != nil {
		return false, err
	}
	return m.Active, nil
}

// VerifyMerchant flips a merchant's verified flag. Admin-only.
func (c *Contract) VerifyMerchant(admin host.Address, id uint64, verified bool) error {
	if err := c.requireAdmin(admin); err != nil {
		return err
	}
	if err := c.assertNotPaused(); err != nil {
		return err
	}
	return c.updateMerchant(id, func(m *Merchant) { m.Verified = verified })
}

// IsMerchantVerified reports whether merchant id is verified.
func (c *Contract) IsMerchantVerified(id uint64) (bool, error) {
	m, err := c.getMerchant(id)
	if err != nil {
		return false, err
	}
	return m.Verified, nil
}

func (c *Contract) updateMerchant(id uint64, mutate func(*Merchant)) error {
	t := c.begin()
	raw, ok, err := t.get(keylet.Merchant(id))
	if err != nil {
		t.discard()
		return wrapErr(ErrMerchantNotFound, err)
	}
	if !ok {
		t.discard()
		return newErr(ErrMerchantNotFound)
	}
	m, err := decodeMerchant(raw)
	if err != nil {
		t.discard()
		return wrapErr(ErrMerchantNotFound, err)
	}
	mutate(m)
	enc, err := m.encode()
	if err != nil {
		t.discard()
		return wrapErr(ErrMerchantNotFound, err)
	}
	t.put(keylet.Merchant(id), enc)
	if err := t.commit(); err != nil {
		return wrapErr(ErrMerchantNotFound, err)
	}
	return nil
}

// SetMerchantKey overwrites merchant's registered Ed25519 public key.
// Requires merchant auth.
func (c *Contract) SetMerchantKey(merchant host.Address, key [32]byte) error {
	if !c.requireAuth(merchant) {
		return newErr(ErrNotAuthorized)
	}
	if err := c.assertNotPaused(); err != nil {
		return err
	}
	t := c.begin()
	t.put(keylet.MerchantKey(merchant[:]), key[:])
	if err := t.commit(); err != nil {
		return wrapErr(ErrNotAuthorized, err)
	}
	return nil
}

// GetMerchantKey returns merchant's registered Ed25519 public key.
func (c *Contract) GetMerchantKey(merchant host.Address) ([32]byte, error) {
	var out [32]byte
	raw, ok, err := c.host.Store().Get(keylet.MerchantKey(merchant[:]))
	if err != nil {
		return out, wrapErr(ErrMerchantKeyNotFound, err)
	}
	if !ok {
		return out, newErr(ErrMerchantKeyNotFound)
	}
	copy(out[:], raw)
	return out, nil
}

// SetMerchantAccount binds merchant's escrow contract address. Requires
// merchant auth.
func (c *Contract) SetMerchantAccount(merchant host.Address, account host.Address) error {
	if !c.requireAuth(merchant) {
		return newErr(ErrNotAuthorized)
	}
	if err := c.assertNotPaused(); err != nil {
		return err
	}
	id, ok, err := c.merchantIDOf(merchant)
	if err != nil {
		return wrapErr(ErrMerchantNotFound, err)
	}
	if !ok {
		return newErr(ErrMerchantNotFound)
	}
	t := c.begin()
	t.put(keylet.MerchantAccount(id), encodeAddress(account))
	if err := t.commit(); err != nil {
		return wrapErr(ErrMerchantNotFound, err)
	}
	return nil
}

// GetMerchantAccount returns merchant id's linked escrow address, or
// MerchantAccountNotSet if unset.
func (c *Contract) GetMerchantAccount(id uint64) (host.Address, error) {
	raw, ok, err := c.host.Store().Get(keylet.MerchantAccount(id))
	if err != nil {
		return host.Address{}, wrapErr(ErrMerchantAccountNotSet, err)
	}
	if !ok {
		return host.Address{}, newErr(ErrMerchantAccountNotSet)
	}
	return decodeAddress(raw), nil
}

// RestrictMerchantAccount forwards the restriction flag to the merchant's
// escrow contract. Admin-gated; the escrow contract itself is out of core
// scope per spec.md §1, so this returns the merchant's account address for
// the caller to relay to that external collaborator; status is not stored
// or returned.
func (c *Contract) RestrictMerchantAccount(caller host.Address, merchant uint64, status bool) (host.Address, error) {
	if err := c.requireAdmin(caller); err != nil {
		return host.Address{}, err
	}
	return c.GetMerchantAccount(merchant)
}
