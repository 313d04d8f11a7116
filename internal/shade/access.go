// Access control: spec.md §4.1. Admin is implicit for the stored admin
// address; Manager/Operator are explicit per-user flags.
package shade

import (
	"github.com/Ogstevyn/shade/internal/host"
	"github.com/Ogstevyn/shade/internal/keylet"
)

// GrantRole assigns role to user. Admin-only.
func (c *Contract) GrantRole(admin, user host.Address, role Role) error {
	if err := c.requireAdmin(admin); err != nil {
		return err
	}
	if role == RoleAdmin {
		return newErr(ErrNotAuthorized)
	}
	t := c.begin()
	t.put(keylet.Role(user[:], uint8(role)), encodeBool(true))
	if err := t.commit(); err != nil {
		return wrapErr(ErrNotAuthorized, err)
	}
	return nil
}

// RevokeRole removes role from user. Admin-only.
func (c *Contract) RevokeRole(admin, user host.Address, role Role) error {
	if err := c.requireAdmin(admin); err != nil {
		return err
	}
	t := c.begin()
	t.del(keylet.Role(user[:], uint8(role)))
	if err := t.commit(); err != nil {
		return wrapErr(ErrNotAuthorized, err)
	}
	return nil
}

// HasRole reports whether user holds role. Admin is true iff user equals
// the stored admin address.
func (c *Contract) HasRole(user host.Address, role Role) (bool, error) {
	if role == RoleAdmin {
		return c.isAdmin(user)
	}
	raw, ok, err := c.host.Store().Get(keylet.Role(user[:], uint8(role)))
	if err != nil {
		return false, wrapErr(ErrNotAuthorized, err)
	}
	if !ok {
		return false, nil
	}
	return decodeBool(raw), nil
}

// requireAdmin checks host auth for admin and that admin is in fact the
// stored admin.
func (c *Contract) requireAdmin(admin host.Address) error {
	if !c.requireAuth(admin) {
		return newErr(ErrNotAuthorized)
	}
	ok, err := c.isAdmin(admin)
	if err != nil {
		return err
	}
	if !ok {
		return newErr(ErrNotAuthorized)
	}
	return nil
}

// ProposeAdminTransfer overwrites any prior pending admin. Idempotent:
// last writer wins.
func (c *Contract) ProposeAdminTransfer(currentAdmin, newAdmin host.Address) error {
	if err := c.requireAdmin(currentAdmin); err != nil {
		return err
	}
	t := c.begin()
	t.put(keylet.PendingAdmin(), encodeAddress(newAdmin))
	if err := t.commit(); err != nil {
		return wrapErr(ErrNotAuthorized, err)
	}
	return nil
}

// AcceptAdminTransfer completes a two-step transfer. Only the pending
// admin may call it; it is single-shot.
func (c *Contract) AcceptAdminTransfer(newAdmin host.Address) error {
	if !c.requireAuth(newAdmin) {
		return newErr(ErrNotAuthorized)
	}
	t := c.begin()
	raw, ok, err := t.get(keylet.PendingAdmin())
	if err != nil {
		t.discard()
		return wrapErr(ErrNotAuthorized, err)
	}
	if !ok || decodeAddress(raw) != newAdmin {
		t.discard()
		return newErr(ErrNotAuthorized)
	}
	info, err := c.contractInfo()
	if err != nil {
		t.discard()
		return err
	}
	info.Admin = newAdmin
	enc, err := info.encode()
	if err != nil {
		t.discard()
		return wrapErr(ErrNotAuthorized, err)
	}
	t.put(keylet.ContractInfo(), enc)
	t.del(keylet.PendingAdmin())
	if err := t.commit(); err != nil {
		return wrapErr(ErrNotAuthorized, err)
	}
	return nil
}
