// Pause: the global kill switch, spec.md §4.2.
package shade

import (
	"github.com/Ogstevyn/shade/internal/host"
	"github.com/Ogstevyn/shade/internal/keylet"
)

// Pause sets the kill switch. Admin-only.
func (c *Contract) Pause(admin host.Address) error {
	if err := c.requireAdmin(admin); err != nil {
		return err
	}
	return c.setPaused(true)
}

// Unpause clears the kill switch. Admin-only.
func (c *Contract) Unpause(admin host.Address) error {
	if err := c.requireAdmin(admin); err != nil {
		return err
	}
	return c.setPaused(false)
}

func (c *Contract) setPaused(v bool) error {
	t := c.begin()
	t.put(keylet.Paused(), encodeBool(v))
	if err := t.commit(); err != nil {
		return wrapErr(ErrContractPaused, err)
	}
	return nil
}

// IsPaused reports the kill switch's current state.
func (c *Contract) IsPaused() (bool, error) {
	raw, ok, err := c.host.Store().Get(keylet.Paused())
	if err != nil {
		return false, wrapErr(ErrContractPaused, err)
	}
	return ok && decodeBool(raw), nil
}
