package shade

import (
	"github.com/Ogstevyn/shade/internal/host"
	"github.com/Ogstevyn/shade/internal/money"
)

// TokenLedger is the fungible-token contract's standard transfer surface
// (spec.md §1: "out of scope ... treated as external collaborators").
// Shade depends on it only through this interface so the core protocol
// never hard-codes a specific token implementation.
type TokenLedger interface {
	// Transfer moves amount of token from payer-authorized from to to.
	Transfer(token, from, to host.Address, amount money.Amount) error
	// TransferFrom moves amount of token from "from" to "to" using an
	// allowance previously granted to spender — the pull-payment path
	// subscriptions use.
	TransferFrom(token, spender, from, to host.Address, amount money.Amount) error
}

// Escrow is the merchant account contract's refund surface (spec.md §1).
type Escrow interface {
	// Refund transfers amount of token from the merchant account back to
	// to (the original payer).
	Refund(account, token host.Address, amount money.Amount, to host.Address) error
}

// SetCollaborators wires the external token ledger and escrow
// collaborators deployment/factory code is responsible for instantiating
// (spec.md §1's non-core scope). Both may be left nil in contexts that
// only exercise bookkeeping (e.g. read-only query tests).
func (c *Contract) SetCollaborators(tokens TokenLedger, escrow Escrow) {
	c.tokens = tokens
	c.escrow = escrow
}
