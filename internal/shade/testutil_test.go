package shade_test

import (
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Ogstevyn/shade/internal/host"
	"github.com/Ogstevyn/shade/internal/host/memory"
	"github.com/Ogstevyn/shade/internal/money"
	"github.com/Ogstevyn/shade/internal/shade"
)

func addr(b byte) host.Address {
	var a host.Address
	a[0] = b
	return a
}

// contractSelfAddress is the address newInitialized wires every test
// Contract up with.
var contractSelfAddress = addr(0xFF)

// newInitialized returns a contract already Initialize()d with admin.
func newInitialized(t *testing.T) (*shade.Contract, *memory.Host, host.Address) {
	t.Helper()
	h := memory.New()
	admin := addr(1)
	c := shade.NewContract(h, contractSelfAddress)
	h.Authorize(admin)
	require.NoError(t, c.Initialize(admin))
	h.Deauthorize()
	return c, h, admin
}

// registerMerchant authorizes merchantAddr, registers it and sets its
// account, then (as admin) marks token accepted with feeBp.
func registerMerchant(t *testing.T, c *shade.Contract, h *memory.Host, admin, merchantAddr, account, token host.Address, feeBp int64) uint64 {
	t.Helper()
	h.Authorize(merchantAddr)
	id, err := c.RegisterMerchant(merchantAddr)
	require.NoError(t, err)
	require.NoError(t, c.SetMerchantAccount(merchantAddr, account))
	h.Deauthorize()

	h.Authorize(admin)
	require.NoError(t, c.AddAcceptedToken(admin, token))
	require.NoError(t, c.SetFee(admin, token, feeBp))
	h.Deauthorize()
	return id
}

type signedMerchant struct {
	Address host.Address
	Pub     ed25519.PublicKey
	Priv    ed25519.PrivateKey
}

func newSignedMerchant(t *testing.T, c *shade.Contract, h *memory.Host, addr host.Address) signedMerchant {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	h.Authorize(addr)
	var key [32]byte
	copy(key[:], pub)
	require.NoError(t, c.SetMerchantKey(addr, key))
	h.Deauthorize()
	return signedMerchant{Address: addr, Pub: pub, Priv: priv}
}

func zeroAmount() money.Amount { return money.Zero() }

func mustTime(h *memory.Host) time.Time { return h.Clock().Now() }

// transferRecord is one recorded Transfer/TransferFrom call. Spender is
// the zero address for plain Transfer calls, which have no spender.
type transferRecord struct {
	Token, Spender, From, To host.Address
	Amount                   money.Amount
}

// fakeLedger is a recording TokenLedger test double; every call succeeds.
type fakeLedger struct {
	transfers []transferRecord
}

func (f *fakeLedger) Transfer(token, from, to host.Address, amount money.Amount) error {
	f.transfers = append(f.transfers, transferRecord{Token: token, From: from, To: to, Amount: amount})
	return nil
}

func (f *fakeLedger) TransferFrom(token, spender, from, to host.Address, amount money.Amount) error {
	f.transfers = append(f.transfers, transferRecord{Token: token, Spender: spender, From: from, To: to, Amount: amount})
	return nil
}

// refundRecord is one recorded Escrow.Refund call.
type refundRecord struct {
	Account, Token, To host.Address
	Amount             money.Amount
}

type fakeEscrow struct {
	refunds []refundRecord
}

func (f *fakeEscrow) Refund(account, token host.Address, amount money.Amount, to host.Address) error {
	f.refunds = append(f.refunds, refundRecord{account, token, to, amount})
	return nil
}
