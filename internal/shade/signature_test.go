package shade_test

import (
	"crypto/ed25519"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ogstevyn/shade/internal/host"
	"github.com/Ogstevyn/shade/internal/money"
	"github.com/Ogstevyn/shade/internal/shade"
)

// canonicalMessage duplicates signature.go's unexported wire format so this
// external test package can build a message to sign without reaching into
// package internals.
func canonicalMessage(self, merchant host.Address, nonce [32]byte, amount money.Amount, token host.Address, description string) []byte {
	amt := amount.Bytes16()
	descBytes := []byte(description)
	var descLen [4]byte
	binary.BigEndian.PutUint32(descLen[:], uint32(len(descBytes)))

	out := make([]byte, 0, 32+32+32+16+32+4+len(descBytes))
	out = append(out, self[:]...)
	out = append(out, merchant[:]...)
	out = append(out, nonce[:]...)
	out = append(out, amt[:]...)
	out = append(out, token[:]...)
	out = append(out, descLen[:]...)
	out = append(out, descBytes...)
	return out
}

func TestInvalidateNonceSingleShot(t *testing.T) {
	c, h, _ := newInitialized(t)
	merchant := addr(5)
	h.Authorize(merchant)
	_, err := c.RegisterMerchant(merchant)
	require.NoError(t, err)
	h.Deauthorize()

	var nonce [32]byte
	nonce[0] = 1

	require.NoError(t, c.InvalidateNonce(merchant, nonce))
	err = c.InvalidateNonce(merchant, nonce)
	require.Error(t, err)
	assert.Equal(t, shade.ErrNonceAlreadyUsed, shade.CodeOf(err))
}

func TestCreateInvoiceSignedVerifiesSignature(t *testing.T) {
	c, h, admin := newInitialized(t)
	merchantAddr, account, token := addr(5), addr(50), addr(10)
	registerMerchant(t, c, h, admin, merchantAddr, account, token, 0)
	sm := newSignedMerchant(t, c, h, merchantAddr)

	h.Authorize(admin)
	require.NoError(t, c.GrantRole(admin, admin, shade.RoleManager))
	h.Deauthorize()

	amount := money.FromInt64(1000)
	var nonce [32]byte
	nonce[0] = 7
	desc := "invoice #1"

	var badSig [64]byte
	h.Authorize(admin)
	_, err := c.CreateInvoiceSigned(admin, merchantAddr, desc, amount, token, nonce, badSig)
	h.Deauthorize()
	require.Error(t, err)
	assert.Equal(t, shade.ErrInvalidSignature, shade.CodeOf(err))

	msg := canonicalMessage(contractSelfAddress, merchantAddr, nonce, amount, token, desc)
	var sig [64]byte
	copy(sig[:], ed25519.Sign(sm.Priv, msg))

	h.Authorize(admin)
	id, err := c.CreateInvoiceSigned(admin, merchantAddr, desc, amount, token, nonce, sig)
	h.Deauthorize()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	// the nonce is single-shot: replaying the same signed call fails
	h.Authorize(admin)
	_, err = c.CreateInvoiceSigned(admin, merchantAddr, desc, amount, token, nonce, sig)
	h.Deauthorize()
	require.Error(t, err)
	assert.Equal(t, shade.ErrNonceAlreadyUsed, shade.CodeOf(err))
}
