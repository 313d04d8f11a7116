// Signature & nonce: spec.md §4.5. The canonical message format is fixed
// with the contract address prefixed and the nonce placed before the
// amount — resolving the Open Question spec.md §9 flags, where the
// original source had two incompatible layouts. See DESIGN.md.
//
// The corpus carries no third-party XDR codec (goXRPLd rolls its own
// binary-codec package for XRPL's wire format rather than importing one),
// so canonicalMessage implements the same minimal, hand-written
// fixed/variable-length encoding goXRPLd's binary-codec demonstrates:
// fixed-size fields are emitted raw, and the one variable-length field
// (the description string) is length-prefixed, so two different byte
// sequences never produce the same canonical message.
package shade

import (
	"encoding/binary"

	"github.com/Ogstevyn/shade/internal/host"
	"github.com/Ogstevyn/shade/internal/keylet"
	"github.com/Ogstevyn/shade/internal/money"
)

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

// verifyInvoiceSignature loads the merchant's registered Ed25519 key,
// reconstructs the canonical message, and asks the host to verify it.
func (c *Contract) verifyInvoiceSignature(merchant host.Address, nonce [32]byte, amount money.Amount, token host.Address, description string, signature [64]byte) error {
	key, err := c.GetMerchantKey(merchant)
	if err != nil {
		return err
	}
	msg := canonicalMessage(c.selfAddress, merchant, nonce, amount, token, description)
	if !c.host.Crypto().VerifyEd25519(key[:], msg, signature[:]) {
		return newErr(ErrInvalidSignature)
	}
	return nil
}

// invalidateNonce consumes a per-merchant one-shot nonce within the
// calling transaction's batch, so a failing later precondition rolls the
// nonce back along with everything else.
func (t *txn) invalidateNonce(merchant host.Address, nonce [32]byte) error {
	k := keylet.UsedNonce(merchant[:], nonce)
	if _, ok, err := t.get(k); err != nil {
		return wrapErr(ErrNonceAlreadyUsed, err)
	} else if ok {
		return newErr(ErrNonceAlreadyUsed)
	}
	t.put(k, encodeBool(true))
	return nil
}

// InvalidateNonce is the standalone entry point spec.md §4.5 names,
// usable without also creating an invoice.
func (c *Contract) InvalidateNonce(merchant host.Address, nonce [32]byte) error {
	if err := c.assertNotPaused(); err != nil {
		return err
	}
	t := c.begin()
	if err := t.invalidateNonce(merchant, nonce); err != nil {
		t.discard()
		return err
	}
	if err := t.commit(); err != nil {
		return wrapErr(ErrNonceAlreadyUsed, err)
	}
	c.emit("NonceInvalidated", struct {
		Merchant host.Address
		Nonce    [32]byte
	}{merchant, nonce})
	return nil
}
