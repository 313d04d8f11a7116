// Package identity derives short, human-shareable account identifiers from
// the raw 32-byte host.Address the core protocol actually keys state by.
// The encoding follows the same idea XRPL classic addresses use (a
// version-byte-prefixed RIPEMD-160 digest, base-encoded with a checksum),
// generalized to Shade's flat address space rather than XRPL's specific
// account-ID derivation chain.
package identity

import (
	"crypto/sha256"
	"encoding/base32"
	"errors"
	"fmt"

	"github.com/decred/dcrd/crypto/ripemd160"

	"github.com/Ogstevyn/shade/internal/host"
)

// versionByte tags every derived identifier so a Shade identifier can never
// be mistaken for a raw hex address.
const versionByte = 0x23

// ErrChecksumMismatch is returned by Parse when the trailing checksum does
// not match the decoded payload.
var ErrChecksumMismatch = errors.New("identity: checksum mismatch")

// Derive computes the short identifier for addr: RIPEMD-160(SHA-256(addr)),
// prefixed with versionByte, suffixed with a 4-byte SHA-256d checksum, and
// base32-encoded without padding.
func Derive(addr host.Address) string {
	sha := sha256.Sum256(addr[:])
	r := ripemd160.New()
	r.Write(sha[:])
	digest := r.Sum(nil)

	payload := make([]byte, 0, 1+len(digest))
	payload = append(payload, versionByte)
	payload = append(payload, digest...)

	checksum := doubleSHA256(payload)[:4]
	payload = append(payload, checksum...)

	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(payload)
}

// Parse validates that s decodes to a well-formed Shade identifier — the
// right version byte and a matching checksum — and returns its 20-byte
// RIPEMD-160 digest. Since the derivation is one-way, Parse cannot recover
// the original host.Address; it is for display/validation only.
func Parse(s string) ([]byte, error) {
	payload, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("identity: malformed encoding: %w", err)
	}
	if len(payload) != 1+ripemd160.Size+4 {
		return nil, fmt.Errorf("identity: unexpected length %d", len(payload))
	}
	if payload[0] != versionByte {
		return nil, fmt.Errorf("identity: unexpected version byte 0x%02x", payload[0])
	}
	body, checksum := payload[:len(payload)-4], payload[len(payload)-4:]
	want := doubleSHA256(body)[:4]
	for i := range want {
		if want[i] != checksum[i] {
			return nil, ErrChecksumMismatch
		}
	}
	return body[1:], nil
}

func doubleSHA256(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:]
}
