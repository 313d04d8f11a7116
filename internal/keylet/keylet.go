// Package keylet generates tagged storage keys for Shade's persistent
// key->value map, generalizing goXRPLd's ledger/keylet package: every
// entity kind is namespaced so two different entities can never collide in
// the flat keyspace, satisfying spec.md §3's "keys are tagged variants so
// collision is impossible across entity kinds".
package keylet

import (
	"crypto/sha256"
	"encoding/binary"
)

// space identifies an entity kind. Values are stable; they are persisted
// implicitly via the keys they produce and must never be reassigned.
type space byte

const (
	spaceContractInfo   space = 'c'
	spaceAdmin          space = 'A'
	spacePendingAdmin   space = 'P'
	spaceRole           space = 'R'
	spacePaused         space = 'X'
	spaceAcceptedToken  space = 't'
	spaceTokenFee       space = 'f'
	spaceAccountWasm    space = 'w'
	spaceContractWasm   space = 'W'
	spaceMerchantCount  space = 'M'
	spaceMerchant       space = 'm'
	spaceMerchantByAddr space = 'n'
	spaceMerchantKey    space = 'k'
	spaceMerchantAcct   space = 'a'
	spaceUsedNonce      space = 'N'
	spaceInvoiceCount   space = 'I'
	spaceInvoice        space = 'i'
	spacePlanCount      space = 'L'
	spacePlan           space = 'l'
	spaceSubCount       space = 'S'
	spaceSub            space = 's'
)

// Key is an opaque, collision-free storage key.
type Key [32]byte

func build(sp space, parts ...[]byte) Key {
	h := sha256.New()
	h.Write([]byte{byte(sp)})
	for _, p := range parts {
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(p)))
		h.Write(lenBuf[:])
		h.Write(p)
	}
	var out Key
	copy(out[:], h.Sum(nil))
	return out
}

func u64(n uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	return b[:]
}

// ContractInfo is the singleton contract metadata entry.
func ContractInfo() Key { return build(spaceContractInfo) }

// PendingAdmin is the singleton two-step-transfer slot.
func PendingAdmin() Key { return build(spacePendingAdmin) }

// Paused is the singleton kill-switch flag.
func Paused() Key { return build(spacePaused) }

// Role addresses a (user, role) grant.
func Role(user []byte, role uint8) Key { return build(spaceRole, user, []byte{role}) }

// AcceptedToken addresses a token's membership in the accepted set.
func AcceptedToken(token []byte) Key { return build(spaceAcceptedToken, token) }

// TokenFee addresses a token's fee-bp entry.
func TokenFee(token []byte) Key { return build(spaceTokenFee, token) }

// AccountWasmHash is the singleton merchant-account code-hash slot.
func AccountWasmHash() Key { return build(spaceAccountWasm) }

// ContractWasmHash is the singleton slot recording the code hash the
// contract itself last upgraded to.
func ContractWasmHash() Key { return build(spaceContractWasm) }

// MerchantCount is the singleton merchant id counter.
func MerchantCount() Key { return build(spaceMerchantCount) }

// Merchant addresses a Merchant entity by id.
func Merchant(id uint64) Key { return build(spaceMerchant, u64(id)) }

// MerchantByAddress addresses the address->id reverse index.
func MerchantByAddress(addr []byte) Key { return build(spaceMerchantByAddr, addr) }

// MerchantKey addresses a merchant's registered Ed25519 public key.
func MerchantKey(addr []byte) Key { return build(spaceMerchantKey, addr) }

// MerchantAccount addresses a merchant's linked escrow account.
func MerchantAccount(id uint64) Key { return build(spaceMerchantAcct, u64(id)) }

// UsedNonce addresses a (merchant, nonce) one-shot replay guard.
func UsedNonce(merchant []byte, nonce [32]byte) Key {
	return build(spaceUsedNonce, merchant, nonce[:])
}

// InvoiceCount is the singleton invoice id counter.
func InvoiceCount() Key { return build(spaceInvoiceCount) }

// Invoice addresses an Invoice entity by id.
func Invoice(id uint64) Key { return build(spaceInvoice, u64(id)) }

// PlanCount is the singleton subscription-plan id counter.
func PlanCount() Key { return build(spacePlanCount) }

// Plan addresses a SubscriptionPlan entity by id.
func Plan(id uint64) Key { return build(spacePlan, u64(id)) }

// SubscriptionCount is the singleton subscription id counter.
func SubscriptionCount() Key { return build(spaceSubCount) }

// Subscription addresses a Subscription entity by id.
func Subscription(id uint64) Key { return build(spaceSub, u64(id)) }
