// Package money implements the i128 monetary amount used throughout Shade.
//
// Every amount in the protocol (invoice totals, fees, plan prices) is a
// signed 128-bit integer expressed in token base units. Go has no native
// int128, so amounts are backed by math/big and clamped to the signed
// 128-bit range on every arithmetic operation, matching spec.md's
// "implementations must saturate or abort on overflow rather than wrap".
package money

import "math/big"

// Amount is a signed 128-bit integer in token base units.
type Amount struct {
	v *big.Int
}

var (
	maxI128 = func() *big.Int {
		n := new(big.Int).Lsh(big.NewInt(1), 127)
		return n.Sub(n, big.NewInt(1))
	}()
	minI128 = func() *big.Int {
		n := new(big.Int).Lsh(big.NewInt(1), 127)
		return n.Neg(n)
	}()
)

// Zero is the zero amount.
func Zero() Amount { return Amount{v: big.NewInt(0)} }

// FromInt64 builds an Amount from an int64.
func FromInt64(n int64) Amount { return Amount{v: big.NewInt(n)} }

// FromBigInt clamps an arbitrary big.Int into the i128 range.
func FromBigInt(n *big.Int) Amount { return Amount{v: clamp(new(big.Int).Set(n))} }

func clamp(n *big.Int) *big.Int {
	if n.Cmp(maxI128) > 0 {
		return new(big.Int).Set(maxI128)
	}
	if n.Cmp(minI128) < 0 {
		return new(big.Int).Set(minI128)
	}
	return n
}

// IsPositive reports whether the amount is strictly greater than zero.
func (a Amount) IsPositive() bool { return a.v.Sign() > 0 }

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool { return a.v.Sign() == 0 }

// Sign returns -1, 0, or 1.
func (a Amount) Sign() int { return a.v.Sign() }

// Add returns a+b, saturated to the i128 range.
func (a Amount) Add(b Amount) Amount { return Amount{v: clamp(new(big.Int).Add(a.v, b.v))} }

// Sub returns a-b, saturated to the i128 range.
func (a Amount) Sub(b Amount) Amount { return Amount{v: clamp(new(big.Int).Sub(a.v, b.v))} }

// Cmp compares a to b: -1, 0, or 1.
func (a Amount) Cmp(b Amount) int { return a.v.Cmp(b.v) }

// LessThanOrEqual reports whether a <= b.
func (a Amount) LessThanOrEqual(b Amount) bool { return a.Cmp(b) <= 0 }

// GreaterThan reports whether a > b.
func (a Amount) GreaterThan(b Amount) bool { return a.Cmp(b) > 0 }

// FeeBasisPoints computes floor(a * bp / 10_000), the truncating fee split
// math required by spec.md §4.6.
func (a Amount) FeeBasisPoints(bp int64) Amount {
	num := new(big.Int).Mul(a.v, big.NewInt(bp))
	num.Div(num, big.NewInt(BasisPointsDenominator))
	return Amount{v: clamp(num)}
}

// BasisPointsDenominator is 1 basis point = 1/10_000.
const BasisPointsDenominator = 10_000

// Bytes16 renders the amount as a 16-byte big-endian two's-complement
// buffer, the encoding spec.md §4.5 requires for the signed-invoice
// canonical message.
func (a Amount) Bytes16() [16]byte {
	var out [16]byte
	n := new(big.Int).Set(a.v)
	if n.Sign() >= 0 {
		b := n.Bytes()
		copy(out[16-len(b):], b)
		return out
	}
	// two's complement of the magnitude over 128 bits
	mod := new(big.Int).Lsh(big.NewInt(1), 128)
	n.Add(n, mod)
	b := n.Bytes()
	copy(out[16-len(b):], b)
	return out
}

// String renders the base-10 representation.
func (a Amount) String() string { return a.v.String() }

// Int64 returns the value truncated to int64, for callers that know the
// amount fits (tests, CLI display).
func (a Amount) Int64() int64 { return a.v.Int64() }

// MarshalBinary implements encoding.BinaryMarshaler for codec-based
// persistence.
func (a Amount) MarshalBinary() ([]byte, error) { return a.v.MarshalText() }

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (a *Amount) UnmarshalBinary(data []byte) error {
	a.v = new(big.Int)
	return a.v.UnmarshalText(data)
}
