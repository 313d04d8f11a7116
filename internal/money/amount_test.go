package money_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ogstevyn/shade/internal/money"
)

func TestAddSaturatesAtMax(t *testing.T) {
	max := new(big.Int).Lsh(big.NewInt(1), 127)
	max.Sub(max, big.NewInt(1))
	a := money.FromBigInt(max)
	got := a.Add(money.FromInt64(1))
	assert.Equal(t, 0, got.Cmp(a))
}

func TestSubSaturatesAtMin(t *testing.T) {
	min := new(big.Int).Lsh(big.NewInt(1), 127)
	min.Neg(min)
	a := money.FromBigInt(min)
	got := a.Sub(money.FromInt64(1))
	assert.Equal(t, 0, got.Cmp(a))
}

func TestFeeBasisPointsTruncates(t *testing.T) {
	a := money.FromInt64(999)
	fee := a.FeeBasisPoints(250) // 2.5% of 999 = 24.975 -> 24
	assert.Equal(t, int64(24), fee.Int64())
}

func TestFeeBasisPointsZero(t *testing.T) {
	a := money.FromInt64(1000)
	fee := a.FeeBasisPoints(0)
	assert.True(t, fee.IsZero())
}

func TestBytes16RoundTripsSign(t *testing.T) {
	pos := money.FromInt64(42)
	b := pos.Bytes16()
	assert.Equal(t, byte(42), b[15])
	for _, x := range b[:15] {
		assert.Equal(t, byte(0), x)
	}

	neg := money.FromInt64(-1)
	nb := neg.Bytes16()
	for _, x := range nb {
		assert.Equal(t, byte(0xFF), x)
	}
}

func TestMarshalBinaryRoundTrip(t *testing.T) {
	a := money.FromInt64(-123456789)
	data, err := a.MarshalBinary()
	require.NoError(t, err)

	var b money.Amount
	require.NoError(t, b.UnmarshalBinary(data))
	assert.Equal(t, 0, a.Cmp(b))
}

func TestCmpAndComparisons(t *testing.T) {
	a := money.FromInt64(10)
	b := money.FromInt64(20)
	assert.True(t, a.LessThanOrEqual(b))
	assert.True(t, b.GreaterThan(a))
	assert.False(t, a.GreaterThan(b))
	assert.Equal(t, -1, a.Cmp(b))
}
