package shade_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ogstevyn/shade/internal/host"
	"github.com/Ogstevyn/shade/internal/money"
	"github.com/Ogstevyn/shade/internal/shade"
)

func TestAcceptedTokenLifecycle(t *testing.T) {
	c, h, admin := newInitialized(t)
	token := addr(10)

	ok, err := c.IsAcceptedToken(token)
	require.NoError(t, err)
	assert.False(t, ok)

	h.Authorize(admin)
	require.NoError(t, c.AddAcceptedToken(admin, token))
	h.Deauthorize()

	ok, err = c.IsAcceptedToken(token)
	require.NoError(t, err)
	assert.True(t, ok)

	h.Authorize(admin)
	require.NoError(t, c.RemoveAcceptedToken(admin, token))
	h.Deauthorize()

	ok, err = c.IsAcceptedToken(token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddAcceptedTokensBulk(t *testing.T) {
	c, h, admin := newInitialized(t)
	tA, tB := addr(10), addr(11)

	h.Authorize(admin)
	require.NoError(t, c.AddAcceptedTokens(admin, []host.Address{tA, tB}))
	h.Deauthorize()

	ok, err := c.IsAcceptedToken(tA)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = c.IsAcceptedToken(tB)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSetFeeValidatesRange(t *testing.T) {
	c, h, admin := newInitialized(t)
	token := addr(10)

	h.Authorize(admin)
	err := c.SetFee(admin, token, -1)
	require.Error(t, err)
	assert.Equal(t, shade.ErrInvalidAmount, shade.CodeOf(err))

	err = c.SetFee(admin, token, money.BasisPointsDenominator+1)
	require.Error(t, err)
	assert.Equal(t, shade.ErrInvalidAmount, shade.CodeOf(err))

	require.NoError(t, c.SetFee(admin, token, 250))
	h.Deauthorize()

	bp, err := c.GetFee(token)
	require.NoError(t, err)
	assert.Equal(t, int64(250), bp)
}

func TestGetFeeDefaultsToZero(t *testing.T) {
	c, _, _ := newInitialized(t)
	bp, err := c.GetFee(addr(99))
	require.NoError(t, err)
	assert.Equal(t, int64(0), bp)
}

func TestAccountWasmHashRoundtrip(t *testing.T) {
	c, h, admin := newInitialized(t)

	_, err := c.AccountWasmHash()
	require.Error(t, err)
	assert.Equal(t, shade.ErrWasmHashNotSet, shade.CodeOf(err))

	var hash [32]byte
	hash[0] = 0xAB
	h.Authorize(admin)
	require.NoError(t, c.SetAccountWasmHash(admin, hash))
	h.Deauthorize()

	got, err := c.AccountWasmHash()
	require.NoError(t, err)
	assert.Equal(t, hash, got)
}

func TestUpgradeRecordsWasmHashAndRequiresAdmin(t *testing.T) {
	c, h, admin := newInitialized(t)

	_, err := c.ContractWasmHash()
	require.Error(t, err)
	assert.Equal(t, shade.ErrWasmHashNotSet, shade.CodeOf(err))

	var hash [32]byte
	hash[0] = 0xCD
	h.Authorize(addr(99))
	err = c.Upgrade(addr(99), hash)
	h.Deauthorize()
	require.Error(t, err)
	assert.Equal(t, shade.ErrNotAuthorized, shade.CodeOf(err))

	h.Authorize(admin)
	require.NoError(t, c.Upgrade(admin, hash))
	h.Deauthorize()

	got, err := c.ContractWasmHash()
	require.NoError(t, err)
	assert.Equal(t, hash, got)
}
