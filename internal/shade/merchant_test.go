package shade_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ogstevyn/shade/internal/shade"
)

func TestRegisterMerchantRequiresAuth(t *testing.T) {
	c, h, _ := newInitialized(t)
	merchant := addr(5)
	h.Authorize(addr(6))
	_, err := c.RegisterMerchant(merchant)
	require.Error(t, err)
	assert.Equal(t, shade.ErrNotAuthorized, shade.CodeOf(err))
}

func TestRegisterMerchantRejectsDuplicate(t *testing.T) {
	c, h, _ := newInitialized(t)
	merchant := addr(5)
	h.Authorize(merchant)
	id1, err := c.RegisterMerchant(merchant)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id1)

	_, err = c.RegisterMerchant(merchant)
	require.Error(t, err)
	assert.Equal(t, shade.ErrMerchantAlreadyRegistered, shade.CodeOf(err))
}

func TestMerchantStatusAndVerification(t *testing.T) {
	c, h, admin := newInitialized(t)
	merchant := addr(5)
	h.Authorize(merchant)
	id, err := c.RegisterMerchant(merchant)
	require.NoError(t, err)
	h.Deauthorize()

	active, err := c.IsMerchantActive(id)
	require.NoError(t, err)
	assert.True(t, active)

	verified, err := c.IsMerchantVerified(id)
	require.NoError(t, err)
	assert.False(t, verified)

	h.Authorize(admin)
	require.NoError(t, c.SetMerchantStatus(admin, id, false))
	require.NoError(t, c.VerifyMerchant(admin, id, true))
	h.Deauthorize()

	active, err = c.IsMerchantActive(id)
	require.NoError(t, err)
	assert.False(t, active)

	verified, err = c.IsMerchantVerified(id)
	require.NoError(t, err)
	assert.True(t, verified)
}

func TestGetMerchantsFilter(t *testing.T) {
	c, h, admin := newInitialized(t)
	m1, m2 := addr(5), addr(6)

	h.Authorize(m1)
	id1, err := c.RegisterMerchant(m1)
	require.NoError(t, err)
	h.Deauthorize()

	h.Authorize(m2)
	_, err = c.RegisterMerchant(m2)
	require.NoError(t, err)
	h.Deauthorize()

	h.Authorize(admin)
	require.NoError(t, c.VerifyMerchant(admin, id1, true))
	h.Deauthorize()

	verified, err := c.GetMerchants(shade.MerchantFilter{VerifiedOnly: true})
	require.NoError(t, err)
	require.Len(t, verified, 1)
	assert.Equal(t, id1, verified[0].ID)

	all, err := c.GetMerchants(shade.MerchantFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMerchantAccountNotSet(t *testing.T) {
	c, h, _ := newInitialized(t)
	merchant := addr(5)
	h.Authorize(merchant)
	id, err := c.RegisterMerchant(merchant)
	require.NoError(t, err)
	h.Deauthorize()

	_, err = c.GetMerchantAccount(id)
	require.Error(t, err)
	assert.Equal(t, shade.ErrMerchantAccountNotSet, shade.CodeOf(err))
}

func TestRestrictMerchantAccountRequiresAdmin(t *testing.T) {
	c, h, admin := newInitialized(t)
	merchant, account := addr(5), addr(50)

	h.Authorize(merchant)
	id, err := c.RegisterMerchant(merchant)
	require.NoError(t, err)
	require.NoError(t, c.SetMerchantAccount(merchant, account))
	h.Deauthorize()

	h.Authorize(merchant)
	_, err = c.RestrictMerchantAccount(merchant, id, true)
	require.Error(t, err)
	h.Deauthorize()

	h.Authorize(admin)
	got, err := c.RestrictMerchantAccount(admin, id, true)
	require.NoError(t, err)
	assert.Equal(t, account, got)
}
