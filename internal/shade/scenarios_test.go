package shade_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ogstevyn/shade/internal/money"
	"github.com/Ogstevyn/shade/internal/shade"
)

// TestScenarioFullMerchantLifecycle exercises registration through a paid,
// partially refunded invoice and an active subscription in one continuous
// run, the way a merchant onboarding end to end would.
func TestScenarioFullMerchantLifecycle(t *testing.T) {
	c, h, admin := newInitialized(t)
	merchant, account, token, payer := addr(5), addr(50), addr(10), addr(100)

	h.Authorize(merchant)
	merchantID, err := c.RegisterMerchant(merchant)
	require.NoError(t, err)
	require.NoError(t, c.SetMerchantAccount(merchant, account))
	h.Deauthorize()

	h.Authorize(admin)
	require.NoError(t, c.AddAcceptedToken(admin, token))
	require.NoError(t, c.SetFee(admin, token, 100)) // 1%
	require.NoError(t, c.VerifyMerchant(admin, merchantID, true))
	h.Deauthorize()

	ledger := &fakeLedger{}
	escrow := &fakeEscrow{}
	c.SetCollaborators(ledger, escrow)

	h.Authorize(merchant)
	invID, err := c.CreateInvoice(merchant, "annual support", money.FromInt64(100_000), token, nil)
	h.Deauthorize()
	require.NoError(t, err)

	h.Authorize(payer)
	require.NoError(t, c.PayInvoice(payer, invID))
	h.Deauthorize()

	inv, err := c.GetInvoice(invID)
	require.NoError(t, err)
	assert.Equal(t, shade.StatusPaid, inv.Status)
	assert.Equal(t, int64(99_000), ledger.transfers[0].Amount.Int64())
	assert.Equal(t, int64(1_000), ledger.transfers[1].Amount.Int64())

	require.NoError(t, c.RefundInvoicePartial(invID, money.FromInt64(20_000)))
	inv, err = c.GetInvoice(invID)
	require.NoError(t, err)
	assert.Equal(t, shade.StatusPartiallyRefunded, inv.Status)
	assert.Equal(t, int64(20_000), inv.AmountRefunded.Int64())
	require.Len(t, escrow.refunds, 1)

	h.Authorize(merchant)
	planID, err := c.CreatePlan(merchant, "support retainer", money.FromInt64(5_000), token, 30*86400)
	h.Deauthorize()
	require.NoError(t, err)

	h.Authorize(payer)
	subID, err := c.Subscribe(payer, planID)
	h.Deauthorize()
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, c.ChargeSubscription(subID))
		h.Advance(31 * 24 * time.Hour)
	}
	sub, err := c.GetSubscription(subID)
	require.NoError(t, err)
	assert.Equal(t, shade.SubActive, sub.Status)

	h.Authorize(payer)
	require.NoError(t, c.CancelSubscription(payer, subID))
	h.Deauthorize()

	err = c.ChargeSubscription(subID)
	require.Error(t, err)
	assert.Equal(t, shade.ErrSubscriptionNotActive, shade.CodeOf(err))
}

// TestScenarioPauseFreezesEverythingExceptAdmin exercises spec.md §4.2's
// pause invariant: while paused, PayInvoice fails with ErrContractPaused
// but the admin transfer still completes, and once the new admin unpauses
// the same payment succeeds.
func TestScenarioPauseFreezesEverythingExceptAdmin(t *testing.T) {
	c, h, admin := newInitialized(t)
	merchant, account, token, payer := addr(5), addr(50), addr(10), addr(100)
	registerMerchant(t, c, h, admin, merchant, account, token, 0)
	c.SetCollaborators(&fakeLedger{}, &fakeEscrow{})

	h.Authorize(merchant)
	invID, err := c.CreateInvoice(merchant, "widget", money.FromInt64(1000), token, nil)
	h.Deauthorize()
	require.NoError(t, err)

	h.Authorize(admin)
	require.NoError(t, c.Pause(admin))
	h.Deauthorize()

	h.Authorize(payer)
	err = c.PayInvoice(payer, invID)
	h.Deauthorize()
	require.Error(t, err)
	assert.Equal(t, shade.ErrContractPaused, shade.CodeOf(err))

	newAdmin := addr(2)
	h.Authorize(admin)
	require.NoError(t, c.ProposeAdminTransfer(admin, newAdmin))
	h.Deauthorize()
	h.Authorize(newAdmin)
	require.NoError(t, c.AcceptAdminTransfer(newAdmin))
	h.Deauthorize()

	got, err := c.GetAdmin()
	require.NoError(t, err)
	assert.Equal(t, newAdmin, got)

	h.Authorize(newAdmin)
	require.NoError(t, c.Unpause(newAdmin))
	h.Deauthorize()

	h.Authorize(payer)
	require.NoError(t, c.PayInvoice(payer, invID))
	h.Deauthorize()
}
