package shade_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ogstevyn/shade/internal/money"
	"github.com/Ogstevyn/shade/internal/shade"
)

func TestCreateInvoiceRequiresAcceptedMerchant(t *testing.T) {
	c, h, _ := newInitialized(t)
	merchant := addr(5)
	h.Authorize(merchant)
	_, err := c.CreateInvoice(merchant, "x", money.FromInt64(100), addr(10), nil)
	h.Deauthorize()
	require.Error(t, err)
	assert.Equal(t, shade.ErrNotAuthorized, shade.CodeOf(err))
}

func TestCreateInvoiceRejectsNonPositiveAmount(t *testing.T) {
	c, h, admin := newInitialized(t)
	merchant, account, token := addr(5), addr(50), addr(10)
	registerMerchant(t, c, h, admin, merchant, account, token, 0)

	h.Authorize(merchant)
	_, err := c.CreateInvoice(merchant, "x", money.Zero(), token, nil)
	h.Deauthorize()
	require.Error(t, err)
	assert.Equal(t, shade.ErrInvalidAmount, shade.CodeOf(err))
}

func TestPayInvoiceFullSplitsFee(t *testing.T) {
	c, h, admin := newInitialized(t)
	merchant, account, token, payer := addr(5), addr(50), addr(10), addr(100)
	registerMerchant(t, c, h, admin, merchant, account, token, 250) // 2.5%

	ledger := &fakeLedger{}
	c.SetCollaborators(ledger, nil)

	h.Authorize(merchant)
	id, err := c.CreateInvoice(merchant, "widget", money.FromInt64(10_000), token, nil)
	h.Deauthorize()
	require.NoError(t, err)

	h.Authorize(payer)
	require.NoError(t, c.PayInvoice(payer, id))
	h.Deauthorize()

	inv, err := c.GetInvoice(id)
	require.NoError(t, err)
	assert.Equal(t, shade.StatusPaid, inv.Status)
	assert.Equal(t, int64(10_000), inv.AmountPaid.Int64())
	require.NotNil(t, inv.Payer)
	assert.Equal(t, payer, *inv.Payer)
	require.NotNil(t, inv.PaidAt)

	require.Len(t, ledger.transfers, 2)
	assert.Equal(t, int64(9_750), ledger.transfers[0].Amount.Int64())
	assert.Equal(t, account, ledger.transfers[0].To)
	assert.Equal(t, int64(250), ledger.transfers[1].Amount.Int64())
}

func TestPayInvoicePartialThenFull(t *testing.T) {
	c, h, admin := newInitialized(t)
	merchant, account, token, payer := addr(5), addr(50), addr(10), addr(100)
	registerMerchant(t, c, h, admin, merchant, account, token, 0)
	c.SetCollaborators(&fakeLedger{}, nil)

	h.Authorize(merchant)
	id, err := c.CreateInvoice(merchant, "widget", money.FromInt64(1000), token, nil)
	h.Deauthorize()
	require.NoError(t, err)

	h.Authorize(payer)
	require.NoError(t, c.PayInvoicePartial(payer, id, money.FromInt64(400)))
	h.Deauthorize()

	inv, err := c.GetInvoice(id)
	require.NoError(t, err)
	assert.Equal(t, shade.StatusPartiallyPaid, inv.Status)

	h.Authorize(payer)
	require.NoError(t, c.PayInvoicePartial(payer, id, money.FromInt64(600)))
	h.Deauthorize()

	inv, err = c.GetInvoice(id)
	require.NoError(t, err)
	assert.Equal(t, shade.StatusPaid, inv.Status)
	assert.Equal(t, int64(1000), inv.AmountPaid.Int64())
}

func TestPayInvoiceRejectsOverpay(t *testing.T) {
	c, h, admin := newInitialized(t)
	merchant, account, token, payer := addr(5), addr(50), addr(10), addr(100)
	registerMerchant(t, c, h, admin, merchant, account, token, 0)
	c.SetCollaborators(&fakeLedger{}, nil)

	h.Authorize(merchant)
	id, err := c.CreateInvoice(merchant, "widget", money.FromInt64(1000), token, nil)
	h.Deauthorize()
	require.NoError(t, err)

	h.Authorize(payer)
	err = c.PayInvoicePartial(payer, id, money.FromInt64(1001))
	h.Deauthorize()
	require.Error(t, err)
	assert.Equal(t, shade.ErrInvalidAmount, shade.CodeOf(err))
}

func TestPayInvoiceRejectsExpired(t *testing.T) {
	c, h, admin := newInitialized(t)
	merchant, account, token, payer := addr(5), addr(50), addr(10), addr(100)
	registerMerchant(t, c, h, admin, merchant, account, token, 0)
	c.SetCollaborators(&fakeLedger{}, nil)

	expiry := h.Clock().Now().Add(time.Hour)
	h.Authorize(merchant)
	id, err := c.CreateInvoice(merchant, "widget", money.FromInt64(1000), token, &expiry)
	h.Deauthorize()
	require.NoError(t, err)

	h.Advance(2 * time.Hour)

	h.Authorize(payer)
	err = c.PayInvoicePartial(payer, id, money.FromInt64(1000))
	h.Deauthorize()
	require.Error(t, err)
	assert.Equal(t, shade.ErrInvoiceExpired, shade.CodeOf(err))
}

func TestPayInvoiceRejectsWrongPayer(t *testing.T) {
	c, h, admin := newInitialized(t)
	merchant, account, token, payer1, payer2 := addr(5), addr(50), addr(10), addr(100), addr(101)
	registerMerchant(t, c, h, admin, merchant, account, token, 0)
	c.SetCollaborators(&fakeLedger{}, nil)

	h.Authorize(merchant)
	id, err := c.CreateInvoice(merchant, "widget", money.FromInt64(1000), token, nil)
	h.Deauthorize()
	require.NoError(t, err)

	h.Authorize(payer1)
	require.NoError(t, c.PayInvoicePartial(payer1, id, money.FromInt64(400)))
	h.Deauthorize()

	h.Authorize(payer2)
	err = c.PayInvoicePartial(payer2, id, money.FromInt64(100))
	h.Deauthorize()
	require.Error(t, err)
	assert.Equal(t, shade.ErrNotAuthorized, shade.CodeOf(err))
}

func TestRefundInvoiceFullAndPartial(t *testing.T) {
	c, h, admin := newInitialized(t)
	merchant, account, token, payer := addr(5), addr(50), addr(10), addr(100)
	registerMerchant(t, c, h, admin, merchant, account, token, 0)
	escrow := &fakeEscrow{}
	c.SetCollaborators(&fakeLedger{}, escrow)

	h.Authorize(merchant)
	id, err := c.CreateInvoice(merchant, "widget", money.FromInt64(1000), token, nil)
	h.Deauthorize()
	require.NoError(t, err)

	h.Authorize(payer)
	require.NoError(t, c.PayInvoice(payer, id))
	h.Deauthorize()

	require.NoError(t, c.RefundInvoicePartial(id, money.FromInt64(300)))
	inv, err := c.GetInvoice(id)
	require.NoError(t, err)
	assert.Equal(t, shade.StatusPartiallyRefunded, inv.Status)

	h.Authorize(merchant)
	require.NoError(t, c.RefundInvoice(merchant, id))
	h.Deauthorize()

	inv, err = c.GetInvoice(id)
	require.NoError(t, err)
	assert.Equal(t, shade.StatusRefunded, inv.Status)
	assert.Equal(t, int64(1000), inv.AmountRefunded.Int64())

	require.Len(t, escrow.refunds, 2)
	assert.Equal(t, payer, escrow.refunds[0].To)
}

func TestRefundInvoiceRejectsAfterWindow(t *testing.T) {
	c, h, admin := newInitialized(t)
	merchant, account, token, payer := addr(5), addr(50), addr(10), addr(100)
	registerMerchant(t, c, h, admin, merchant, account, token, 0)
	c.SetCollaborators(&fakeLedger{}, &fakeEscrow{})

	h.Authorize(merchant)
	id, err := c.CreateInvoice(merchant, "widget", money.FromInt64(1000), token, nil)
	h.Deauthorize()
	require.NoError(t, err)

	h.Authorize(payer)
	require.NoError(t, c.PayInvoice(payer, id))
	h.Deauthorize()

	h.Advance(shade.MaxRefundDuration + time.Second)

	h.Authorize(merchant)
	err = c.RefundInvoice(merchant, id)
	h.Deauthorize()
	require.Error(t, err)
	assert.Equal(t, shade.ErrRefundPeriodExpired, shade.CodeOf(err))
}

func TestVoidInvoiceOnlyWhilePending(t *testing.T) {
	c, h, admin := newInitialized(t)
	merchant, account, token := addr(5), addr(50), addr(10)
	registerMerchant(t, c, h, admin, merchant, account, token, 0)

	h.Authorize(merchant)
	id, err := c.CreateInvoice(merchant, "widget", money.FromInt64(1000), token, nil)
	require.NoError(t, err)
	require.NoError(t, c.VoidInvoice(merchant, id))
	h.Deauthorize()

	inv, err := c.GetInvoice(id)
	require.NoError(t, err)
	assert.Equal(t, shade.StatusCancelled, inv.Status)

	h.Authorize(merchant)
	err = c.VoidInvoice(merchant, id)
	h.Deauthorize()
	require.Error(t, err)
	assert.Equal(t, shade.ErrInvalidInvoiceStatus, shade.CodeOf(err))
}

func TestAmendInvoiceOnlyWhilePending(t *testing.T) {
	c, h, admin := newInitialized(t)
	merchant, account, token := addr(5), addr(50), addr(10)
	registerMerchant(t, c, h, admin, merchant, account, token, 0)

	h.Authorize(merchant)
	id, err := c.CreateInvoice(merchant, "widget", money.FromInt64(1000), token, nil)
	require.NoError(t, err)

	newAmount := money.FromInt64(1500)
	newDesc := "deluxe widget"
	require.NoError(t, c.AmendInvoice(merchant, id, &newAmount, &newDesc))
	h.Deauthorize()

	inv, err := c.GetInvoice(id)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), inv.Amount.Int64())
	assert.Equal(t, "deluxe widget", inv.Description)

	c.SetCollaborators(&fakeLedger{}, nil)
	h.Authorize(addr(100))
	require.NoError(t, c.PayInvoice(addr(100), id))
	h.Deauthorize()

	h.Authorize(merchant)
	err = c.AmendInvoice(merchant, id, &newAmount, nil)
	h.Deauthorize()
	require.Error(t, err)
	assert.Equal(t, shade.ErrInvalidInvoiceStatus, shade.CodeOf(err))
}

func TestGetInvoicesFilter(t *testing.T) {
	c, h, admin := newInitialized(t)
	merchant, account, token := addr(5), addr(50), addr(10)
	merchantID := registerMerchant(t, c, h, admin, merchant, account, token, 0)

	h.Authorize(merchant)
	_, err := c.CreateInvoice(merchant, "a", money.FromInt64(100), token, nil)
	require.NoError(t, err)
	_, err = c.CreateInvoice(merchant, "b", money.FromInt64(200), token, nil)
	require.NoError(t, err)
	h.Deauthorize()

	all, err := c.GetInvoices(shade.InvoiceFilter{MerchantID: merchantID})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
