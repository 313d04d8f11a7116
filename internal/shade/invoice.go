// Invoice engine: spec.md §4.6. Implements the FSM
//
//	Pending --pay_full--> Paid
//	Pending --pay_partial--> PartiallyPaid --(amount_paid==amount)--> Paid
//	Pending --void--> Cancelled (terminal)
//	Paid/PartiallyRefunded --refund_partial--> PartiallyRefunded
//	Paid/PartiallyRefunded --refund_full--> Refunded (terminal)
//
// with every other transition failing InvalidInvoiceStatus.
package shade

import (
	"time"

	"github.com/Ogstevyn/shade/internal/host"
	"github.com/Ogstevyn/shade/internal/keylet"
	"github.com/Ogstevyn/shade/internal/money"
)

// MaxRefundDuration is spec.md §6's MAX_REFUND_DURATION_SECS (7 days).
const MaxRefundDuration = 604_800 * time.Second

func (t *txn) getInvoice(id uint64) (*Invoice, error) {
	raw, ok, err := t.get(keylet.Invoice(id))
	if err != nil {
		return nil, wrapErr(ErrInvoiceNotFound, err)
	}
	if !ok {
		return nil, newErr(ErrInvoiceNotFound)
	}
	return decodeInvoice(raw)
}

func (t *txn) putInvoice(inv *Invoice) error {
	enc, err := inv.encode()
	if err != nil {
		return err
	}
	t.put(keylet.Invoice(inv.ID), enc)
	return nil
}

// GetInvoice looks up an invoice by id.
func (c *Contract) GetInvoice(id uint64) (*Invoice, error) {
	raw, ok, err := c.host.Store().Get(keylet.Invoice(id))
	if err != nil {
		return nil, wrapErr(ErrInvoiceNotFound, err)
	}
	if !ok {
		return nil, newErr(ErrInvoiceNotFound)
	}
	return decodeInvoice(raw)
}

// InvoiceFilter narrows GetInvoices results.
type InvoiceFilter struct {
	MerchantID uint64 // 0 means "any merchant"
	Status     *InvoiceStatus
}

// GetInvoices scans ids 1..=count — see spec.md §9's note that this is a
// bounded convenience method, not the fast path for large deployments.
func (c *Contract) GetInvoices(filter InvoiceFilter) ([]*Invoice, error) {
	countRaw, _, err := c.host.Store().Get(keylet.InvoiceCount())
	if err != nil {
		return nil, wrapErr(ErrInvoiceNotFound, err)
	}
	count := decodeU64(countRaw)
	out := make([]*Invoice, 0, count)
	for id := uint64(1); id <= count; id++ {
		inv, err := c.GetInvoice(id)
		if err != nil {
			return nil, err
		}
		if filter.MerchantID != 0 && inv.MerchantID != filter.MerchantID {
			continue
		}
		if filter.Status != nil && inv.Status != *filter.Status {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

func (t *txn) nextInvoiceID() (uint64, error) {
	raw, _, err := t.get(keylet.InvoiceCount())
	if err != nil {
		return 0, err
	}
	id := decodeU64(raw) + 1
	t.put(keylet.InvoiceCount(), encodeU64(id))
	return id, nil
}

// CreateInvoice is the unsigned creation path: the merchant itself
// authorizes the call. spec.md §4.6.
func (c *Contract) CreateInvoice(merchant host.Address, description string, amount money.Amount, token host.Address, expiresAt *time.Time) (uint64, error) {
	if !c.requireAuth(merchant) {
		return 0, newErr(ErrNotAuthorized)
	}
	if err := c.assertNotPaused(); err != nil {
		return 0, err
	}
	if !amount.IsPositive() {
		return 0, newErr(ErrInvalidAmount)
	}
	merchantID, ok, err := c.merchantIDOf(merchant)
	if err != nil {
		return 0, wrapErr(ErrNotAuthorized, err)
	}
	if !ok {
		return 0, newErr(ErrNotAuthorized)
	}
	return c.persistInvoice(merchantID, description, amount, token, expiresAt)
}

// CreateInvoiceSigned is the off-chain-signed creation path: an
// Admin/Manager creates an invoice on a merchant's behalf, authorized by
// the merchant's Ed25519 signature over the canonical message. Precondition
// order matches spec.md §4.6 exactly: authorize caller -> validate amount
// -> check merchant -> verify signature -> invalidate nonce -> persist.
func (c *Contract) CreateInvoiceSigned(caller, merchant host.Address, description string, amount money.Amount, token host.Address, nonce [32]byte, signature [64]byte) (uint64, error) {
	if !c.requireAuth(caller) {
		return 0, newErr(ErrNotAuthorized)
	}
	isAdmin, err := c.HasRole(caller, RoleAdmin)
	if err != nil {
		return 0, err
	}
	isManager, err := c.HasRole(caller, RoleManager)
	if err != nil {
		return 0, err
	}
	if !isAdmin && !isManager {
		return 0, newErr(ErrNotAuthorized)
	}
	if err := c.assertNotPaused(); err != nil {
		return 0, err
	}
	if !amount.IsPositive() {
		return 0, newErr(ErrInvalidAmount)
	}
	merchantID, ok, err := c.merchantIDOf(merchant)
	if err != nil {
		return 0, wrapErr(ErrMerchantNotFound, err)
	}
	if !ok {
		return 0, newErr(ErrMerchantNotFound)
	}
	if err := c.verifyInvoiceSignature(merchant, nonce, amount, token, description, signature); err != nil {
		return 0, err
	}

	t := c.begin()
	if err := t.invalidateNonce(merchant, nonce); err != nil {
		t.discard()
		return 0, err
	}
	id, err := t.nextInvoiceID()
	if err != nil {
		t.discard()
		return 0, wrapErr(ErrInvalidAmount, err)
	}
	inv := &Invoice{
		ID: id, Description: description, Amount: amount, Token: token,
		Status: StatusPending, MerchantID: merchantID, CreatedAt: c.host.Clock().Now(),
		AmountPaid: money.Zero(), AmountRefunded: money.Zero(),
	}
	if err := t.putInvoice(inv); err != nil {
		t.discard()
		return 0, wrapErr(ErrInvalidAmount, err)
	}
	if err := t.commit(); err != nil {
		return 0, wrapErr(ErrInvalidAmount, err)
	}
	c.emit("InvoiceCreated", struct {
		InvoiceID uint64
		Merchant  host.Address
		Amount    money.Amount
		Token     host.Address
	}{id, merchant, amount, token})
	c.emit("NonceInvalidated", struct {
		Merchant host.Address
		Nonce    [32]byte
	}{merchant, nonce})
	return id, nil
}

func (c *Contract) persistInvoice(merchantID uint64, description string, amount money.Amount, token host.Address, expiresAt *time.Time) (uint64, error) {
	t := c.begin()
	id, err := t.nextInvoiceID()
	if err != nil {
		t.discard()
		return 0, wrapErr(ErrInvalidAmount, err)
	}
	inv := &Invoice{
		ID: id, Description: description, Amount: amount, Token: token,
		Status: StatusPending, MerchantID: merchantID, CreatedAt: c.host.Clock().Now(),
		AmountPaid: money.Zero(), AmountRefunded: money.Zero(), ExpiresAt: expiresAt,
	}
	if err := t.putInvoice(inv); err != nil {
		t.discard()
		return 0, wrapErr(ErrInvalidAmount, err)
	}
	if err := t.commit(); err != nil {
		return 0, wrapErr(ErrInvalidAmount, err)
	}
	merchant, _ := c.GetMerchant(merchantID)
	var merchantAddr host.Address
	if merchant != nil {
		merchantAddr = merchant.Address
	}
	c.emit("InvoiceCreated", struct {
		InvoiceID uint64
		Merchant  host.Address
		Amount    money.Amount
		Token     host.Address
	}{id, merchantAddr, amount, token})
	return id, nil
}

// PayInvoice pays off the remaining balance in a single call.
func (c *Contract) PayInvoice(payer host.Address, id uint64) error {
	inv, err := c.GetInvoice(id)
	if err != nil {
		return err
	}
	remaining := inv.Amount.Sub(inv.AmountPaid)
	return c.PayInvoicePartial(payer, id, remaining)
}

// PayInvoicePartial is the only place amount_paid is incremented; it is
// not idempotent, each call transfers and records. spec.md §4.6.
func (c *Contract) PayInvoicePartial(payer host.Address, id uint64, amount money.Amount) error {
	if !c.requireAuth(payer) {
		return newErr(ErrNotAuthorized)
	}
	if err := c.assertNotPaused(); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return newErr(ErrInvalidAmount)
	}
	inv, err := c.GetInvoice(id)
	if err != nil {
		return err
	}
	if inv.Status != StatusPending && inv.Status != StatusPartiallyPaid {
		return newErr(ErrInvalidInvoiceStatus)
	}
	now := c.host.Clock().Now()
	if inv.ExpiresAt != nil && !now.Before(*inv.ExpiresAt) {
		return newErr(ErrInvoiceExpired)
	}
	if inv.AmountPaid.Add(amount).GreaterThan(inv.Amount) {
		return newErr(ErrInvalidAmount)
	}
	accepted, err := c.IsAcceptedToken(inv.Token)
	if err != nil {
		return err
	}
	if !accepted {
		return newErr(ErrTokenNotAccepted)
	}
	merchantAccount, err := c.GetMerchantAccount(inv.MerchantID)
	if err != nil {
		return err
	}
	if inv.Payer != nil && *inv.Payer != payer {
		return newErr(ErrNotAuthorized)
	}

	feeBp, err := c.GetFee(inv.Token)
	if err != nil {
		return err
	}
	fee := amount.FeeBasisPoints(feeBp)
	net := amount.Sub(fee)

	if c.tokens != nil {
		if err := c.tokens.Transfer(inv.Token, payer, merchantAccount, net); err != nil {
			return wrapErr(ErrInvalidAmount, err)
		}
		if fee.IsPositive() {
			if err := c.tokens.Transfer(inv.Token, payer, c.selfAddress, fee); err != nil {
				return wrapErr(ErrInvalidAmount, err)
			}
		}
	}

	inv.AmountPaid = inv.AmountPaid.Add(amount)
	if inv.Payer == nil {
		p := payer
		inv.Payer = &p
	}
	full := inv.AmountPaid.Cmp(inv.Amount) == 0
	if full {
		inv.Status = StatusPaid
		paidAt := now
		inv.PaidAt = &paidAt
	} else {
		inv.Status = StatusPartiallyPaid
	}

	t := c.begin()
	if err := t.putInvoice(inv); err != nil {
		t.discard()
		return wrapErr(ErrInvalidAmount, err)
	}
	if err := t.commit(); err != nil {
		return wrapErr(ErrInvalidAmount, err)
	}
	c.emit("InvoicePaid", struct {
		InvoiceID       uint64
		MerchantID      uint64
		MerchantAccount host.Address
		Payer           host.Address
		Amount          money.Amount
		Fee             money.Amount
		Token           host.Address
		Timestamp       time.Time
	}{id, inv.MerchantID, merchantAccount, payer, amount, fee, inv.Token, now})
	return nil
}

// RefundInvoice refunds the entire remaining paid balance.
func (c *Contract) RefundInvoice(merchant host.Address, id uint64) error {
	inv, err := c.GetInvoice(id)
	if err != nil {
		return err
	}
	remaining := inv.AmountPaid.Sub(inv.AmountRefunded)
	return c.refund(merchant, id, remaining, true)
}

// RefundInvoicePartial refunds amount of a previously paid invoice. Unlike
// the full refund, the caller need not be the merchant per spec.md §4.6
// (only full refund enforces merchant ownership by host auth).
func (c *Contract) RefundInvoicePartial(id uint64, amount money.Amount) error {
	return c.refund(host.Address{}, id, amount, false)
}

func (c *Contract) refund(merchant host.Address, id uint64, amount money.Amount, checkMerchantAuth bool) error {
	if err := c.assertNotPaused(); err != nil {
		return err
	}
	inv, err := c.GetInvoice(id)
	if err != nil {
		return err
	}
	if checkMerchantAuth {
		if !c.requireAuth(merchant) {
			return newErr(ErrNotAuthorized)
		}
		merchantObj, err := c.GetMerchant(inv.MerchantID)
		if err != nil {
			return err
		}
		if merchantObj.Address != merchant {
			return newErr(ErrNotAuthorized)
		}
	}
	if inv.Status != StatusPaid && inv.Status != StatusPartiallyRefunded {
		return newErr(ErrInvalidInvoiceStatus)
	}
	if inv.PaidAt != nil {
		now := c.host.Clock().Now()
		if now.Sub(*inv.PaidAt) > MaxRefundDuration {
			return newErr(ErrRefundPeriodExpired)
		}
	}
	if !amount.IsPositive() {
		return newErr(ErrInvalidAmount)
	}
	if inv.AmountRefunded.Add(amount).GreaterThan(inv.Amount) {
		return newErr(ErrInvalidAmount)
	}
	if inv.Payer == nil {
		return newErr(ErrInvalidInvoiceStatus)
	}

	merchantAccount, err := c.GetMerchantAccount(inv.MerchantID)
	if err != nil {
		return err
	}

	inv.AmountRefunded = inv.AmountRefunded.Add(amount)
	full := inv.AmountRefunded.Cmp(inv.Amount) == 0
	if full {
		inv.Status = StatusRefunded
	} else {
		inv.Status = StatusPartiallyRefunded
	}

	t := c.begin()
	if err := t.putInvoice(inv); err != nil {
		t.discard()
		return wrapErr(ErrInvalidAmount, err)
	}

	// Record-then-invoke-escrow ordering (spec.md §5): the updated
	// amount_refunded is written into the batch before the escrow call,
	// and the batch commits only once that call returns, so a failing
	// escrow refund discards the refund counter update with it.
	if c.escrow != nil {
		if err := c.escrow.Refund(merchantAccount, inv.Token, amount, *inv.Payer); err != nil {
			t.discard()
			return wrapErr(ErrInvalidAmount, err)
		}
	}
	if err := t.commit(); err != nil {
		return wrapErr(ErrInvalidAmount, err)
	}

	topic := "InvoicePartiallyRefunded"
	if full {
		topic = "InvoiceRefunded"
	}
	c.emit(topic, struct {
		InvoiceID uint64
		Amount    money.Amount
		Payer     host.Address
	}{id, amount, *inv.Payer})
	return nil
}

// VoidInvoice cancels a Pending invoice. Merchant-owned; terminal.
func (c *Contract) VoidInvoice(merchant host.Address, id uint64) error {
	if !c.requireAuth(merchant) {
		return newErr(ErrNotAuthorized)
	}
	if err := c.assertNotPaused(); err != nil {
		return err
	}
	inv, err := c.GetInvoice(id)
	if err != nil {
		return err
	}
	merchantObj, err := c.GetMerchant(inv.MerchantID)
	if err != nil {
		return err
	}
	if merchantObj.Address != merchant {
		return newErr(ErrNotAuthorized)
	}
	if inv.Status != StatusPending {
		return newErr(ErrInvalidInvoiceStatus)
	}
	inv.Status = StatusCancelled

	t := c.begin()
	if err := t.putInvoice(inv); err != nil {
		t.discard()
		return wrapErr(ErrInvalidInvoiceStatus, err)
	}
	if err := t.commit(); err != nil {
		return wrapErr(ErrInvalidInvoiceStatus, err)
	}
	c.emit("InvoiceCancelled", struct{ InvoiceID uint64 }{id})
	return nil
}

// AmendInvoice updates a Pending invoice's amount and/or description.
func (c *Contract) AmendInvoice(merchant host.Address, id uint64, newAmount *money.Amount, newDescription *string) error {
	if !c.requireAuth(merchant) {
		return newErr(ErrNotAuthorized)
	}
	if err := c.assertNotPaused(); err != nil {
		return err
	}
	inv, err := c.GetInvoice(id)
	if err != nil {
		return err
	}
	merchantObj, err := c.GetMerchant(inv.MerchantID)
	if err != nil {
		return err
	}
	if merchantObj.Address != merchant {
		return newErr(ErrNotAuthorized)
	}
	if inv.Status != StatusPending {
		return newErr(ErrInvalidInvoiceStatus)
	}
	oldAmount := inv.Amount
	if newAmount != nil {
		if !newAmount.IsPositive() {
			return newErr(ErrInvalidAmount)
		}
		inv.Amount = *newAmount
	}
	if newDescription != nil {
		inv.Description = *newDescription
	}

	t := c.begin()
	if err := t.putInvoice(inv); err != nil {
		t.discard()
		return wrapErr(ErrInvalidAmount, err)
	}
	if err := t.commit(); err != nil {
		return wrapErr(ErrInvalidAmount, err)
	}
	c.emit("InvoiceAmended", struct {
		InvoiceID uint64
		OldAmount money.Amount
		NewAmount money.Amount
	}{id, oldAmount, inv.Amount})
	return nil
}
