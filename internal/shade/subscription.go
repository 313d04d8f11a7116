// Subscription engine: recurring pull-payment billing, spec.md §4.7.
// A SubscriptionPlan is merchant-owned and priced; a Subscription binds one
// customer to a plan and tracks when it was last charged. ChargeSubscription
// is the pull side — anyone may call it (an operator sweep, a keeper bot),
// but it only succeeds once IntervalSecs has elapsed since the last charge.
package shade

import (
	"time"

	"github.com/Ogstevyn/shade/internal/host"
	"github.com/Ogstevyn/shade/internal/keylet"
	"github.com/Ogstevyn/shade/internal/money"
)

func (t *txn) nextPlanID() (uint64, error) {
	raw, _, err := t.get(keylet.PlanCount())
	if err != nil {
		return 0, err
	}
	id := decodeU64(raw) + 1
	t.put(keylet.PlanCount(), encodeU64(id))
	return id, nil
}

func (t *txn) nextSubscriptionID() (uint64, error) {
	raw, _, err := t.get(keylet.SubscriptionCount())
	if err != nil {
		return 0, err
	}
	id := decodeU64(raw) + 1
	t.put(keylet.SubscriptionCount(), encodeU64(id))
	return id, nil
}

// GetPlan looks up a subscription plan by id.
func (c *Contract) GetPlan(id uint64) (*SubscriptionPlan, error) {
	raw, ok, err := c.host.Store().Get(keylet.Plan(id))
	if err != nil {
		return nil, wrapErr(ErrInvalidInterval, err)
	}
	if !ok {
		return nil, newErr(ErrInvalidInterval)
	}
	return decodePlan(raw)
}

// CreatePlan registers a new recurring billing plan for merchant.
// IntervalSecs must be positive.
func (c *Contract) CreatePlan(merchant host.Address, description string, amount money.Amount, token host.Address, intervalSecs uint64) (uint64, error) {
	if !c.requireAuth(merchant) {
		return 0, newErr(ErrNotAuthorized)
	}
	if err := c.assertNotPaused(); err != nil {
		return 0, err
	}
	if !amount.IsPositive() {
		return 0, newErr(ErrInvalidAmount)
	}
	if intervalSecs == 0 {
		return 0, newErr(ErrInvalidInterval)
	}
	merchantID, ok, err := c.merchantIDOf(merchant)
	if err != nil {
		return 0, wrapErr(ErrMerchantNotFound, err)
	}
	if !ok {
		return 0, newErr(ErrMerchantNotFound)
	}
	accepted, err := c.IsAcceptedToken(token)
	if err != nil {
		return 0, err
	}
	if !accepted {
		return 0, newErr(ErrTokenNotAccepted)
	}

	t := c.begin()
	id, err := t.nextPlanID()
	if err != nil {
		t.discard()
		return 0, wrapErr(ErrInvalidInterval, err)
	}
	plan := &SubscriptionPlan{
		ID: id, MerchantID: merchantID, MerchantAddress: merchant, Description: description,
		Token: token, Amount: amount, IntervalSecs: intervalSecs, Active: true,
	}
	enc, err := plan.encode()
	if err != nil {
		t.discard()
		return 0, wrapErr(ErrInvalidInterval, err)
	}
	t.put(keylet.Plan(id), enc)
	if err := t.commit(); err != nil {
		return 0, wrapErr(ErrInvalidInterval, err)
	}
	c.emit("SubscriptionPlanCreated", struct {
		PlanID     uint64
		MerchantID uint64
		Amount     money.Amount
		Token      host.Address
	}{id, merchantID, amount, token})
	return id, nil
}

// SetPlanStatus flips a plan's active flag. A deactivated plan can no
// longer accept new subscriptions but existing ones keep charging.
func (c *Contract) SetPlanStatus(merchant host.Address, id uint64, active bool) error {
	if !c.requireAuth(merchant) {
		return newErr(ErrNotAuthorized)
	}
	if err := c.assertNotPaused(); err != nil {
		return err
	}
	t := c.begin()
	raw, ok, err := t.get(keylet.Plan(id))
	if err != nil {
		t.discard()
		return wrapErr(ErrInvalidInterval, err)
	}
	if !ok {
		t.discard()
		return newErr(ErrInvalidInterval)
	}
	plan, err := decodePlan(raw)
	if err != nil {
		t.discard()
		return wrapErr(ErrInvalidInterval, err)
	}
	if plan.MerchantAddress != merchant {
		t.discard()
		return newErr(ErrNotAuthorized)
	}
	plan.Active = active
	enc, err := plan.encode()
	if err != nil {
		t.discard()
		return wrapErr(ErrInvalidInterval, err)
	}
	t.put(keylet.Plan(id), enc)
	if err := t.commit(); err != nil {
		return wrapErr(ErrInvalidInterval, err)
	}
	return nil
}

// GetSubscription looks up a subscription by id.
func (c *Contract) GetSubscription(id uint64) (*Subscription, error) {
	raw, ok, err := c.host.Store().Get(keylet.Subscription(id))
	if err != nil {
		return nil, wrapErr(ErrSubscriptionNotActive, err)
	}
	if !ok {
		return nil, newErr(ErrSubscriptionNotActive)
	}
	return decodeSubscription(raw)
}

// Subscribe enrolls customer in planID. No auth is required from the
// customer at subscribe time; the first charge happens on the first
// ChargeSubscription call, not at enrollment time (spec.md §4.7's
// LastChargedAt sentinel semantics).
func (c *Contract) Subscribe(customer host.Address, planID uint64) (uint64, error) {
	if err := c.assertNotPaused(); err != nil {
		return 0, err
	}
	plan, err := c.GetPlan(planID)
	if err != nil {
		return 0, err
	}
	if !plan.Active {
		return 0, newErr(ErrInvalidInterval)
	}

	t := c.begin()
	id, err := t.nextSubscriptionID()
	if err != nil {
		t.discard()
		return 0, wrapErr(ErrInvalidInterval, err)
	}
	sub := &Subscription{
		ID: id, PlanID: planID, Customer: customer, MerchantID: plan.MerchantID,
		Status: SubActive, CreatedAt: c.host.Clock().Now(),
	}
	enc, err := sub.encode()
	if err != nil {
		t.discard()
		return 0, wrapErr(ErrInvalidInterval, err)
	}
	t.put(keylet.Subscription(id), enc)
	if err := t.commit(); err != nil {
		return 0, wrapErr(ErrInvalidInterval, err)
	}
	c.emit("Subscribed", struct {
		SubscriptionID uint64
		PlanID         uint64
		Customer       host.Address
	}{id, planID, customer})
	return id, nil
}

// ChargeSubscription pulls one billing cycle's payment from customer's
// pre-approved allowance via TokenLedger.TransferFrom, fee-split the same
// way PayInvoicePartial is. The contract itself is the spender of record —
// the customer approves the shade contract, not whoever happens to trigger
// the pull — so no caller address is needed; callable by anyone (an
// off-chain keeper sweeps due subscriptions), the only gate is elapsed
// time since the last charge.
func (c *Contract) ChargeSubscription(id uint64) error {
	if err := c.assertNotPaused(); err != nil {
		return err
	}
	sub, err := c.GetSubscription(id)
	if err != nil {
		return err
	}
	if sub.Status != SubActive {
		return newErr(ErrSubscriptionNotActive)
	}
	plan, err := c.GetPlan(sub.PlanID)
	if err != nil {
		return err
	}
	now := c.host.Clock().Now()
	if !sub.LastChargedAt.IsZero() {
		due := sub.LastChargedAt.Add(time.Duration(plan.IntervalSecs) * time.Second)
		if now.Before(due) {
			return newErr(ErrChargeTooEarly)
		}
	}
	merchantAccount, err := c.GetMerchantAccount(plan.MerchantID)
	if err != nil {
		return err
	}

	feeBp, err := c.GetFee(plan.Token)
	if err != nil {
		return err
	}
	fee := plan.Amount.FeeBasisPoints(feeBp)
	net := plan.Amount.Sub(fee)

	if c.tokens != nil {
		if err := c.tokens.TransferFrom(plan.Token, c.selfAddress, sub.Customer, merchantAccount, net); err != nil {
			return wrapErr(ErrInvalidAmount, err)
		}
		if fee.IsPositive() {
			if err := c.tokens.TransferFrom(plan.Token, c.selfAddress, sub.Customer, c.selfAddress, fee); err != nil {
				return wrapErr(ErrInvalidAmount, err)
			}
		}
	}

	sub.LastChargedAt = now
	t := c.begin()
	enc, err := sub.encode()
	if err != nil {
		t.discard()
		return wrapErr(ErrInvalidAmount, err)
	}
	t.put(keylet.Subscription(id), enc)
	if err := t.commit(); err != nil {
		return wrapErr(ErrInvalidAmount, err)
	}
	c.emit("SubscriptionCharged", struct {
		SubscriptionID  uint64
		PlanID          uint64
		Customer        host.Address
		MerchantID      uint64
		MerchantAccount host.Address
		Amount          money.Amount
		Fee             money.Amount
		Token           host.Address
		Timestamp       time.Time
	}{id, sub.PlanID, sub.Customer, plan.MerchantID, merchantAccount, plan.Amount, fee, plan.Token, now})
	return nil
}

// CancelSubscription ends a subscription. Either the customer or the
// owning merchant may cancel.
func (c *Contract) CancelSubscription(caller host.Address, id uint64) error {
	if !c.requireAuth(caller) {
		return newErr(ErrNotAuthorized)
	}
	if err := c.assertNotPaused(); err != nil {
		return err
	}
	sub, err := c.GetSubscription(id)
	if err != nil {
		return err
	}
	if sub.Status != SubActive {
		return newErr(ErrSubscriptionNotActive)
	}
	if caller != sub.Customer {
		merchantObj, err := c.GetMerchant(sub.MerchantID)
		if err != nil {
			return err
		}
		if merchantObj.Address != caller {
			return newErr(ErrNotAuthorized)
		}
	}
	sub.Status = SubCancelled

	t := c.begin()
	enc, err := sub.encode()
	if err != nil {
		t.discard()
		return wrapErr(ErrSubscriptionNotActive, err)
	}
	t.put(keylet.Subscription(id), enc)
	if err := t.commit(); err != nil {
		return wrapErr(ErrSubscriptionNotActive, err)
	}
	c.emit("SubscriptionCancelled", struct{ SubscriptionID uint64 }{id})
	return nil
}

// DueSubscriptions scans ids 1..=count for Active subscriptions whose
// interval has elapsed, the same bounded linear scan GetInvoices and
// GetMerchants use. internal/sweep calls this to build its worklist;
// internal/indexer's read-model has no subscription tables, so this scan
// is the only source of the due set.
func (c *Contract) DueSubscriptions(now time.Time) ([]*Subscription, error) {
	countRaw, _, err := c.host.Store().Get(keylet.SubscriptionCount())
	if err != nil {
		return nil, wrapErr(ErrSubscriptionNotActive, err)
	}
	count := decodeU64(countRaw)
	out := make([]*Subscription, 0, count)
	for id := uint64(1); id <= count; id++ {
		sub, err := c.GetSubscription(id)
		if err != nil {
			return nil, err
		}
		if sub.Status != SubActive {
			continue
		}
		plan, err := c.GetPlan(sub.PlanID)
		if err != nil {
			return nil, err
		}
		if !sub.LastChargedAt.IsZero() && now.Before(sub.LastChargedAt.Add(time.Duration(plan.IntervalSecs)*time.Second)) {
			continue
		}
		out = append(out, sub)
	}
	return out, nil
}
