package shade

// Storage codec: every entity is flattened into a plain "wire" struct of
// primitive fields before being handed to ugorji/go/codec's msgpack
// handle, the same way goXRPLd's apply_check.go hand-writes
// serializeCheck/parseCheck rather than reflecting over the live
// in-memory struct. msgpack (not JSON) is used because it round-trips
// fixed-size byte arrays and arbitrary-precision decimal text compactly
// and deterministically.

import (
	"time"

	"github.com/ugorji/go/codec"

	"github.com/Ogstevyn/shade/internal/host"
	"github.com/Ogstevyn/shade/internal/money"
)

var mh codec.MsgpackHandle

func marshal(v any) ([]byte, error) {
	var buf []byte
	enc := codec.NewEncoderBytes(&buf, &mh)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf, nil
}

func unmarshal(data []byte, v any) error {
	dec := codec.NewDecoderBytes(data, &mh)
	return dec.Decode(v)
}

func unixOf(t *time.Time) (has bool, sec int64) {
	if t == nil {
		return false, 0
	}
	return true, t.UTC().Unix()
}

func timeOf(has bool, sec int64) *time.Time {
	if !has {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

// --- ContractInfo ---

type contractInfoWire struct {
	Admin         [32]byte
	InitializedAt int64
}

func (c *ContractInfo) encode() ([]byte, error) {
	return marshal(contractInfoWire{Admin: c.Admin, InitializedAt: c.InitializedAt.UTC().Unix()})
}

func decodeContractInfo(data []byte) (*ContractInfo, error) {
	var w contractInfoWire
	if err := unmarshal(data, &w); err != nil {
		return nil, err
	}
	return &ContractInfo{Admin: host.Address(w.Admin), InitializedAt: time.Unix(w.InitializedAt, 0).UTC()}, nil
}

// --- Merchant ---

type merchantWire struct {
	ID           uint64
	Address      [32]byte
	Active       bool
	Verified     bool
	RegisteredAt int64
}

func (m *Merchant) encode() ([]byte, error) {
	return marshal(merchantWire{
		ID: m.ID, Address: m.Address, Active: m.Active, Verified: m.Verified,
		RegisteredAt: m.RegisteredAt.UTC().Unix(),
	})
}

func decodeMerchant(data []byte) (*Merchant, error) {
	var w merchantWire
	if err := unmarshal(data, &w); err != nil {
		return nil, err
	}
	return &Merchant{
		ID: w.ID, Address: host.Address(w.Address), Active: w.Active, Verified: w.Verified,
		RegisteredAt: time.Unix(w.RegisteredAt, 0).UTC(),
	}, nil
}

// --- Invoice ---

type invoiceWire struct {
	ID             uint64
	Description    string
	Amount         []byte
	Token          [32]byte
	Status         uint8
	MerchantID     uint64
	HasPayer       bool
	Payer          [32]byte
	CreatedAt      int64
	HasPaidAt      bool
	PaidAt         int64
	AmountPaid     []byte
	AmountRefunded []byte
	HasExpiresAt   bool
	ExpiresAt      int64
}

func (inv *Invoice) encode() ([]byte, error) {
	amt, err := inv.Amount.MarshalBinary()
	if err != nil {
		return nil, err
	}
	paid, err := inv.AmountPaid.MarshalBinary()
	if err != nil {
		return nil, err
	}
	refunded, err := inv.AmountRefunded.MarshalBinary()
	if err != nil {
		return nil, err
	}
	w := invoiceWire{
		ID: inv.ID, Description: inv.Description, Amount: amt, Token: inv.Token,
		Status: uint8(inv.Status), MerchantID: inv.MerchantID,
		CreatedAt: inv.CreatedAt.UTC().Unix(), AmountPaid: paid, AmountRefunded: refunded,
	}
	if inv.Payer != nil {
		w.HasPayer = true
		w.Payer = *inv.Payer
	}
	if has, sec := unixOf(inv.PaidAt); has {
		w.HasPaidAt = true
		w.PaidAt = sec
	}
	if has, sec := unixOf(inv.ExpiresAt); has {
		w.HasExpiresAt = true
		w.ExpiresAt = sec
	}
	return marshal(w)
}

func decodeInvoice(data []byte) (*Invoice, error) {
	var w invoiceWire
	if err := unmarshal(data, &w); err != nil {
		return nil, err
	}
	var amt, paid, refunded money.Amount
	if err := amt.UnmarshalBinary(w.Amount); err != nil {
		return nil, err
	}
	if err := paid.UnmarshalBinary(w.AmountPaid); err != nil {
		return nil, err
	}
	if err := refunded.UnmarshalBinary(w.AmountRefunded); err != nil {
		return nil, err
	}
	inv := &Invoice{
		ID: w.ID, Description: w.Description, Amount: amt, Token: host.Address(w.Token),
		Status: InvoiceStatus(w.Status), MerchantID: w.MerchantID,
		CreatedAt: time.Unix(w.CreatedAt, 0).UTC(), AmountPaid: paid, AmountRefunded: refunded,
	}
	if w.HasPayer {
		p := host.Address(w.Payer)
		inv.Payer = &p
	}
	inv.PaidAt = timeOf(w.HasPaidAt, w.PaidAt)
	inv.ExpiresAt = timeOf(w.HasExpiresAt, w.ExpiresAt)
	return inv, nil
}

// --- SubscriptionPlan ---

type planWire struct {
	ID              uint64
	MerchantID      uint64
	MerchantAddress [32]byte
	Description     string
	Token           [32]byte
	Amount          []byte
	IntervalSecs    uint64
	Active          bool
}

func (p *SubscriptionPlan) encode() ([]byte, error) {
	amt, err := p.Amount.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return marshal(planWire{
		ID: p.ID, MerchantID: p.MerchantID, MerchantAddress: p.MerchantAddress,
		Description: p.Description, Token: p.Token, Amount: amt,
		IntervalSecs: p.IntervalSecs, Active: p.Active,
	})
}

func decodePlan(data []byte) (*SubscriptionPlan, error) {
	var w planWire
	if err := unmarshal(data, &w); err != nil {
		return nil, err
	}
	var amt money.Amount
	if err := amt.UnmarshalBinary(w.Amount); err != nil {
		return nil, err
	}
	return &SubscriptionPlan{
		ID: w.ID, MerchantID: w.MerchantID, MerchantAddress: host.Address(w.MerchantAddress),
		Description: w.Description, Token: host.Address(w.Token), Amount: amt,
		IntervalSecs: w.IntervalSecs, Active: w.Active,
	}, nil
}

// --- Subscription ---

type subscriptionWire struct {
	ID            uint64
	PlanID        uint64
	Customer      [32]byte
	MerchantID    uint64
	Status        uint8
	CreatedAt     int64
	LastChargedAt int64
}

func (s *Subscription) encode() ([]byte, error) {
	var last int64
	if !s.LastChargedAt.IsZero() {
		last = s.LastChargedAt.UTC().Unix()
	}
	return marshal(subscriptionWire{
		ID: s.ID, PlanID: s.PlanID, Customer: s.Customer, MerchantID: s.MerchantID,
		Status: uint8(s.Status), CreatedAt: s.CreatedAt.UTC().Unix(), LastChargedAt: last,
	})
}

func decodeSubscription(data []byte) (*Subscription, error) {
	var w subscriptionWire
	if err := unmarshal(data, &w); err != nil {
		return nil, err
	}
	s := &Subscription{
		ID: w.ID, PlanID: w.PlanID, Customer: host.Address(w.Customer), MerchantID: w.MerchantID,
		Status: SubscriptionStatus(w.Status), CreatedAt: time.Unix(w.CreatedAt, 0).UTC(),
	}
	if w.LastChargedAt != 0 {
		s.LastChargedAt = time.Unix(w.LastChargedAt, 0).UTC()
	}
	return s, nil
}

// --- scalar helpers for counters / simple flags ---

func encodeU64(n uint64) []byte { b, _ := marshal(n); return b }

func decodeU64(data []byte) uint64 {
	if data == nil {
		return 0
	}
	var n uint64
	_ = unmarshal(data, &n)
	return n
}

func encodeBool(b bool) []byte { v, _ := marshal(b); return v }

func decodeBool(data []byte) bool {
	if data == nil {
		return false
	}
	var b bool
	_ = unmarshal(data, &b)
	return b
}

func encodeAddress(a host.Address) []byte { b, _ := marshal([32]byte(a)); return b }

func decodeAddress(data []byte) host.Address {
	var raw [32]byte
	_ = unmarshal(data, &raw)
	return host.Address(raw)
}

func encodeInt64(n int64) []byte { b, _ := marshal(n); return b }

func decodeInt64(data []byte) int64 {
	if data == nil {
		return 0
	}
	var n int64
	_ = unmarshal(data, &n)
	return n
}
