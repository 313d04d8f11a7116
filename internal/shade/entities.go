package shade

import (
	"time"

	"github.com/Ogstevyn/shade/internal/host"
	"github.com/Ogstevyn/shade/internal/money"
)

// Role is a stable numeric role encoding (spec.md §9: "tagged variants must
// have stable numeric encodings"). Admin is never stored explicitly — it is
// implicit for the contract's stored admin address.
type Role uint8

const (
	RoleAdmin Role = iota
	RoleManager
	RoleOperator
)

// InvoiceStatus is the Invoice FSM's stable numeric encoding, matching
// spec.md §3 exactly.
type InvoiceStatus uint8

const (
	StatusPending InvoiceStatus = iota
	StatusPaid
	StatusCancelled
	StatusRefunded
	StatusPartiallyRefunded
	StatusPartiallyPaid
)

// SubscriptionStatus is the subscription FSM's numeric encoding.
type SubscriptionStatus uint8

const (
	SubActive SubscriptionStatus = iota
	SubCancelled
)

// ContractInfo is the singleton record created by Initialize.
type ContractInfo struct {
	Admin         host.Address
	InitializedAt time.Time
}

// Merchant is a registered merchant account.
type Merchant struct {
	ID           uint64
	Address      host.Address
	Active       bool
	Verified     bool
	RegisteredAt time.Time
}

// Invoice is the core payable/refundable document.
type Invoice struct {
	ID              uint64
	Description     string
	Amount          money.Amount
	Token           host.Address
	Status          InvoiceStatus
	MerchantID      uint64
	Payer           *host.Address
	CreatedAt       time.Time
	PaidAt          *time.Time
	AmountPaid      money.Amount
	AmountRefunded  money.Amount
	ExpiresAt       *time.Time
}

// SubscriptionPlan is a merchant-defined recurring billing plan.
type SubscriptionPlan struct {
	ID              uint64
	MerchantID      uint64
	MerchantAddress host.Address
	Description     string
	Token           host.Address
	Amount          money.Amount
	IntervalSecs    uint64
	Active          bool
}

// Subscription is a customer's enrollment in a plan.
type Subscription struct {
	ID            uint64
	PlanID        uint64
	Customer      host.Address
	MerchantID    uint64
	Status        SubscriptionStatus
	CreatedAt     time.Time
	LastChargedAt time.Time // zero value is the "never charged" sentinel
}
