package grpc

import "github.com/Ogstevyn/shade/internal/host"

// GetInvoiceRequest/Response expose Contract.GetInvoice.
type GetInvoiceRequest struct {
	InvoiceID uint64
}

type GetInvoiceResponse struct {
	ID             uint64
	Description    string
	Amount         string
	Token          host.Address
	Status         uint8
	MerchantID     uint64
	Payer          host.Address
	HasPayer       bool
	AmountPaid     string
	AmountRefunded string
}

// GetMerchantRequest/Response expose Contract.GetMerchant.
type GetMerchantRequest struct {
	MerchantID uint64
}

type GetMerchantResponse struct {
	ID       uint64
	Address  host.Address
	Active   bool
	Verified bool
}

// GetPlanRequest/Response expose Contract.GetPlan.
type GetPlanRequest struct {
	PlanID uint64
}

type GetPlanResponse struct {
	ID           uint64
	MerchantID   uint64
	Description  string
	Token        host.Address
	Amount       string
	IntervalSecs uint64
	Active       bool
}

// ChargeSubscriptionRequest/Response expose Contract.ChargeSubscription.
// Caller is the identity the gRPC layer authorizes for the duration of
// this one call; ChargeSubscription itself takes no caller argument (the
// contract is always the spender of record) and performs no auth check,
// so Caller only records which identity the transport authorized.
type ChargeSubscriptionRequest struct {
	SubscriptionID uint64
	Caller         host.Address
}

type ChargeSubscriptionResponse struct{}

// SweepSubscriptionsRequest/Response drive internal/sweep.Run.
type SweepSubscriptionsRequest struct {
	Caller      host.Address
	Concurrency int32
}

type SweepSubscriptionsResponse struct {
	Charged []uint64
	Failed  []uint64
}
