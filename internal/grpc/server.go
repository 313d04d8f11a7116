package grpc

import (
	"context"
	"fmt"

	grpclib "google.golang.org/grpc"

	"github.com/Ogstevyn/shade/internal/host/production"
	"github.com/Ogstevyn/shade/internal/shade"
	"github.com/Ogstevyn/shade/internal/sweep"
)

// Server implements the admin/query surface over a single *shade.Contract.
// Writes (ChargeSubscription, SweepSubscriptions) authorize their caller
// against prodHost for the duration of the call via
// production.WithAuthorized; reads need no authorization.
type Server struct {
	contract *shade.Contract
	prodHost *production.Host
}

// NewServer builds a Server over contract, using prodHost to authorize
// operator-triggered writes.
func NewServer(contract *shade.Contract, prodHost *production.Host) *Server {
	return &Server{contract: contract, prodHost: prodHost}
}

func (s *Server) GetInvoice(ctx context.Context, req *GetInvoiceRequest) (*GetInvoiceResponse, error) {
	inv, err := s.contract.GetInvoice(req.InvoiceID)
	if err != nil {
		return nil, err
	}
	resp := &GetInvoiceResponse{
		ID:             inv.ID,
		Description:    inv.Description,
		Amount:         inv.Amount.String(),
		Token:          inv.Token,
		Status:         uint8(inv.Status),
		MerchantID:     inv.MerchantID,
		AmountPaid:     inv.AmountPaid.String(),
		AmountRefunded: inv.AmountRefunded.String(),
	}
	if inv.Payer != nil {
		resp.Payer = *inv.Payer
		resp.HasPayer = true
	}
	return resp, nil
}

func (s *Server) GetMerchant(ctx context.Context, req *GetMerchantRequest) (*GetMerchantResponse, error) {
	m, err := s.contract.GetMerchant(req.MerchantID)
	if err != nil {
		return nil, err
	}
	return &GetMerchantResponse{ID: m.ID, Address: m.Address, Active: m.Active, Verified: m.Verified}, nil
}

func (s *Server) GetPlan(ctx context.Context, req *GetPlanRequest) (*GetPlanResponse, error) {
	p, err := s.contract.GetPlan(req.PlanID)
	if err != nil {
		return nil, err
	}
	return &GetPlanResponse{
		ID:           p.ID,
		MerchantID:   p.MerchantID,
		Description:  p.Description,
		Token:        p.Token,
		Amount:       p.Amount.String(),
		IntervalSecs: p.IntervalSecs,
		Active:       p.Active,
	}, nil
}

func (s *Server) ChargeSubscription(ctx context.Context, req *ChargeSubscriptionRequest) (*ChargeSubscriptionResponse, error) {
	err := production.WithAuthorized(s.prodHost, req.Caller, func() error {
		return s.contract.ChargeSubscription(req.SubscriptionID)
	})
	if err != nil {
		return nil, err
	}
	return &ChargeSubscriptionResponse{}, nil
}

func (s *Server) SweepSubscriptions(ctx context.Context, req *SweepSubscriptionsRequest) (*SweepSubscriptionsResponse, error) {
	concurrency := int(req.Concurrency)
	var results []sweep.Result
	err := production.WithAuthorized(s.prodHost, req.Caller, func() error {
		var runErr error
		results, runErr = sweep.Run(ctx, s.contract, s.prodHost.Clock().Now(), concurrency)
		return runErr
	})
	if err != nil {
		return nil, err
	}
	resp := &SweepSubscriptionsResponse{}
	for _, r := range results {
		if r.Err != nil {
			resp.Failed = append(resp.Failed, r.SubscriptionID)
		} else {
			resp.Charged = append(resp.Charged, r.SubscriptionID)
		}
	}
	return resp, nil
}

const (
	serviceName = "shade.Admin"

	methodGetInvoice          = "GetInvoice"
	methodGetMerchant         = "GetMerchant"
	methodGetPlan             = "GetPlan"
	methodChargeSubscription  = "ChargeSubscription"
	methodSweepSubscriptions  = "SweepSubscriptions"
)

func fullMethodName(method string) string { return fmt.Sprintf("/%s/%s", serviceName, method) }

func _Admin_GetInvoice_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	in := new(GetInvoiceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*Server).GetInvoice(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: fullMethodName(methodGetInvoice)}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*Server).GetInvoice(ctx, req.(*GetInvoiceRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Admin_GetMerchant_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	in := new(GetMerchantRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*Server).GetMerchant(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: fullMethodName(methodGetMerchant)}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*Server).GetMerchant(ctx, req.(*GetMerchantRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Admin_GetPlan_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	in := new(GetPlanRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*Server).GetPlan(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: fullMethodName(methodGetPlan)}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*Server).GetPlan(ctx, req.(*GetPlanRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Admin_ChargeSubscription_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	in := new(ChargeSubscriptionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*Server).ChargeSubscription(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: fullMethodName(methodChargeSubscription)}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*Server).ChargeSubscription(ctx, req.(*ChargeSubscriptionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Admin_SweepSubscriptions_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	in := new(SweepSubscriptionsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*Server).SweepSubscriptions(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: fullMethodName(methodSweepSubscriptions)}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*Server).SweepSubscriptions(ctx, req.(*SweepSubscriptionsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc is the hand-written grpc.ServiceDesc a protoc-gen-go-grpc
// pass would otherwise generate from a .proto file.
var ServiceDesc = grpclib.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*Server)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: methodGetInvoice, Handler: _Admin_GetInvoice_Handler},
		{MethodName: methodGetMerchant, Handler: _Admin_GetMerchant_Handler},
		{MethodName: methodGetPlan, Handler: _Admin_GetPlan_Handler},
		{MethodName: methodChargeSubscription, Handler: _Admin_ChargeSubscription_Handler},
		{MethodName: methodSweepSubscriptions, Handler: _Admin_SweepSubscriptions_Handler},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "shade/admin.proto",
}

// Register wires Server into s, matching the generated
// RegisterXxxServer(grpc.ServiceRegistrar, XxxServer) convention.
func Register(s grpclib.ServiceRegistrar, srv *Server) {
	s.RegisterService(&ServiceDesc, srv)
}
