package grpc_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	grpcadmin "github.com/Ogstevyn/shade/internal/grpc"
	"github.com/Ogstevyn/shade/internal/host"
	"github.com/Ogstevyn/shade/internal/host/production"
	"github.com/Ogstevyn/shade/internal/shade"
)

type memBackend struct{ data map[string][]byte }

func newMemBackend() *memBackend { return &memBackend{data: map[string][]byte{}} }

func (b *memBackend) Get(key []byte) ([]byte, bool, error) {
	v, ok := b.data[string(key)]
	return v, ok, nil
}

func (b *memBackend) WriteBatch(puts map[string][]byte, deletes map[string]struct{}) error {
	for k, v := range puts {
		b.data[k] = v
	}
	for k := range deletes {
		delete(b.data, k)
	}
	return nil
}

func (b *memBackend) Close() error { return nil }

func newTestServer(t *testing.T) (*grpcadmin.Server, *production.Host, host.Address) {
	t.Helper()
	ph, err := production.New(newMemBackend(), 16)
	require.NoError(t, err)

	var admin host.Address
	admin[0] = 0xAA
	require.NoError(t, production.WithAuthorized(ph, admin, func() error {
		c := shade.NewContract(ph, host.Address{})
		return c.Initialize(admin)
	}))

	c := shade.NewContract(ph, host.Address{})
	srv := grpcadmin.NewServer(c, ph)
	return srv, ph, admin
}

func TestGetMerchantNotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)
	_, err := srv.GetMerchant(context.Background(), &grpcadmin.GetMerchantRequest{MerchantID: 999})
	assert.Error(t, err)
}

func TestChargeSubscriptionAuthorizesCaller(t *testing.T) {
	srv, _, _ := newTestServer(t)
	var caller host.Address
	caller[0] = 0x01
	_, err := srv.ChargeSubscription(context.Background(), &grpcadmin.ChargeSubscriptionRequest{SubscriptionID: 1, Caller: caller})
	assert.Error(t, err) // subscription 1 doesn't exist, but auth plumbing itself must not panic
}

func TestSweepSubscriptionsWithNoDueSubscriptions(t *testing.T) {
	srv, _, admin := newTestServer(t)
	resp, err := srv.SweepSubscriptions(context.Background(), &grpcadmin.SweepSubscriptionsRequest{Caller: admin, Concurrency: 4})
	require.NoError(t, err)
	assert.Empty(t, resp.Charged)
	assert.Empty(t, resp.Failed)
}
