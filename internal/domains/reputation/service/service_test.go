package service_test

import (
	"context"
	"testing"
	"traveltrust/config"
	"traveltrust/infras/otel/mocks"
	"traveltrust/internal/chain"
	"traveltrust/internal/domains/reputation/repository"
	"traveltrust/internal/domains/reputation/service"
	"traveltrust/shared/failure"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner   = common.HexToAddress("0x0000000000000000000000000000000000000001")
	escrow  = common.HexToAddress("0x00000000000000000000000000000000000000e1")
	dispute = common.HexToAddress("0x00000000000000000000000000000000000000d1")
	guide   = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	other   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

func newService(t *testing.T) service.Reputation {
	t.Helper()

	cfg := &config.Config{}
	cfg.Trust.OwnerAddress = owner.Hex()

	svc, err := service.New(chain.NewRuntime(), repository.New(), cfg, mocks.NewOtel())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, svc.SetEscrowLedger(ctx, owner, escrow))
	require.NoError(t, svc.SetDisputeArbiter(ctx, owner, dispute))

	return svc
}

func TestRecordCompletion(t *testing.T) {
	tests := []struct {
		name      string
		caller    common.Address
		times     int
		wantErr   error
		wantScore uint64
		wantCount uint64
	}{
		{name: "escrow credits five points", caller: escrow, times: 1, wantScore: 5, wantCount: 1},
		{name: "credits accumulate", caller: escrow, times: 3, wantScore: 15, wantCount: 3},
		{name: "dispute arbiter is rejected", caller: dispute, times: 1, wantErr: service.ErrOnlyEscrow},
		{name: "guide cannot credit itself", caller: guide, times: 1, wantErr: service.ErrOnlyEscrow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t)
			ctx := context.Background()

			var err error
			for range tt.times {
				err = svc.RecordCompletion(ctx, tt.caller, guide)
			}

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			rep := svc.GetReputation(ctx, guide)
			assert.Equal(t, tt.wantScore, rep.Score)
			assert.Equal(t, tt.wantCount, rep.CompletedBookings)
			assert.Equal(t, tt.wantScore, svc.GetScore(ctx, guide))
		})
	}
}

func TestRecordDispute(t *testing.T) {
	tests := []struct {
		name        string
		completions int
		wantScore   uint64
	}{
		{name: "penalty on an empty record saturates at zero", completions: 0, wantScore: 0},
		{name: "penalty larger than the score saturates at zero", completions: 1, wantScore: 0},
		{name: "penalty equal to the score reaches zero", completions: 2, wantScore: 0},
		{name: "penalty subtracts ten", completions: 3, wantScore: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t)
			ctx := context.Background()

			for range tt.completions {
				require.NoError(t, svc.RecordCompletion(ctx, escrow, guide))
			}

			require.NoError(t, svc.RecordDispute(ctx, dispute, guide))

			rep := svc.GetReputation(ctx, guide)
			assert.Equal(t, tt.wantScore, rep.Score)
			assert.Equal(t, uint64(tt.completions), rep.CompletedBookings, "penalties never touch the completion counter")
		})
	}
}

func TestRecordDisputeRequiresDisputeArbiter(t *testing.T) {
	svc := newService(t)

	err := svc.RecordDispute(context.Background(), escrow, guide)

	assert.ErrorIs(t, err, service.ErrOnlyDisputeArbiter)
}

func TestUnconfiguredPeersRejectEveryone(t *testing.T) {
	cfg := &config.Config{}
	cfg.Trust.OwnerAddress = owner.Hex()

	svc, err := service.New(chain.NewRuntime(), repository.New(), cfg, mocks.NewOtel())
	require.NoError(t, err)

	ctx := context.Background()
	assert.ErrorIs(t, svc.RecordCompletion(ctx, common.Address{}, guide), service.ErrOnlyEscrow)
	assert.ErrorIs(t, svc.RecordDispute(ctx, common.Address{}, guide), service.ErrOnlyDisputeArbiter)
}

func TestSetPeers(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.SetEscrowLedger(ctx, other, other), failure.ForbiddenError)
	assert.ErrorIs(t, svc.SetDisputeArbiter(ctx, other, other), failure.ForbiddenError)
	assert.ErrorIs(t, svc.SetEscrowLedger(ctx, owner, common.Address{}), chain.ErrInvalidAddress)

	require.NoError(t, svc.SetEscrowLedger(ctx, owner, other))
	assert.ErrorIs(t, svc.RecordCompletion(ctx, escrow, guide), service.ErrOnlyEscrow)
	assert.NoError(t, svc.RecordCompletion(ctx, other, guide))
}
