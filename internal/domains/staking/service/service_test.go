package service_test

import (
	"context"
	"math/big"
	"testing"
	"time"
	"traveltrust/infras/otel/mocks"
	"traveltrust/internal/chain"
	"traveltrust/internal/domains/staking/model"
	"traveltrust/internal/domains/staking/repository"
	"traveltrust/internal/domains/staking/service"
	"traveltrust/shared/amount"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	guide    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	stranger = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

type fixture struct {
	rt     *chain.Runtime
	svc    service.Staking
	now    time.Time
	events []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		rt:  chain.NewRuntime(),
		now: time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC),
	}
	f.rt.SetNowFunc(func() time.Time { return f.now })
	f.rt.Subscribe(chain.EmitterFunc(func(_ context.Context, receipt *chain.Receipt) {
		for _, evt := range receipt.Events {
			f.events = append(f.events, evt.Type)
		}
	}))

	svc, err := service.New(f.rt, repository.New(), mocks.NewOtel())
	require.NoError(t, err)

	f.svc = svc

	_, err = f.rt.Fund(context.Background(), guide, amount.MustParseEther("10"))
	require.NoError(t, err)

	f.rt.Flush()
	f.events = nil

	return f
}

func TestRegisterGuide(t *testing.T) {
	tests := []struct {
		name      string
		stakes    []string
		wantErr   error
		qualified bool
	}{
		{
			name:      "exactly the minimum stake qualifies",
			stakes:    []string{"0.1"},
			qualified: true,
		},
		{
			name:      "more than the minimum qualifies",
			stakes:    []string{"2.5"},
			qualified: true,
		},
		{
			name:    "below the minimum is rejected",
			stakes:  []string{"0.05"},
			wantErr: service.ErrInsufficientStake,
		},
		{
			name:      "registering twice is rejected",
			stakes:    []string{"0.1", "0.2"},
			wantErr:   service.ErrAlreadyRegistered,
			qualified: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			var err error
			for _, stake := range tt.stakes {
				_, err = f.svc.RegisterGuide(ctx, guide, amount.MustParseEther(stake))
			}

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			assert.Equal(t, tt.qualified, f.svc.IsQualified(ctx, guide))

			locked := f.rt.BalanceOf(f.svc.Address())
			info := f.svc.GetGuideInfo(ctx, guide)
			assert.Equal(t, locked.String(), info.StakeAmountWei)

			total := new(big.Int).Add(locked, f.rt.BalanceOf(guide))
			assert.Equal(t, 0, total.Cmp(amount.MustParseEther("10")), "value must be conserved")
		})
	}
}

func TestRegisterGuideEmitsEvent(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.RegisterGuide(context.Background(), guide, model.MinimumStake())
	require.NoError(t, err)

	assert.NotEmpty(t, res.TxID)
	assert.True(t, res.IsRegistered)
	assert.Equal(t, "0.1", res.StakeAmount)
	f.rt.Flush()
	assert.Equal(t, []string{model.EventTypeGuideRegistered}, f.events)
}

func TestRegisterGuideWithoutFunds(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RegisterGuide(context.Background(), stranger, model.MinimumStake())

	assert.ErrorIs(t, err, chain.ErrInsufficientFunds)
	assert.False(t, f.svc.IsQualified(context.Background(), stranger))
	f.rt.Flush()
	assert.Empty(t, f.events)
}

func TestUnregisterGuide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.UnregisterGuide(ctx, guide)
	assert.ErrorIs(t, err, service.ErrNotRegistered)

	_, err = f.svc.RegisterGuide(ctx, guide, model.MinimumStake())
	require.NoError(t, err)

	res, err := f.svc.UnregisterGuide(ctx, guide)
	require.NoError(t, err)

	assert.False(t, res.IsRegistered)
	assert.False(t, f.svc.IsQualified(ctx, guide))
	assert.NotEmpty(t, res.WithdrawableAt)
	assert.Equal(t, model.MinimumStake().String(), res.StakeAmountWei, "stake stays in custody")

	_, err = f.svc.UnregisterGuide(ctx, guide)
	assert.ErrorIs(t, err, service.ErrNotRegistered)
}

func TestWithdrawStake(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := f.rt.BalanceOf(guide)

	_, err := f.svc.RegisterGuide(ctx, guide, model.MinimumStake())
	require.NoError(t, err)

	_, err = f.svc.WithdrawStake(ctx, guide)
	assert.ErrorIs(t, err, service.ErrStillRegistered)

	_, err = f.svc.UnregisterGuide(ctx, guide)
	require.NoError(t, err)

	_, err = f.svc.WithdrawStake(ctx, guide)
	assert.ErrorIs(t, err, service.ErrLockupNotOver)

	f.now = f.now.Add(model.LockupPeriod - time.Second)
	_, err = f.svc.WithdrawStake(ctx, guide)
	assert.ErrorIs(t, err, service.ErrLockupNotOver)

	f.now = f.now.Add(2 * time.Second)
	res, err := f.svc.WithdrawStake(ctx, guide)
	require.NoError(t, err)

	assert.Equal(t, model.MinimumStake().String(), res.AmountWei)
	assert.Equal(t, 0, start.Cmp(f.rt.BalanceOf(guide)))
	assert.Equal(t, 0, f.rt.BalanceOf(f.svc.Address()).Sign())

	_, err = f.svc.WithdrawStake(ctx, guide)
	assert.ErrorIs(t, err, service.ErrNothingToWithdraw)
	assert.Equal(t, 0, start.Cmp(f.rt.BalanceOf(guide)), "second withdrawal pays nothing")
}

func TestWithdrawStakeNeverRegistered(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.WithdrawStake(context.Background(), stranger)

	assert.ErrorIs(t, err, service.ErrNothingToWithdraw)
}

func TestReRegistration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RegisterGuide(ctx, guide, model.MinimumStake())
	require.NoError(t, err)

	_, err = f.svc.UnregisterGuide(ctx, guide)
	require.NoError(t, err)

	_, err = f.svc.RegisterGuide(ctx, guide, model.MinimumStake())
	assert.ErrorIs(t, err, service.ErrStakePendingWithdrawal)

	f.now = f.now.Add(model.LockupPeriod)
	_, err = f.svc.WithdrawStake(ctx, guide)
	require.NoError(t, err)

	res, err := f.svc.RegisterGuide(ctx, guide, amount.MustParseEther("0.3"))
	require.NoError(t, err)

	assert.True(t, res.IsRegistered)
	assert.Equal(t, "0.3", res.StakeAmount)
	assert.Empty(t, res.UnregisteredAt)
}
