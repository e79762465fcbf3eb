package service_test

import (
	"context"
	"math/big"
	"strings"
	"testing"
	"traveltrust/config"
	"traveltrust/infras/otel/mocks"
	"traveltrust/internal/chain"
	"traveltrust/internal/domains/escrow/model"
	"traveltrust/internal/domains/escrow/repository"
	"traveltrust/internal/domains/escrow/service"
	reputationRepo "traveltrust/internal/domains/reputation/repository"
	reputationService "traveltrust/internal/domains/reputation/service"
	stakingModel "traveltrust/internal/domains/staking/model"
	stakingRepo "traveltrust/internal/domains/staking/repository"
	stakingService "traveltrust/internal/domains/staking/service"
	"traveltrust/shared/amount"
	"traveltrust/shared/failure"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner    = common.HexToAddress("0x0000000000000000000000000000000000000001")
	traveler = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	guide    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	other    = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	arbiter  = common.HexToAddress("0x00000000000000000000000000000000000000d1")

	bookingAmount = amount.MustParseEther("0.5")
)

type fixture struct {
	rt         *chain.Runtime
	escrow     service.Escrow
	reputation reputationService.Reputation
	events     []chain.Event
}

func newFixture(t *testing.T, withReputation bool) *fixture {
	t.Helper()

	ctx := context.Background()
	cfg := &config.Config{}
	cfg.Trust.OwnerAddress = owner.Hex()

	f := &fixture{rt: chain.NewRuntime()}

	staking, err := stakingService.New(f.rt, stakingRepo.New(), mocks.NewOtel())
	require.NoError(t, err)

	f.reputation, err = reputationService.New(f.rt, reputationRepo.New(), cfg, mocks.NewOtel())
	require.NoError(t, err)

	f.escrow, err = service.New(f.rt, repository.New(), staking, cfg, mocks.NewOtel())
	require.NoError(t, err)

	if withReputation {
		require.NoError(t, f.escrow.SetReputationLedger(ctx, owner, f.reputation.Address()))
		require.NoError(t, f.reputation.SetEscrowLedger(ctx, owner, f.escrow.Address()))
	}

	require.NoError(t, f.escrow.SetDisputeArbiter(ctx, owner, arbiter))

	for _, addr := range []common.Address{traveler, guide, other} {
		_, err = f.rt.Fund(ctx, addr, amount.MustParseEther("10"))
		require.NoError(t, err)
	}

	_, err = staking.RegisterGuide(ctx, guide, stakingModel.MinimumStake())
	require.NoError(t, err)

	f.rt.Subscribe(chain.EmitterFunc(func(_ context.Context, receipt *chain.Receipt) {
		f.events = append(f.events, receipt.Events...)
	}))

	return f
}

func (f *fixture) book(t *testing.T) uint64 {
	t.Helper()

	res, err := f.escrow.CreateBooking(context.Background(), traveler, guide, "City tour", bookingAmount)
	require.NoError(t, err)

	return res.ID
}

func (f *fixture) asArbiter(fn func(tx *chain.Tx) error) error {
	_, err := f.rt.Execute(context.Background(), chain.Msg{From: arbiter, To: f.escrow.Address()}, fn)

	return err
}

func TestCreateBooking(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	before := f.rt.BalanceOf(traveler)

	res, err := f.escrow.CreateBooking(ctx, traveler, guide, "City tour", bookingAmount)
	require.NoError(t, err)

	assert.Equal(t, uint64(0), res.ID)
	assert.Equal(t, traveler.Hex(), res.Traveler)
	assert.Equal(t, guide.Hex(), res.Guide)
	assert.Equal(t, "0.5", res.Amount)
	assert.Equal(t, model.StatusPending.String(), res.Status)
	assert.NotEmpty(t, res.TxID)

	f.rt.Flush()
	require.Len(t, f.events, 1)
	assert.Equal(t, model.EventTypeBookingCreated, f.events[0].Type)
	assert.Equal(t, "0", f.events[0].Attributes[model.AttributeBookingID])
	assert.Equal(t, bookingAmount.String(), f.events[0].Attributes[model.AttributeAmount])

	spent := new(big.Int).Sub(before, f.rt.BalanceOf(traveler))
	assert.Equal(t, 0, spent.Cmp(bookingAmount))
	assert.Equal(t, 0, f.rt.BalanceOf(f.escrow.Address()).Cmp(bookingAmount))

	second, err := f.escrow.CreateBooking(ctx, traveler, guide, "Food tour", bookingAmount)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), second.ID)

	assert.Equal(t, []uint64{0, 1}, f.escrow.GetTravelerBookings(ctx, traveler))
	assert.Equal(t, []uint64{0, 1}, f.escrow.GetGuideBookings(ctx, guide))
	assert.Empty(t, f.escrow.GetGuideBookings(ctx, other))
}

func TestCreateBookingRejections(t *testing.T) {
	tests := []struct {
		name        string
		caller      common.Address
		guide       common.Address
		description string
		value       *big.Int
		wantErr     error
	}{
		{
			name:        "no payment",
			caller:      traveler,
			guide:       guide,
			description: "City tour",
			value:       big.NewInt(0),
			wantErr:     service.ErrPaymentRequired,
		},
		{
			name:        "unqualified guide",
			caller:      traveler,
			guide:       other,
			description: "City tour",
			value:       bookingAmount,
			wantErr:     service.ErrGuideNotQualified,
		},
		{
			name:        "booking yourself",
			caller:      guide,
			guide:       guide,
			description: "City tour",
			value:       bookingAmount,
			wantErr:     service.ErrCannotBookSelf,
		},
		{
			name:        "description too long",
			caller:      traveler,
			guide:       guide,
			description: strings.Repeat("a", model.MaxDescriptionLength+1),
			value:       bookingAmount,
			wantErr:     service.ErrDescriptionTooLong,
		},
		{
			name:        "payment exceeds balance",
			caller:      traveler,
			guide:       guide,
			description: "City tour",
			value:       amount.MustParseEther("11"),
			wantErr:     chain.ErrInsufficientFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			ctx := context.Background()
			before := f.rt.BalanceOf(tt.caller)

			_, err := f.escrow.CreateBooking(ctx, tt.caller, tt.guide, tt.description, tt.value)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, before.Cmp(f.rt.BalanceOf(tt.caller)), "rejected booking must not move funds")
			assert.Empty(t, f.escrow.GetTravelerBookings(ctx, tt.caller))
			f.rt.Flush()
			assert.Empty(t, f.events)

			_, err = f.escrow.GetBooking(ctx, 0)
			assert.ErrorIs(t, err, service.ErrBookingNotFound)
		})
	}
}

func TestConfirmBooking(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	id := f.book(t)

	_, err := f.escrow.ConfirmBooking(ctx, other, id)
	assert.ErrorIs(t, err, service.ErrNotTheGuide)

	_, err = f.escrow.ConfirmBooking(ctx, traveler, id)
	assert.ErrorIs(t, err, service.ErrNotTheGuide)

	res, err := f.escrow.ConfirmBooking(ctx, guide, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed.String(), res.Status)

	_, err = f.escrow.ConfirmBooking(ctx, guide, id)
	assert.ErrorIs(t, err, service.ErrBookingNotPending)

	_, err = f.escrow.ConfirmBooking(ctx, guide, 42)
	assert.ErrorIs(t, err, service.ErrBookingNotFound)
}

func TestCompleteBooking(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	id := f.book(t)

	_, err := f.escrow.CompleteBooking(ctx, traveler, id)
	assert.ErrorIs(t, err, service.ErrBookingNotConfirmed)

	_, err = f.escrow.ConfirmBooking(ctx, guide, id)
	require.NoError(t, err)

	_, err = f.escrow.CompleteBooking(ctx, other, id)
	assert.ErrorIs(t, err, service.ErrNotTheTraveler)

	guideBefore := f.rt.BalanceOf(guide)

	res, err := f.escrow.CompleteBooking(ctx, traveler, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted.String(), res.Status)

	earned := new(big.Int).Sub(f.rt.BalanceOf(guide), guideBefore)
	assert.Equal(t, 0, earned.Cmp(bookingAmount))
	assert.Equal(t, 0, f.rt.BalanceOf(f.escrow.Address()).Sign())
	assert.Equal(t, uint64(5), f.reputation.GetScore(ctx, guide))
	assert.Equal(t, uint64(1), f.reputation.GetReputation(ctx, guide).CompletedBookings)

	_, err = f.escrow.CompleteBooking(ctx, traveler, id)
	assert.ErrorIs(t, err, service.ErrBookingNotConfirmed)

	earned = new(big.Int).Sub(f.rt.BalanceOf(guide), guideBefore)
	assert.Equal(t, 0, earned.Cmp(bookingAmount), "guide is paid exactly once")
}

func TestCompleteBookingIsAtomic(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, f *fixture)
		wantErr error
	}{
		{
			name:    "reputation ledger not configured",
			setup:   func(*testing.T, *fixture) {},
			wantErr: service.ErrReputationNotSet,
		},
		{
			name: "reputation ledger refuses the escrow",
			setup: func(t *testing.T, f *fixture) {
				ctx := context.Background()
				require.NoError(t, f.escrow.SetReputationLedger(ctx, owner, f.reputation.Address()))
				require.NoError(t, f.reputation.SetEscrowLedger(ctx, owner, other))
			},
			wantErr: reputationService.ErrOnlyEscrow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)
			ctx := context.Background()
			tt.setup(t, f)

			id := f.book(t)
			_, err := f.escrow.ConfirmBooking(ctx, guide, id)
			require.NoError(t, err)

			guideBefore := f.rt.BalanceOf(guide)

			_, err = f.escrow.CompleteBooking(ctx, traveler, id)
			assert.ErrorIs(t, err, tt.wantErr)

			booking, err := f.escrow.GetBooking(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, model.StatusConfirmed.String(), booking.Status)
			assert.Equal(t, 0, guideBefore.Cmp(f.rt.BalanceOf(guide)))
			assert.Equal(t, 0, f.rt.BalanceOf(f.escrow.Address()).Cmp(bookingAmount))
			assert.Equal(t, uint64(0), f.reputation.GetScore(ctx, guide))
		})
	}
}

func TestCancelBooking(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	pending := f.book(t)
	confirmed := f.book(t)

	_, err := f.escrow.ConfirmBooking(ctx, guide, confirmed)
	require.NoError(t, err)

	_, err = f.escrow.CancelBooking(ctx, traveler, confirmed)
	assert.ErrorIs(t, err, service.ErrOnlyPendingCancellable)

	_, err = f.escrow.CancelBooking(ctx, guide, pending)
	assert.ErrorIs(t, err, service.ErrNotTheTraveler)

	travelerBefore := f.rt.BalanceOf(traveler)

	res, err := f.escrow.CancelBooking(ctx, traveler, pending)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled.String(), res.Status)

	refund := new(big.Int).Sub(f.rt.BalanceOf(traveler), travelerBefore)
	assert.Equal(t, 0, refund.Cmp(bookingAmount))

	_, err = f.escrow.CancelBooking(ctx, traveler, pending)
	assert.ErrorIs(t, err, service.ErrOnlyPendingCancellable)
}

func TestCancelBookingReentrancy(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	id := f.book(t)

	var reentryErr error

	f.rt.SetReceiver(traveler, func(tx *chain.Tx, _ *big.Int) error {
		reentryErr = chain.Call(tx, f.escrow.Address(), func(sub *chain.Tx, esc service.Escrow) error {
			return esc.CancelBookingTx(sub, id)
		})

		return nil
	})

	travelerBefore := f.rt.BalanceOf(traveler)

	_, err := f.escrow.CancelBooking(ctx, traveler, id)
	require.NoError(t, err)

	assert.ErrorIs(t, reentryErr, service.ErrOnlyPendingCancellable)

	refund := new(big.Int).Sub(f.rt.BalanceOf(traveler), travelerBefore)
	assert.Equal(t, 0, refund.Cmp(bookingAmount), "refund happens once")
}

func TestRejectingReceiverRevertsPayout(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	id := f.book(t)

	f.rt.SetReceiver(traveler, func(*chain.Tx, *big.Int) error {
		return failure.BadRequestFromString("refusing payment")
	})

	_, err := f.escrow.CancelBooking(ctx, traveler, id)
	assert.Error(t, err)

	booking, err := f.escrow.GetBooking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending.String(), booking.Status)
	assert.Equal(t, 0, f.rt.BalanceOf(f.escrow.Address()).Cmp(bookingAmount))
}

func TestDisputeEntryPoints(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	id := f.book(t)

	_, err := f.escrow.ConfirmBooking(ctx, guide, id)
	require.NoError(t, err)

	_, err = f.rt.Execute(ctx, chain.Msg{From: traveler, To: f.escrow.Address()}, func(tx *chain.Tx) error {
		return f.escrow.SettleDisputeTx(tx, id, true)
	})
	assert.ErrorIs(t, err, service.ErrOnlyDisputeArbiter)

	err = f.asArbiter(func(tx *chain.Tx) error { return f.escrow.SettleDisputeTx(tx, id, true) })
	assert.ErrorIs(t, err, service.ErrBookingNotDisputable, "settlement requires a raised dispute")

	require.NoError(t, f.asArbiter(func(tx *chain.Tx) error { return f.escrow.MarkDisputedTx(tx, id) }))

	booking, err := f.escrow.GetBooking(ctx, id)
	require.NoError(t, err)
	assert.True(t, booking.Disputed)

	_, err = f.escrow.CompleteBooking(ctx, traveler, id)
	assert.ErrorIs(t, err, service.ErrBookingDisputed)

	travelerBefore := f.rt.BalanceOf(traveler)

	require.NoError(t, f.asArbiter(func(tx *chain.Tx) error { return f.escrow.SettleDisputeTx(tx, id, true) }))

	refund := new(big.Int).Sub(f.rt.BalanceOf(traveler), travelerBefore)
	assert.Equal(t, 0, refund.Cmp(bookingAmount))

	booking, err = f.escrow.GetBooking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled.String(), booking.Status)

	err = f.asArbiter(func(tx *chain.Tx) error { return f.escrow.SettleDisputeTx(tx, id, false) })
	assert.ErrorIs(t, err, service.ErrBookingNotDisputable)
}

func TestSettleDisputeForGuide(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	id := f.book(t)

	require.NoError(t, f.asArbiter(func(tx *chain.Tx) error { return f.escrow.MarkDisputedTx(tx, id) }))

	guideBefore := f.rt.BalanceOf(guide)

	require.NoError(t, f.asArbiter(func(tx *chain.Tx) error { return f.escrow.SettleDisputeTx(tx, id, false) }))

	earned := new(big.Int).Sub(f.rt.BalanceOf(guide), guideBefore)
	assert.Equal(t, 0, earned.Cmp(bookingAmount))

	booking, err := f.escrow.GetBooking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted.String(), booking.Status)
	assert.Equal(t, uint64(0), f.reputation.GetScore(ctx, guide), "dispute settlement earns no completion credit")
}

func TestMarkDisputedRequiresCustody(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	id := f.book(t)

	_, err := f.escrow.CancelBooking(ctx, traveler, id)
	require.NoError(t, err)

	err = f.asArbiter(func(tx *chain.Tx) error { return f.escrow.MarkDisputedTx(tx, id) })
	assert.ErrorIs(t, err, service.ErrBookingNotDisputable)
}

func TestSetPeersRequiresOwner(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	assert.ErrorIs(t, f.escrow.SetReputationLedger(ctx, other, other), failure.ForbiddenError)
	assert.ErrorIs(t, f.escrow.SetDisputeArbiter(ctx, traveler, traveler), failure.ForbiddenError)
}
