package service_test

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"
	"traveltrust/config"
	"traveltrust/infras/otel/mocks"
	"traveltrust/internal/chain"
	"traveltrust/internal/domains/dispute/model"
	"traveltrust/internal/domains/dispute/repository"
	"traveltrust/internal/domains/dispute/service"
	escrowModel "traveltrust/internal/domains/escrow/model"
	escrowRepo "traveltrust/internal/domains/escrow/repository"
	escrowService "traveltrust/internal/domains/escrow/service"
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

	bookingAmount = amount.MustParseEther("0.5")
)

type fixture struct {
	rt         *chain.Runtime
	escrow     escrowService.Escrow
	reputation reputationService.Reputation
	dispute    service.Dispute
	events     []chain.Event
}

// newFixture wires all four components and leaves booking 0 CONFIRMED.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := newUnlinkedFixture(t)
	ctx := context.Background()

	require.NoError(t, f.dispute.SetEscrowLedger(ctx, owner, f.escrow.Address()))
	require.NoError(t, f.dispute.SetReputationLedger(ctx, owner, f.reputation.Address()))
	f.rt.Flush()
	f.events = nil

	return f
}

// newUnlinkedFixture is newFixture with the arbiter's own peers left unset.
func newUnlinkedFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	cfg := &config.Config{}
	cfg.Trust.OwnerAddress = owner.Hex()

	f := &fixture{rt: chain.NewRuntime()}

	staking, err := stakingService.New(f.rt, stakingRepo.New(), mocks.NewOtel())
	require.NoError(t, err)

	f.escrow, err = escrowService.New(f.rt, escrowRepo.New(), staking, cfg, mocks.NewOtel())
	require.NoError(t, err)

	f.reputation, err = reputationService.New(f.rt, reputationRepo.New(), cfg, mocks.NewOtel())
	require.NoError(t, err)

	f.dispute, err = service.New(f.rt, repository.New(), cfg, mocks.NewOtel())
	require.NoError(t, err)

	require.NoError(t, f.escrow.SetReputationLedger(ctx, owner, f.reputation.Address()))
	require.NoError(t, f.escrow.SetDisputeArbiter(ctx, owner, f.dispute.Address()))
	require.NoError(t, f.reputation.SetEscrowLedger(ctx, owner, f.escrow.Address()))
	require.NoError(t, f.reputation.SetDisputeArbiter(ctx, owner, f.dispute.Address()))

	for _, addr := range []common.Address{traveler, guide, other} {
		_, err = f.rt.Fund(ctx, addr, amount.MustParseEther("10"))
		require.NoError(t, err)
	}

	_, err = staking.RegisterGuide(ctx, guide, stakingModel.MinimumStake())
	require.NoError(t, err)

	id := f.book(t)
	_, err = f.escrow.ConfirmBooking(ctx, guide, id)
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

func (f *fixture) completeBooking(t *testing.T) {
	t.Helper()

	ctx := context.Background()
	id := f.book(t)

	_, err := f.escrow.ConfirmBooking(ctx, guide, id)
	require.NoError(t, err)

	_, err = f.escrow.CompleteBooking(ctx, traveler, id)
	require.NoError(t, err)
}

func (f *fixture) eventTypes() []string {
	f.rt.Flush()

	types := make([]string, 0, len(f.events))
	for _, event := range f.events {
		types = append(types, event.Type)
	}

	return types
}

func TestRaiseDispute(t *testing.T) {
	tests := []struct {
		name   string
		caller common.Address
	}{
		{name: "traveler", caller: traveler},
		{name: "guide", caller: guide},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			res, err := f.dispute.RaiseDispute(ctx, tt.caller, 0, "Guide did not show up")
			require.NoError(t, err)

			assert.Equal(t, uint64(0), res.ID)
			assert.Equal(t, uint64(0), res.BookingID)
			assert.Equal(t, tt.caller.Hex(), res.RaisedBy)
			assert.Equal(t, model.StatusOpen.String(), res.Status)
			assert.NotEmpty(t, res.TxID)

			assert.Equal(t, []string{escrowModel.EventTypeBookingDisputed, model.EventTypeDisputeRaised}, f.eventTypes())

			raised := f.events[1]
			assert.Equal(t, "0", raised.Attributes[model.AttributeDisputeID])
			assert.Equal(t, "0", raised.Attributes[model.AttributeBookingID])
			assert.Equal(t, tt.caller.Hex(), raised.Attributes[model.AttributeRaisedBy])

			booking, err := f.escrow.GetBooking(ctx, 0)
			require.NoError(t, err)
			assert.True(t, booking.Disputed)
			assert.Equal(t, escrowModel.StatusConfirmed.String(), booking.Status)
		})
	}
}

func TestRaiseDisputeRejections(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(t *testing.T, f *fixture) uint64
		caller    common.Address
		wantErr   error
		wantCount int
	}{
		{
			name:    "outsider",
			setup:   func(*testing.T, *fixture) uint64 { return 0 },
			caller:  other,
			wantErr: service.ErrNotAuthorized,
		},
		{
			name:    "unknown booking",
			setup:   func(*testing.T, *fixture) uint64 { return 7 },
			caller:  traveler,
			wantErr: escrowService.ErrBookingNotFound,
		},
		{
			name: "second dispute on the same booking",
			setup: func(t *testing.T, f *fixture) uint64 {
				_, err := f.dispute.RaiseDispute(context.Background(), traveler, 0, "reason")
				require.NoError(t, err)

				return 0
			},
			caller:    guide,
			wantErr:   service.ErrDisputeAlreadyExists,
			wantCount: 1,
		},
		{
			name: "dispute after resolution",
			setup: func(t *testing.T, f *fixture) uint64 {
				ctx := context.Background()

				_, err := f.dispute.RaiseDispute(ctx, traveler, 0, "reason")
				require.NoError(t, err)

				_, err = f.dispute.ResolveDispute(ctx, owner, 0, true, "Traveler wins")
				require.NoError(t, err)

				return 0
			},
			caller:    traveler,
			wantErr:   service.ErrDisputeAlreadyExists,
			wantCount: 1,
		},
		{
			name: "booking already cancelled",
			setup: func(t *testing.T, f *fixture) uint64 {
				id := f.book(t)

				_, err := f.escrow.CancelBooking(context.Background(), traveler, id)
				require.NoError(t, err)

				return id
			},
			caller:  traveler,
			wantErr: escrowService.ErrBookingNotDisputable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			bookingID := tt.setup(t, f)

			_, err := f.dispute.RaiseDispute(ctx, tt.caller, bookingID, "reason")
			assert.ErrorIs(t, err, tt.wantErr)

			_, err = f.dispute.GetDispute(ctx, uint64(tt.wantCount))
			assert.ErrorIs(t, err, service.ErrDisputeNotFound, "no dispute record is allocated")
		})
	}
}

func TestResolveDisputeForTraveler(t *testing.T) {
	tests := []struct {
		name        string
		completions int
		wantScore   uint64
	}{
		{name: "score at zero stays at zero", completions: 0, wantScore: 0},
		{name: "penalty saturates", completions: 1, wantScore: 0},
		{name: "penalty subtracts ten", completions: 3, wantScore: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			for range tt.completions {
				f.completeBooking(t)
			}

			_, err := f.dispute.RaiseDispute(ctx, traveler, 0, "Guide did not show up")
			require.NoError(t, err)

			travelerBefore := f.rt.BalanceOf(traveler)

			res, err := f.dispute.ResolveDispute(ctx, owner, 0, true, "Traveler wins")
			require.NoError(t, err)

			assert.Equal(t, model.StatusResolvedForTraveler.String(), res.Status)
			assert.Equal(t, "Traveler wins", res.Notes)
			assert.Equal(t, owner.Hex(), res.ResolvedBy)

			refund := new(big.Int).Sub(f.rt.BalanceOf(traveler), travelerBefore)
			assert.Equal(t, 0, refund.Cmp(bookingAmount))
			assert.Equal(t, tt.wantScore, f.reputation.GetScore(ctx, guide))

			booking, err := f.escrow.GetBooking(ctx, 0)
			require.NoError(t, err)
			assert.Equal(t, escrowModel.StatusCancelled.String(), booking.Status)
			assert.Equal(t, 0, f.rt.BalanceOf(f.escrow.Address()).Sign())
		})
	}
}

func TestResolveDisputeForGuide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.completeBooking(t)

	_, err := f.dispute.RaiseDispute(ctx, guide, 0, "Traveler no-show")
	require.NoError(t, err)

	guideBefore := f.rt.BalanceOf(guide)

	res, err := f.dispute.ResolveDispute(ctx, owner, 0, false, "Guide wins")
	require.NoError(t, err)
	assert.Equal(t, model.StatusResolvedForGuide.String(), res.Status)

	earned := new(big.Int).Sub(f.rt.BalanceOf(guide), guideBefore)
	assert.Equal(t, 0, earned.Cmp(bookingAmount))
	assert.Equal(t, uint64(5), f.reputation.GetScore(ctx, guide), "a guide win carries no penalty")

	booking, err := f.escrow.GetBooking(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, escrowModel.StatusCompleted.String(), booking.Status)
}

func TestResolveDisputeRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.dispute.RaiseDispute(ctx, traveler, 0, "reason")
	require.NoError(t, err)

	for _, caller := range []common.Address{other, traveler, guide} {
		_, err = f.dispute.ResolveDispute(ctx, caller, 0, true, "reason")
		assert.ErrorIs(t, err, failure.ForbiddenError)
	}

	_, err = f.dispute.ResolveDispute(ctx, owner, 9, true, "reason")
	assert.ErrorIs(t, err, service.ErrDisputeNotFound)

	_, err = f.dispute.ResolveDispute(ctx, owner, 0, true, "resolved")
	require.NoError(t, err)

	_, err = f.dispute.ResolveDispute(ctx, owner, 0, false, "again")
	assert.ErrorIs(t, err, service.ErrDisputeNotOpen)

	res, err := f.dispute.GetDispute(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, model.StatusResolvedForTraveler.String(), res.Status)
}

func TestResolveDisputeIsAtomic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.dispute.RaiseDispute(ctx, traveler, 0, "reason")
	require.NoError(t, err)

	require.NoError(t, f.reputation.SetDisputeArbiter(ctx, owner, other))

	travelerBefore := f.rt.BalanceOf(traveler)

	_, err = f.dispute.ResolveDispute(ctx, owner, 0, true, "Traveler wins")
	assert.ErrorIs(t, err, reputationService.ErrOnlyDisputeArbiter)

	res, err := f.dispute.GetDispute(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen.String(), res.Status)
	assert.Equal(t, 0, travelerBefore.Cmp(f.rt.BalanceOf(traveler)))
	assert.Equal(t, 0, f.rt.BalanceOf(f.escrow.Address()).Cmp(bookingAmount))
}

func TestGetBookingDispute(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.dispute.GetBookingDispute(ctx, 0)
	assert.ErrorIs(t, err, service.ErrNoDisputeForBooking)

	_, err = f.dispute.RaiseDispute(ctx, traveler, 0, "reason")
	require.NoError(t, err)

	res, err := f.dispute.GetBookingDispute(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), res.BookingID)
	assert.Equal(t, traveler.Hex(), res.RaisedBy)
}

func TestSetArbitrator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	arbitrator := common.HexToAddress("0x00000000000000000000000000000000000000d1")

	assert.Equal(t, owner, f.dispute.Arbitrator())

	assert.ErrorIs(t, f.dispute.SetArbitrator(ctx, other, other), failure.ForbiddenError)
	assert.ErrorIs(t, f.dispute.SetArbitrator(ctx, owner, common.Address{}), chain.ErrInvalidAddress)

	require.NoError(t, f.dispute.SetArbitrator(ctx, owner, arbitrator))
	assert.Equal(t, arbitrator, f.dispute.Arbitrator())

	_, err := f.dispute.RaiseDispute(ctx, traveler, 0, "reason")
	require.NoError(t, err)

	_, err = f.dispute.ResolveDispute(ctx, owner, 0, true, "reason")
	assert.ErrorIs(t, err, failure.ForbiddenError)

	_, err = f.dispute.ResolveDispute(ctx, arbitrator, 0, true, "reason")
	assert.NoError(t, err)
}

func TestTextLimits(t *testing.T) {
	atLimit := strings.Repeat("é", model.MaxReasonLength/2)

	tests := []struct {
		name    string
		reason  string
		notes   string
		wantErr error
	}{
		{name: "limits counted in bytes", reason: atLimit, notes: atLimit},
		{name: "reason too long", reason: atLimit + "x", notes: "ok", wantErr: service.ErrReasonTooLong},
		{name: "notes too long", reason: "ok", notes: strings.Repeat("n", model.MaxNotesLength+1), wantErr: service.ErrNotesTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			_, err := f.dispute.RaiseDispute(ctx, traveler, 0, tt.reason)
			if errors.Is(tt.wantErr, service.ErrReasonTooLong) {
				assert.ErrorIs(t, err, tt.wantErr)

				_, err = f.dispute.GetBookingDispute(ctx, 0)
				assert.ErrorIs(t, err, service.ErrNoDisputeForBooking)

				return
			}

			require.NoError(t, err)

			res, err := f.dispute.ResolveDispute(ctx, owner, 0, false, tt.notes)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				res, err = f.dispute.GetDispute(ctx, 0)
				require.NoError(t, err)
				assert.Equal(t, model.StatusOpen.String(), res.Status)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.notes, res.Notes)
		})
	}
}

func TestSetPeers(t *testing.T) {
	f := newUnlinkedFixture(t)
	ctx := context.Background()

	_, err := f.dispute.RaiseDispute(ctx, traveler, 0, "reason")
	assert.ErrorIs(t, err, service.ErrEscrowNotSet)

	assert.ErrorIs(t, f.dispute.SetEscrowLedger(ctx, other, f.escrow.Address()), failure.ForbiddenError)
	assert.ErrorIs(t, f.dispute.SetReputationLedger(ctx, other, f.reputation.Address()), failure.ForbiddenError)
	assert.ErrorIs(t, f.dispute.SetEscrowLedger(ctx, owner, common.Address{}), chain.ErrInvalidAddress)

	require.NoError(t, f.dispute.SetEscrowLedger(ctx, owner, f.escrow.Address()))

	_, err = f.dispute.RaiseDispute(ctx, traveler, 0, "reason")
	require.NoError(t, err)

	_, err = f.dispute.ResolveDispute(ctx, owner, 0, true, "Traveler wins")
	assert.ErrorIs(t, err, service.ErrReputationNotSet)

	require.NoError(t, f.dispute.SetReputationLedger(ctx, owner, f.reputation.Address()))

	_, err = f.dispute.ResolveDispute(ctx, owner, 0, true, "Traveler wins")
	require.NoError(t, err)

	f.rt.Flush()

	peers := map[string]string{}

	for _, event := range f.events {
		if event.Type == chain.EventTypePeerConfigured {
			peers[event.Attributes[chain.AttributePeer]] = event.Attributes[chain.AttributeAddress]
		}
	}

	assert.Equal(t, map[string]string{
		model.PeerEscrow:     f.escrow.Address().Hex(),
		model.PeerReputation: f.reputation.Address().Hex(),
	}, peers)
}
