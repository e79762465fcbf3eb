package service

import (
	"context"
	"fmt"
	"math/big"
	"traveltrust/config"
	"traveltrust/infras/otel"
	"traveltrust/internal/chain"
	"traveltrust/internal/domains/escrow/model"
	"traveltrust/internal/domains/escrow/model/dto"
	"traveltrust/internal/domains/escrow/repository"
	"traveltrust/shared/constant"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
)

// Qualifier is the part of the staking registry the ledger consults.
type Qualifier interface {
	Address() common.Address
	IsQualifiedTx(tx *chain.Tx, guide common.Address) bool
}

// CompletionRecorder is the part of the reputation ledger credited on completion.
type CompletionRecorder interface {
	RecordCompletionTx(tx *chain.Tx, guide common.Address) error
}

// Escrow owns bookings and the traveler payments held against them.
type Escrow interface {
	Address() common.Address

	CreateBooking(ctx context.Context, caller, guide common.Address, description string, value *big.Int) (dto.BookingResponse, error)
	ConfirmBooking(ctx context.Context, caller common.Address, id uint64) (dto.BookingResponse, error)
	CompleteBooking(ctx context.Context, caller common.Address, id uint64) (dto.BookingResponse, error)
	CancelBooking(ctx context.Context, caller common.Address, id uint64) (dto.BookingResponse, error)
	GetBooking(ctx context.Context, id uint64) (dto.BookingResponse, error)
	GetTravelerBookings(ctx context.Context, traveler common.Address) []uint64
	GetGuideBookings(ctx context.Context, guide common.Address) []uint64
	SetReputationLedger(ctx context.Context, caller, reputation common.Address) error
	SetDisputeArbiter(ctx context.Context, caller, dispute common.Address) error

	CreateBookingTx(tx *chain.Tx, guide common.Address, description string) (uint64, error)
	ConfirmBookingTx(tx *chain.Tx, id uint64) error
	CompleteBookingTx(tx *chain.Tx, id uint64) error
	CancelBookingTx(tx *chain.Tx, id uint64) error
	BookingTx(tx *chain.Tx, id uint64) (model.Booking, error)
	MarkDisputedTx(tx *chain.Tx, id uint64) error
	SettleDisputeTx(tx *chain.Tx, id uint64, favorTraveler bool) error
	SetReputationLedgerTx(tx *chain.Tx, reputation common.Address) error
	SetDisputeArbiterTx(tx *chain.Tx, dispute common.Address) error
}

type serviceImpl struct {
	chain.Ownable

	rt      *chain.Runtime
	repo    repository.Booking
	otel    otel.Otel
	address common.Address
	staking common.Address

	reputation common.Address
	dispute    common.Address
}

func New(rt *chain.Runtime, repo repository.Booking, staking Qualifier, cfg *config.Config, otel otel.Otel) (Escrow, error) {
	s := &serviceImpl{
		Ownable: chain.NewOwnable(common.HexToAddress(cfg.Trust.OwnerAddress)),
		rt:      rt,
		repo:    repo,
		otel:    otel,
		address: chain.ModuleAddress(model.ModuleName),
		staking: staking.Address(),
	}

	if err := rt.Deploy(s.address, Escrow(s)); err != nil {
		return nil, fmt.Errorf("failed to deploy escrow ledger: %w", err)
	}

	rt.BindSlot(s.address, chain.SlotOwner, s.OwnerSlot())
	rt.BindSlot(s.address, model.PeerReputation, &s.reputation)
	rt.BindSlot(s.address, model.PeerDispute, &s.dispute)
	rt.Track(repo)

	return s, nil
}

func (s *serviceImpl) Address() common.Address {
	return s.address
}

func (s *serviceImpl) CreateBooking(ctx context.Context, caller, guide common.Address, description string, value *big.Int) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CreateBooking")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	res, err = s.transact(ctx, chain.Msg{From: caller, To: s.address, Value: value}, func(tx *chain.Tx) (uint64, error) {
		return s.CreateBookingTx(tx, guide, description)
	})
	if err != nil {
		log.Warn().Err(err).Str("traveler", caller.Hex()).Str("guide", guide.Hex()).Msg("failed to create booking")

		return res, err
	}

	log.Info().Uint64("bookingId", res.ID).Str("traveler", res.Traveler).Str("guide", res.Guide).Str("amount", res.Amount).Msg("booking created")

	return res, nil
}

func (s *serviceImpl) ConfirmBooking(ctx context.Context, caller common.Address, id uint64) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ConfirmBooking")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	res, err = s.transact(ctx, chain.Msg{From: caller, To: s.address}, func(tx *chain.Tx) (uint64, error) {
		return id, s.ConfirmBookingTx(tx, id)
	})
	if err != nil {
		log.Warn().Err(err).Uint64("bookingId", id).Str("caller", caller.Hex()).Msg("failed to confirm booking")

		return res, err
	}

	log.Info().Uint64("bookingId", id).Msg("booking confirmed")

	return res, nil
}

func (s *serviceImpl) CompleteBooking(ctx context.Context, caller common.Address, id uint64) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CompleteBooking")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	res, err = s.transact(ctx, chain.Msg{From: caller, To: s.address}, func(tx *chain.Tx) (uint64, error) {
		return id, s.CompleteBookingTx(tx, id)
	})
	if err != nil {
		log.Warn().Err(err).Uint64("bookingId", id).Str("caller", caller.Hex()).Msg("failed to complete booking")

		return res, err
	}

	log.Info().Uint64("bookingId", id).Str("guide", res.Guide).Str("amount", res.Amount).Msg("booking completed")

	return res, nil
}

func (s *serviceImpl) CancelBooking(ctx context.Context, caller common.Address, id uint64) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CancelBooking")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	res, err = s.transact(ctx, chain.Msg{From: caller, To: s.address}, func(tx *chain.Tx) (uint64, error) {
		return id, s.CancelBookingTx(tx, id)
	})
	if err != nil {
		log.Warn().Err(err).Uint64("bookingId", id).Str("caller", caller.Hex()).Msg("failed to cancel booking")

		return res, err
	}

	log.Info().Uint64("bookingId", id).Str("traveler", res.Traveler).Str("amount", res.Amount).Msg("booking cancelled")

	return res, nil
}

func (s *serviceImpl) GetBooking(ctx context.Context, id uint64) (res dto.BookingResponse, err error) {
	_, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetBooking")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	var (
		booking model.Booking
		found   bool
	)

	s.rt.View(func() {
		booking, found = s.repo.Get(id)
	})

	if !found {
		return res, ErrBookingNotFound
	}

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) GetTravelerBookings(ctx context.Context, traveler common.Address) (ids []uint64) {
	_, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetTravelerBookings")
	defer scope.End()

	s.rt.View(func() {
		ids = s.repo.TravelerBookings(traveler)
	})

	return ids
}

func (s *serviceImpl) GetGuideBookings(ctx context.Context, guide common.Address) (ids []uint64) {
	_, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetGuideBookings")
	defer scope.End()

	s.rt.View(func() {
		ids = s.repo.GuideBookings(guide)
	})

	return ids
}

func (s *serviceImpl) SetReputationLedger(ctx context.Context, caller, reputation common.Address) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SetReputationLedger")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	_, err = s.rt.Execute(ctx, chain.Msg{From: caller, To: s.address}, func(tx *chain.Tx) error {
		return s.SetReputationLedgerTx(tx, reputation)
	})

	return err //nolint:wrapcheck
}

func (s *serviceImpl) SetDisputeArbiter(ctx context.Context, caller, dispute common.Address) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SetDisputeArbiter")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	_, err = s.rt.Execute(ctx, chain.Msg{From: caller, To: s.address}, func(tx *chain.Tx) error {
		return s.SetDisputeArbiterTx(tx, dispute)
	})

	return err //nolint:wrapcheck
}

// transact runs fn and returns the committed state of the booking it touched.
func (s *serviceImpl) transact(ctx context.Context, msg chain.Msg, fn func(tx *chain.Tx) (uint64, error)) (res dto.BookingResponse, err error) {
	var booking model.Booking

	receipt, err := s.rt.Execute(ctx, msg, func(tx *chain.Tx) error {
		id, err := fn(tx)
		if err != nil {
			return err
		}

		booking, _ = s.repo.Get(id)

		return nil
	})
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	res.FromModel(booking)
	res.TxID = receipt.TxID

	return res, nil
}
