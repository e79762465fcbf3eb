package service

import (
	"context"
	"fmt"
	"traveltrust/config"
	"traveltrust/infras/otel"
	"traveltrust/internal/chain"
	"traveltrust/internal/domains/dispute/model"
	"traveltrust/internal/domains/dispute/model/dto"
	"traveltrust/internal/domains/dispute/repository"
	escrowModel "traveltrust/internal/domains/escrow/model"
	"traveltrust/shared/constant"
	"traveltrust/shared/failure"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
)

// Bookings is the part of the escrow ledger the arbiter drives.
type Bookings interface {
	BookingTx(tx *chain.Tx, id uint64) (escrowModel.Booking, error)
	MarkDisputedTx(tx *chain.Tx, id uint64) error
	SettleDisputeTx(tx *chain.Tx, id uint64, favorTraveler bool) error
}

// Penalizer is the part of the reputation ledger charged when a guide loses.
type Penalizer interface {
	RecordDisputeTx(tx *chain.Tx, guide common.Address) error
}

// Dispute lets either party of a booking raise one dispute against it and
// lets the arbitrator settle it.
type Dispute interface {
	Address() common.Address
	Arbitrator() common.Address

	RaiseDispute(ctx context.Context, caller common.Address, bookingID uint64, reason string) (dto.DisputeResponse, error)
	ResolveDispute(ctx context.Context, caller common.Address, id uint64, favorTraveler bool, notes string) (dto.DisputeResponse, error)
	GetDispute(ctx context.Context, id uint64) (dto.DisputeResponse, error)
	GetBookingDispute(ctx context.Context, bookingID uint64) (dto.DisputeResponse, error)
	SetArbitrator(ctx context.Context, caller, arbitrator common.Address) error
	SetEscrowLedger(ctx context.Context, caller, escrow common.Address) error
	SetReputationLedger(ctx context.Context, caller, reputation common.Address) error

	RaiseDisputeTx(tx *chain.Tx, bookingID uint64, reason string) (uint64, error)
	ResolveDisputeTx(tx *chain.Tx, id uint64, favorTraveler bool, notes string) error
	SetArbitratorTx(tx *chain.Tx, arbitrator common.Address) error
	SetEscrowLedgerTx(tx *chain.Tx, escrow common.Address) error
	SetReputationLedgerTx(tx *chain.Tx, reputation common.Address) error
}

type serviceImpl struct {
	chain.Ownable

	rt      *chain.Runtime
	repo    repository.Dispute
	otel    otel.Otel
	address common.Address

	escrow     common.Address
	reputation common.Address
	arbitrator common.Address
}

// New deploys the arbiter with no escrow or reputation peer; the owner points
// it at both before disputes can be raised.
func New(rt *chain.Runtime, repo repository.Dispute, cfg *config.Config, otel otel.Otel) (Dispute, error) {
	owner := common.HexToAddress(cfg.Trust.OwnerAddress)

	arbitrator := owner
	if cfg.Trust.ArbitratorAddress != "" {
		arbitrator = common.HexToAddress(cfg.Trust.ArbitratorAddress)
	}

	s := &serviceImpl{
		Ownable:    chain.NewOwnable(owner),
		rt:         rt,
		repo:       repo,
		otel:       otel,
		address:    chain.ModuleAddress(model.ModuleName),
		arbitrator: arbitrator,
	}

	if err := rt.Deploy(s.address, Dispute(s)); err != nil {
		return nil, fmt.Errorf("failed to deploy dispute arbiter: %w", err)
	}

	rt.BindSlot(s.address, chain.SlotOwner, s.OwnerSlot())
	rt.BindSlot(s.address, model.PeerArbitrator, &s.arbitrator)
	rt.BindSlot(s.address, model.PeerEscrow, &s.escrow)
	rt.BindSlot(s.address, model.PeerReputation, &s.reputation)
	rt.Track(repo)

	return s, nil
}

func (s *serviceImpl) Address() common.Address {
	return s.address
}

func (s *serviceImpl) Arbitrator() (arbitrator common.Address) {
	s.rt.View(func() {
		arbitrator = s.arbitrator
	})

	return arbitrator
}

func (s *serviceImpl) RaiseDispute(ctx context.Context, caller common.Address, bookingID uint64, reason string) (res dto.DisputeResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RaiseDispute")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	res, err = s.transact(ctx, caller, func(tx *chain.Tx) (uint64, error) {
		return s.RaiseDisputeTx(tx, bookingID, reason)
	})
	if err != nil {
		log.Warn().Err(err).Uint64("bookingId", bookingID).Str("caller", caller.Hex()).Msg("failed to raise dispute")

		return res, err
	}

	log.Info().Uint64("disputeId", res.ID).Uint64("bookingId", bookingID).Str("raisedBy", res.RaisedBy).Msg("dispute raised")

	return res, nil
}

func (s *serviceImpl) ResolveDispute(ctx context.Context, caller common.Address, id uint64, favorTraveler bool, notes string) (res dto.DisputeResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ResolveDispute")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	res, err = s.transact(ctx, caller, func(tx *chain.Tx) (uint64, error) {
		return id, s.ResolveDisputeTx(tx, id, favorTraveler, notes)
	})
	if err != nil {
		log.Warn().Err(err).Uint64("disputeId", id).Str("caller", caller.Hex()).Msg("failed to resolve dispute")

		return res, err
	}

	log.Info().Uint64("disputeId", id).Uint64("bookingId", res.BookingID).Str("status", res.Status).Msg("dispute resolved")

	return res, nil
}

func (s *serviceImpl) GetDispute(ctx context.Context, id uint64) (res dto.DisputeResponse, err error) {
	_, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetDispute")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	var (
		dispute model.Dispute
		found   bool
	)

	s.rt.View(func() {
		dispute, found = s.repo.Get(id)
	})

	if !found {
		return res, ErrDisputeNotFound
	}

	res.FromModel(dispute)

	return res, nil
}

func (s *serviceImpl) GetBookingDispute(ctx context.Context, bookingID uint64) (res dto.DisputeResponse, err error) {
	_, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetBookingDispute")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	var (
		dispute model.Dispute
		found   bool
	)

	s.rt.View(func() {
		var id uint64

		id, found = s.repo.ByBooking(bookingID)
		if found {
			dispute, found = s.repo.Get(id)
		}
	})

	if !found {
		return res, ErrNoDisputeForBooking
	}

	res.FromModel(dispute)

	return res, nil
}

func (s *serviceImpl) SetArbitrator(ctx context.Context, caller, arbitrator common.Address) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SetArbitrator")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	_, err = s.rt.Execute(ctx, chain.Msg{From: caller, To: s.address}, func(tx *chain.Tx) error {
		return s.SetArbitratorTx(tx, arbitrator)
	})

	return err //nolint:wrapcheck
}

func (s *serviceImpl) SetEscrowLedger(ctx context.Context, caller, escrow common.Address) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SetEscrowLedger")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	_, err = s.rt.Execute(ctx, chain.Msg{From: caller, To: s.address}, func(tx *chain.Tx) error {
		return s.SetEscrowLedgerTx(tx, escrow)
	})

	return err //nolint:wrapcheck
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

func (s *serviceImpl) RaiseDisputeTx(tx *chain.Tx, bookingID uint64, reason string) (uint64, error) {
	if len(reason) > model.MaxReasonLength {
		return 0, ErrReasonTooLong
	}

	booking, err := s.booking(tx, bookingID)
	if err != nil {
		return 0, err
	}

	raisedBy := tx.Sender()
	if raisedBy != booking.Traveler && raisedBy != booking.Guide {
		return 0, ErrNotAuthorized
	}

	if _, exists := s.repo.ByBooking(bookingID); exists {
		return 0, ErrDisputeAlreadyExists
	}

	err = chain.Call(tx, s.escrow, func(sub *chain.Tx, escrow Bookings) error {
		return escrow.MarkDisputedTx(sub, bookingID)
	})
	if err != nil {
		return 0, err //nolint:wrapcheck
	}

	dispute := model.Dispute{
		BookingID: bookingID,
		RaisedBy:  raisedBy,
		Reason:    reason,
		Status:    model.StatusOpen,
		CreatedAt: tx.Now(),
	}
	dispute.ID = s.repo.Insert(tx, dispute)

	tx.Emit(model.NewDisputeRaisedEvent(dispute))

	return dispute.ID, nil
}

// ResolveDisputeTx records the outcome and the guide penalty before the
// escrow ledger releases the funds.
func (s *serviceImpl) ResolveDisputeTx(tx *chain.Tx, id uint64, favorTraveler bool, notes string) error {
	if s.arbitrator == (common.Address{}) || tx.Sender() != s.arbitrator {
		return failure.ForbiddenError
	}

	if len(notes) > model.MaxNotesLength {
		return ErrNotesTooLong
	}

	dispute, found := s.repo.Get(id)
	if !found {
		return ErrDisputeNotFound
	}

	if dispute.Status != model.StatusOpen {
		return ErrDisputeNotOpen
	}

	booking, err := s.booking(tx, dispute.BookingID)
	if err != nil {
		return err
	}

	dispute.Resolve(tx.Sender(), favorTraveler, notes, tx.Now())
	s.repo.Update(tx, dispute)

	if favorTraveler {
		if s.reputation == (common.Address{}) {
			return ErrReputationNotSet
		}

		err = chain.Call(tx, s.reputation, func(sub *chain.Tx, reputation Penalizer) error {
			return reputation.RecordDisputeTx(sub, booking.Guide)
		})
		if err != nil {
			return fmt.Errorf("failed to penalize guide reputation: %w", err)
		}
	}

	tx.Emit(model.NewDisputeResolvedEvent(dispute))

	return chain.Call(tx, s.escrow, func(sub *chain.Tx, escrow Bookings) error {
		return escrow.SettleDisputeTx(sub, dispute.BookingID, favorTraveler)
	})
}

func (s *serviceImpl) SetArbitratorTx(tx *chain.Tx, arbitrator common.Address) error {
	return s.SetPeer(tx, &s.arbitrator, model.PeerArbitrator, arbitrator)
}

func (s *serviceImpl) SetEscrowLedgerTx(tx *chain.Tx, escrow common.Address) error {
	return s.SetPeer(tx, &s.escrow, model.PeerEscrow, escrow)
}

func (s *serviceImpl) SetReputationLedgerTx(tx *chain.Tx, reputation common.Address) error {
	return s.SetPeer(tx, &s.reputation, model.PeerReputation, reputation)
}

func (s *serviceImpl) booking(tx *chain.Tx, id uint64) (booking escrowModel.Booking, err error) {
	if s.escrow == (common.Address{}) {
		return booking, ErrEscrowNotSet
	}

	err = chain.Call(tx, s.escrow, func(sub *chain.Tx, escrow Bookings) error {
		booking, err = escrow.BookingTx(sub, id)

		return err
	})

	return booking, err //nolint:wrapcheck
}

// transact runs fn and returns the committed state of the dispute it touched.
func (s *serviceImpl) transact(ctx context.Context, caller common.Address, fn func(tx *chain.Tx) (uint64, error)) (res dto.DisputeResponse, err error) {
	var dispute model.Dispute

	receipt, err := s.rt.Execute(ctx, chain.Msg{From: caller, To: s.address}, func(tx *chain.Tx) error {
		id, err := fn(tx)
		if err != nil {
			return err
		}

		dispute, _ = s.repo.Get(id)

		return nil
	})
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	res.FromModel(dispute)
	res.TxID = receipt.TxID

	return res, nil
}
