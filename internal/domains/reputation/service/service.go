package service

import (
	"context"
	"fmt"
	"traveltrust/config"
	"traveltrust/infras/otel"
	"traveltrust/internal/chain"
	"traveltrust/internal/domains/reputation/model"
	"traveltrust/internal/domains/reputation/model/dto"
	"traveltrust/internal/domains/reputation/repository"
	"traveltrust/shared/constant"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
)

// Reputation keeps one score per guide. Only the escrow ledger may credit a
// completion and only the dispute arbiter may apply a penalty.
type Reputation interface {
	Address() common.Address

	RecordCompletion(ctx context.Context, caller, guide common.Address) error
	RecordDispute(ctx context.Context, caller, guide common.Address) error
	GetScore(ctx context.Context, guide common.Address) uint64
	GetReputation(ctx context.Context, guide common.Address) dto.ReputationResponse
	SetEscrowLedger(ctx context.Context, caller, escrow common.Address) error
	SetDisputeArbiter(ctx context.Context, caller, dispute common.Address) error

	RecordCompletionTx(tx *chain.Tx, guide common.Address) error
	RecordDisputeTx(tx *chain.Tx, guide common.Address) error
	SetEscrowLedgerTx(tx *chain.Tx, escrow common.Address) error
	SetDisputeArbiterTx(tx *chain.Tx, dispute common.Address) error
}

type serviceImpl struct {
	chain.Ownable

	rt      *chain.Runtime
	repo    repository.Reputation
	otel    otel.Otel
	address common.Address

	escrow  common.Address
	dispute common.Address
}

func New(rt *chain.Runtime, repo repository.Reputation, cfg *config.Config, otel otel.Otel) (Reputation, error) {
	s := &serviceImpl{
		Ownable: chain.NewOwnable(common.HexToAddress(cfg.Trust.OwnerAddress)),
		rt:      rt,
		repo:    repo,
		otel:    otel,
		address: chain.ModuleAddress(model.ModuleName),
	}

	if err := rt.Deploy(s.address, Reputation(s)); err != nil {
		return nil, fmt.Errorf("failed to deploy reputation ledger: %w", err)
	}

	rt.BindSlot(s.address, chain.SlotOwner, s.OwnerSlot())
	rt.BindSlot(s.address, model.PeerEscrow, &s.escrow)
	rt.BindSlot(s.address, model.PeerDispute, &s.dispute)
	rt.Track(repo)

	return s, nil
}

func (s *serviceImpl) Address() common.Address {
	return s.address
}

func (s *serviceImpl) RecordCompletion(ctx context.Context, caller, guide common.Address) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RecordCompletion")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	_, err = s.rt.Execute(ctx, chain.Msg{From: caller, To: s.address}, func(tx *chain.Tx) error {
		return s.RecordCompletionTx(tx, guide)
	})
	if err != nil {
		log.Warn().Err(err).Str("caller", caller.Hex()).Str("guide", guide.Hex()).Msg("failed to record completion")

		return err //nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) RecordDispute(ctx context.Context, caller, guide common.Address) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RecordDispute")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	_, err = s.rt.Execute(ctx, chain.Msg{From: caller, To: s.address}, func(tx *chain.Tx) error {
		return s.RecordDisputeTx(tx, guide)
	})
	if err != nil {
		log.Warn().Err(err).Str("caller", caller.Hex()).Str("guide", guide.Hex()).Msg("failed to record dispute")

		return err //nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) GetScore(ctx context.Context, guide common.Address) (score uint64) {
	_, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetScore")
	defer scope.End()

	s.rt.View(func() {
		score = s.repo.Get(guide).Score
	})

	return score
}

func (s *serviceImpl) GetReputation(ctx context.Context, guide common.Address) (res dto.ReputationResponse) {
	_, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetReputation")
	defer scope.End()

	s.rt.View(func() {
		res.FromModel(s.repo.Get(guide))
	})

	return res
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

func (s *serviceImpl) SetDisputeArbiter(ctx context.Context, caller, dispute common.Address) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SetDisputeArbiter")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	_, err = s.rt.Execute(ctx, chain.Msg{From: caller, To: s.address}, func(tx *chain.Tx) error {
		return s.SetDisputeArbiterTx(tx, dispute)
	})

	return err //nolint:wrapcheck
}

func (s *serviceImpl) RecordCompletionTx(tx *chain.Tx, guide common.Address) error {
	if s.escrow == (common.Address{}) || tx.Sender() != s.escrow {
		return ErrOnlyEscrow
	}

	rec := s.repo.Get(guide)
	rec.Score += model.CompletionReward
	rec.CompletedBookings++
	rec.UpdatedAt = tx.Now()
	s.repo.Save(tx, rec)

	tx.Emit(model.NewCompletionRecordedEvent(rec))

	return nil
}

func (s *serviceImpl) RecordDisputeTx(tx *chain.Tx, guide common.Address) error {
	if s.dispute == (common.Address{}) || tx.Sender() != s.dispute {
		return ErrOnlyDisputeArbiter
	}

	rec := s.repo.Get(guide)
	rec.Penalize(model.DisputePenalty)
	rec.UpdatedAt = tx.Now()
	s.repo.Save(tx, rec)

	tx.Emit(model.NewDisputeRecordedEvent(rec))

	return nil
}

func (s *serviceImpl) SetEscrowLedgerTx(tx *chain.Tx, escrow common.Address) error {
	return s.SetPeer(tx, &s.escrow, model.PeerEscrow, escrow)
}

func (s *serviceImpl) SetDisputeArbiterTx(tx *chain.Tx, dispute common.Address) error {
	return s.SetPeer(tx, &s.dispute, model.PeerDispute, dispute)
}
