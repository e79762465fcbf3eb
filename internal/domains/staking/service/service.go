package service

import (
	"context"
	"fmt"
	"math/big"
	"traveltrust/infras/otel"
	"traveltrust/internal/chain"
	"traveltrust/internal/domains/staking/model"
	"traveltrust/internal/domains/staking/model/dto"
	"traveltrust/internal/domains/staking/repository"
	"traveltrust/shared/amount"
	"traveltrust/shared/constant"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
)

// Staking is the guide qualification gate. Guides lock collateral to become
// qualified and get it back a lockup period after unregistering.
type Staking interface {
	Address() common.Address

	RegisterGuide(ctx context.Context, caller common.Address, value *big.Int) (dto.GuideStakeResponse, error)
	UnregisterGuide(ctx context.Context, caller common.Address) (dto.GuideStakeResponse, error)
	WithdrawStake(ctx context.Context, caller common.Address) (dto.WithdrawStakeResponse, error)
	IsQualified(ctx context.Context, guide common.Address) bool
	GetGuideInfo(ctx context.Context, guide common.Address) dto.GuideStakeResponse

	RegisterGuideTx(tx *chain.Tx) error
	UnregisterGuideTx(tx *chain.Tx) error
	WithdrawStakeTx(tx *chain.Tx) (*big.Int, error)
	IsQualifiedTx(tx *chain.Tx, guide common.Address) bool
}

type serviceImpl struct {
	rt      *chain.Runtime
	repo    repository.Stake
	otel    otel.Otel
	address common.Address
}

func New(rt *chain.Runtime, repo repository.Stake, otel otel.Otel) (Staking, error) {
	s := &serviceImpl{
		rt:      rt,
		repo:    repo,
		otel:    otel,
		address: chain.ModuleAddress(model.ModuleName),
	}

	if err := rt.Deploy(s.address, Staking(s)); err != nil {
		return nil, fmt.Errorf("failed to deploy staking registry: %w", err)
	}

	rt.Track(repo)

	return s, nil
}

func (s *serviceImpl) Address() common.Address {
	return s.address
}

func (s *serviceImpl) RegisterGuide(ctx context.Context, caller common.Address, value *big.Int) (res dto.GuideStakeResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RegisterGuide")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	receipt, err := s.rt.Execute(ctx, chain.Msg{From: caller, To: s.address, Value: value}, s.RegisterGuideTx)
	if err != nil {
		log.Warn().Err(err).Str("guide", caller.Hex()).Msg("failed to register guide")

		return res, err //nolint:wrapcheck
	}

	res = s.GetGuideInfo(ctx, caller)
	res.TxID = receipt.TxID

	log.Info().Str("guide", caller.Hex()).Str("stake", res.StakeAmount).Msg("guide registered")

	return res, nil
}

func (s *serviceImpl) UnregisterGuide(ctx context.Context, caller common.Address) (res dto.GuideStakeResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UnregisterGuide")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	receipt, err := s.rt.Execute(ctx, chain.Msg{From: caller, To: s.address}, s.UnregisterGuideTx)
	if err != nil {
		log.Warn().Err(err).Str("guide", caller.Hex()).Msg("failed to unregister guide")

		return res, err //nolint:wrapcheck
	}

	res = s.GetGuideInfo(ctx, caller)
	res.TxID = receipt.TxID

	log.Info().Str("guide", caller.Hex()).Str("withdrawableAt", res.WithdrawableAt).Msg("guide unregistered")

	return res, nil
}

func (s *serviceImpl) WithdrawStake(ctx context.Context, caller common.Address) (res dto.WithdrawStakeResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".WithdrawStake")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	var withdrawn *big.Int

	receipt, err := s.rt.Execute(ctx, chain.Msg{From: caller, To: s.address}, func(tx *chain.Tx) error {
		paid, err := s.WithdrawStakeTx(tx)
		withdrawn = paid

		return err
	})
	if err != nil {
		log.Warn().Err(err).Str("guide", caller.Hex()).Msg("failed to withdraw stake")

		return res, err //nolint:wrapcheck
	}

	res = dto.WithdrawStakeResponse{
		TxID:      receipt.TxID,
		Guide:     caller.Hex(),
		Amount:    amount.FormatEther(withdrawn),
		AmountWei: withdrawn.String(),
	}

	log.Info().Str("guide", caller.Hex()).Str("amount", res.Amount).Msg("stake withdrawn")

	return res, nil
}

func (s *serviceImpl) IsQualified(ctx context.Context, guide common.Address) (qualified bool) {
	_, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".IsQualified")
	defer scope.End()

	s.rt.View(func() {
		qualified = s.isQualified(guide)
	})

	return qualified
}

func (s *serviceImpl) GetGuideInfo(ctx context.Context, guide common.Address) (res dto.GuideStakeResponse) {
	_, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetGuideInfo")
	defer scope.End()

	s.rt.View(func() {
		stake, _ := s.repo.Get(guide)
		res.FromModel(stake)
	})

	return res
}

func (s *serviceImpl) RegisterGuideTx(tx *chain.Tx) error {
	guide := tx.Sender()
	value := tx.Value()

	if value.Cmp(model.MinimumStake()) < 0 {
		return ErrInsufficientStake
	}

	stake, found := s.repo.Get(guide)
	if found && stake.IsRegistered {
		return ErrAlreadyRegistered
	}

	if found && stake.StakeAmount.Sign() > 0 {
		return ErrStakePendingWithdrawal
	}

	s.repo.Save(tx, model.GuideStake{
		Owner:        guide,
		StakeAmount:  value,
		IsRegistered: true,
		RegisteredAt: tx.Now(),
	})

	tx.Emit(model.NewGuideRegisteredEvent(guide, value))

	return nil
}

func (s *serviceImpl) UnregisterGuideTx(tx *chain.Tx) error {
	guide := tx.Sender()

	stake, found := s.repo.Get(guide)
	if !found || !stake.IsRegistered {
		return ErrNotRegistered
	}

	stake.IsRegistered = false
	stake.UnregisteredAt = tx.Now()
	s.repo.Save(tx, stake)

	tx.Emit(model.NewGuideUnregisteredEvent(guide, stake.UnregisteredAt))

	return nil
}

// WithdrawStakeTx zeroes the stake before paying it out.
func (s *serviceImpl) WithdrawStakeTx(tx *chain.Tx) (*big.Int, error) {
	guide := tx.Sender()

	stake, _ := s.repo.Get(guide)
	if stake.IsRegistered {
		return nil, ErrStillRegistered
	}

	if tx.Now().Before(stake.UnregisteredAt.Add(model.LockupPeriod)) {
		return nil, ErrLockupNotOver
	}

	if stake.StakeAmount.Sign() == 0 {
		return nil, ErrNothingToWithdraw
	}

	payout := stake.StakeAmount
	stake.StakeAmount = new(big.Int)
	s.repo.Save(tx, stake)

	tx.Emit(model.NewStakeWithdrawnEvent(guide, payout))

	if err := tx.Transfer(guide, payout); err != nil {
		return nil, fmt.Errorf("failed to pay out stake: %w", err)
	}

	return payout, nil
}

func (s *serviceImpl) IsQualifiedTx(_ *chain.Tx, guide common.Address) bool {
	return s.isQualified(guide)
}

func (s *serviceImpl) isQualified(guide common.Address) bool {
	stake, found := s.repo.Get(guide)

	return found && stake.IsRegistered
}
