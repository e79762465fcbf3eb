package repository

import (
	"context"
	"database/sql"
	"fmt"
	"traveltrust/internal/domains/staking/model"
	"traveltrust/shared/amount"
	gRepo "traveltrust/shared/repository"

	"github.com/ethereum/go-ethereum/common"
)

const tableName = "guide_stakes"

type Stake interface {
	gRepo.Loader

	Get(guide common.Address) (model.GuideStake, bool)
	Save(j gRepo.Journal, stake model.GuideStake)
	Count() int
}

type stakeRow struct {
	Guide          string       `db:"guide"`
	StakeAmount    string       `db:"stake_amount"`
	IsRegistered   bool         `db:"is_registered"`
	RegisteredAt   sql.NullTime `db:"registered_at"`
	UnregisteredAt sql.NullTime `db:"unregistered_at"`
}

func toRow(stake model.GuideStake) gRepo.Row {
	return gRepo.Row{
		Table:      tableName,
		KeyColumns: []string{"guide"},
		Key:        stake.Owner.Hex(),
		Data: stakeRow{
			Guide:          stake.Owner.Hex(),
			StakeAmount:    amount.Wei(stake.StakeAmount),
			IsRegistered:   stake.IsRegistered,
			RegisteredAt:   gRepo.NullTime(stake.RegisteredAt),
			UnregisteredAt: gRepo.NullTime(stake.UnregisteredAt),
		},
	}
}

func (row stakeRow) model() (model.GuideStake, error) {
	stake, err := amount.ParseWei(row.StakeAmount)
	if err != nil {
		return model.GuideStake{}, fmt.Errorf("stake of %s: %w", row.Guide, err)
	}

	return model.GuideStake{
		Owner:          common.HexToAddress(row.Guide),
		StakeAmount:    stake,
		IsRegistered:   row.IsRegistered,
		RegisteredAt:   gRepo.TimeOf(row.RegisteredAt),
		UnregisteredAt: gRepo.TimeOf(row.UnregisteredAt),
	}, nil
}

type repositoryImpl struct {
	stakes *gRepo.Table[common.Address, model.GuideStake]
}

func New() Stake {
	return &repositoryImpl{
		stakes: gRepo.NewTable[common.Address, model.GuideStake](),
	}
}

func (r *repositoryImpl) Get(guide common.Address) (model.GuideStake, bool) {
	stake, ok := r.stakes.Get(guide)
	if !ok {
		return model.GuideStake{Owner: guide}.Clone(), false
	}

	return stake.Clone(), true
}

func (r *repositoryImpl) Save(j gRepo.Journal, stake model.GuideStake) {
	r.stakes.Put(j, stake.Owner, stake.Clone())
	j.Stage(toRow(stake))
}

func (r *repositoryImpl) Count() int {
	return r.stakes.Len()
}

func (r *repositoryImpl) Load(ctx context.Context, src gRepo.Source) error {
	var rows []stakeRow
	if err := src.SelectAll(ctx, tableName, &rows); err != nil {
		return err
	}

	r.stakes.Reset()

	for _, row := range rows {
		stake, err := row.model()
		if err != nil {
			return err
		}

		r.stakes.Put(gRepo.Untracked, stake.Owner, stake)
	}

	return nil
}
