package repository

import (
	"context"
	"database/sql"
	"traveltrust/internal/domains/reputation/model"
	gRepo "traveltrust/shared/repository"

	"github.com/ethereum/go-ethereum/common"
)

const tableName = "reputations"

type Reputation interface {
	gRepo.Loader

	// Get returns a zero record for guides that were never scored.
	Get(guide common.Address) model.Record
	Save(j gRepo.Journal, rec model.Record)
}

type recordRow struct {
	Guide             string       `db:"guide"`
	Score             uint64       `db:"score"`
	CompletedBookings uint64       `db:"completed_bookings"`
	UpdatedAt         sql.NullTime `db:"updated_at"`
}

type repositoryImpl struct {
	records *gRepo.Table[common.Address, model.Record]
}

func New() Reputation {
	return &repositoryImpl{
		records: gRepo.NewTable[common.Address, model.Record](),
	}
}

func (r *repositoryImpl) Get(guide common.Address) model.Record {
	rec, ok := r.records.Get(guide)
	if !ok {
		return model.Record{Guide: guide}
	}

	return rec
}

func (r *repositoryImpl) Save(j gRepo.Journal, rec model.Record) {
	r.records.Put(j, rec.Guide, rec)
	j.Stage(gRepo.Row{
		Table:      tableName,
		KeyColumns: []string{"guide"},
		Key:        rec.Guide.Hex(),
		Data: recordRow{
			Guide:             rec.Guide.Hex(),
			Score:             rec.Score,
			CompletedBookings: rec.CompletedBookings,
			UpdatedAt:         gRepo.NullTime(rec.UpdatedAt),
		},
	})
}

func (r *repositoryImpl) Load(ctx context.Context, src gRepo.Source) error {
	var rows []recordRow
	if err := src.SelectAll(ctx, tableName, &rows); err != nil {
		return err
	}

	r.records.Reset()

	for _, row := range rows {
		guide := common.HexToAddress(row.Guide)
		r.records.Put(gRepo.Untracked, guide, model.Record{
			Guide:             guide,
			Score:             row.Score,
			CompletedBookings: row.CompletedBookings,
			UpdatedAt:         gRepo.TimeOf(row.UpdatedAt),
		})
	}

	return nil
}
