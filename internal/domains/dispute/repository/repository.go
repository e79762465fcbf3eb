package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"traveltrust/internal/domains/dispute/model"
	gRepo "traveltrust/shared/repository"

	"github.com/ethereum/go-ethereum/common"
)

const tableName = "disputes"

type Dispute interface {
	gRepo.Loader

	// Insert assigns the next id to dispute and indexes it by its booking.
	Insert(j gRepo.Journal, dispute model.Dispute) uint64
	Get(id uint64) (model.Dispute, bool)
	Update(j gRepo.Journal, dispute model.Dispute) bool
	ByBooking(bookingID uint64) (uint64, bool)
	Count() int
}

type disputeRow struct {
	ID         uint64       `db:"id"`
	BookingID  uint64       `db:"booking_id"`
	RaisedBy   string       `db:"raised_by"`
	Reason     string       `db:"reason"`
	Status     uint8        `db:"status"`
	Notes      string       `db:"notes"`
	ResolvedBy string       `db:"resolved_by"`
	CreatedAt  sql.NullTime `db:"created_at"`
	ResolvedAt sql.NullTime `db:"resolved_at"`
}

func toRow(d model.Dispute) gRepo.Row {
	return gRepo.Row{
		Table:      tableName,
		KeyColumns: []string{"id"},
		Key:        strconv.FormatUint(d.ID, 10),
		Data: disputeRow{
			ID:         d.ID,
			BookingID:  d.BookingID,
			RaisedBy:   d.RaisedBy.Hex(),
			Reason:     d.Reason,
			Status:     uint8(d.Status),
			Notes:      d.Notes,
			ResolvedBy: d.ResolvedBy.Hex(),
			CreatedAt:  gRepo.NullTime(d.CreatedAt),
			ResolvedAt: gRepo.NullTime(d.ResolvedAt),
		},
	}
}

func (row disputeRow) model() model.Dispute {
	return model.Dispute{
		ID:         row.ID,
		BookingID:  row.BookingID,
		RaisedBy:   common.HexToAddress(row.RaisedBy),
		Reason:     row.Reason,
		Status:     model.Status(row.Status),
		Notes:      row.Notes,
		ResolvedBy: common.HexToAddress(row.ResolvedBy),
		CreatedAt:  gRepo.TimeOf(row.CreatedAt),
		ResolvedAt: gRepo.TimeOf(row.ResolvedAt),
	}
}

type repositoryImpl struct {
	disputes  *gRepo.Arena[model.Dispute]
	byBooking *gRepo.Table[uint64, uint64]
}

func New() Dispute {
	return &repositoryImpl{
		disputes:  gRepo.NewArena[model.Dispute](),
		byBooking: gRepo.NewTable[uint64, uint64](),
	}
}

func (r *repositoryImpl) Insert(j gRepo.Journal, dispute model.Dispute) uint64 {
	dispute.ID = uint64(r.disputes.Len())

	id := r.disputes.Append(j, dispute)
	r.byBooking.Put(j, dispute.BookingID, id)
	j.Stage(toRow(dispute))

	return id
}

func (r *repositoryImpl) Get(id uint64) (model.Dispute, bool) {
	return r.disputes.Get(id)
}

func (r *repositoryImpl) Update(j gRepo.Journal, dispute model.Dispute) bool {
	if !r.disputes.Put(j, dispute.ID, dispute) {
		return false
	}

	j.Stage(toRow(dispute))

	return true
}

func (r *repositoryImpl) ByBooking(bookingID uint64) (uint64, bool) {
	return r.byBooking.Get(bookingID)
}

func (r *repositoryImpl) Count() int {
	return r.disputes.Len()
}

func (r *repositoryImpl) Load(ctx context.Context, src gRepo.Source) error {
	var rows []disputeRow
	if err := src.SelectAll(ctx, tableName, &rows); err != nil {
		return err
	}

	if err := gRepo.Ordered(rows, func(row disputeRow) uint64 { return row.ID }); err != nil {
		return fmt.Errorf("failed to load %s: %w", tableName, err)
	}

	disputes := make([]model.Dispute, 0, len(rows))
	for _, row := range rows {
		disputes = append(disputes, row.model())
	}

	r.disputes.Reset(disputes)
	r.byBooking.Reset()

	for _, d := range disputes {
		r.byBooking.Put(gRepo.Untracked, d.BookingID, d.ID)
	}

	return nil
}
