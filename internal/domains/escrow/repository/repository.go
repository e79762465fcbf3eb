package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"traveltrust/internal/domains/escrow/model"
	"traveltrust/shared/amount"
	gRepo "traveltrust/shared/repository"

	"github.com/ethereum/go-ethereum/common"
)

const tableName = "bookings"

type Booking interface {
	gRepo.Loader

	// Insert assigns the next id to booking and indexes it by both parties.
	Insert(j gRepo.Journal, booking model.Booking) uint64
	Get(id uint64) (model.Booking, bool)
	Update(j gRepo.Journal, booking model.Booking) bool
	TravelerBookings(traveler common.Address) []uint64
	GuideBookings(guide common.Address) []uint64
	Count() int
}

type bookingRow struct {
	ID          uint64       `db:"id"`
	Traveler    string       `db:"traveler"`
	Guide       string       `db:"guide"`
	Description string       `db:"description"`
	Amount      string       `db:"amount"`
	Status      uint8        `db:"status"`
	Disputed    bool         `db:"disputed"`
	CreatedAt   sql.NullTime `db:"created_at"`
	UpdatedAt   sql.NullTime `db:"updated_at"`
}

func toRow(booking model.Booking) gRepo.Row {
	return gRepo.Row{
		Table:      tableName,
		KeyColumns: []string{"id"},
		Key:        strconv.FormatUint(booking.ID, 10),
		Data: bookingRow{
			ID:          booking.ID,
			Traveler:    booking.Traveler.Hex(),
			Guide:       booking.Guide.Hex(),
			Description: booking.Description,
			Amount:      amount.Wei(booking.Amount),
			Status:      uint8(booking.Status),
			Disputed:    booking.Disputed,
			CreatedAt:   gRepo.NullTime(booking.CreatedAt),
			UpdatedAt:   gRepo.NullTime(booking.UpdatedAt),
		},
	}
}

func (row bookingRow) model() (model.Booking, error) {
	value, err := amount.ParseWei(row.Amount)
	if err != nil {
		return model.Booking{}, fmt.Errorf("booking %d: %w", row.ID, err)
	}

	return model.Booking{
		ID:          row.ID,
		Traveler:    common.HexToAddress(row.Traveler),
		Guide:       common.HexToAddress(row.Guide),
		Description: row.Description,
		Amount:      value,
		Status:      model.Status(row.Status),
		Disputed:    row.Disputed,
		CreatedAt:   gRepo.TimeOf(row.CreatedAt),
		UpdatedAt:   gRepo.TimeOf(row.UpdatedAt),
	}, nil
}

type repositoryImpl struct {
	bookings   *gRepo.Arena[model.Booking]
	byTraveler *gRepo.Index[common.Address]
	byGuide    *gRepo.Index[common.Address]
}

func New() Booking {
	return &repositoryImpl{
		bookings:   gRepo.NewArena[model.Booking](),
		byTraveler: gRepo.NewIndex[common.Address](),
		byGuide:    gRepo.NewIndex[common.Address](),
	}
}

func (r *repositoryImpl) Insert(j gRepo.Journal, booking model.Booking) uint64 {
	booking.ID = uint64(r.bookings.Len())

	id := r.bookings.Append(j, booking.Clone())
	r.byTraveler.Add(j, booking.Traveler, id)
	r.byGuide.Add(j, booking.Guide, id)
	j.Stage(toRow(booking))

	return id
}

func (r *repositoryImpl) Get(id uint64) (model.Booking, bool) {
	booking, ok := r.bookings.Get(id)
	if !ok {
		return model.Booking{}, false
	}

	return booking.Clone(), true
}

func (r *repositoryImpl) Update(j gRepo.Journal, booking model.Booking) bool {
	if !r.bookings.Put(j, booking.ID, booking.Clone()) {
		return false
	}

	j.Stage(toRow(booking))

	return true
}

func (r *repositoryImpl) TravelerBookings(traveler common.Address) []uint64 {
	return r.byTraveler.Get(traveler)
}

func (r *repositoryImpl) GuideBookings(guide common.Address) []uint64 {
	return r.byGuide.Get(guide)
}

func (r *repositoryImpl) Count() int {
	return r.bookings.Len()
}

func (r *repositoryImpl) Load(ctx context.Context, src gRepo.Source) error {
	var rows []bookingRow
	if err := src.SelectAll(ctx, tableName, &rows); err != nil {
		return err
	}

	if err := gRepo.Ordered(rows, func(row bookingRow) uint64 { return row.ID }); err != nil {
		return fmt.Errorf("failed to load %s: %w", tableName, err)
	}

	bookings := make([]model.Booking, 0, len(rows))

	for _, row := range rows {
		booking, err := row.model()
		if err != nil {
			return err
		}

		bookings = append(bookings, booking)
	}

	r.bookings.Reset(bookings)
	r.byTraveler.Reset()
	r.byGuide.Reset()

	for _, booking := range bookings {
		r.byTraveler.Add(gRepo.Untracked, booking.Traveler, booking.ID)
		r.byGuide.Add(gRepo.Untracked, booking.Guide, booking.ID)
	}

	return nil
}
