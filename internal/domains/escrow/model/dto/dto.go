package dto

import (
	"traveltrust/internal/domains/escrow/model"
	"traveltrust/shared/amount"
	"traveltrust/shared/constant"
	"traveltrust/shared/timezone"
)

type CreateBookingRequest struct {
	Guide       string `json:"guide"       validate:"required,eth_addr"`
	Description string `json:"description"`
	Value       string `json:"value"       validate:"required,amount"`
}

type BookingResponse struct {
	TxID        string `json:"tx_id,omitempty"`
	ID          uint64 `json:"id"`
	Traveler    string `json:"traveler"`
	Guide       string `json:"guide"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	AmountWei   string `json:"amount_wei"`
	Status      string `json:"status"`
	Disputed    bool   `json:"disputed"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func (r *BookingResponse) FromModel(m model.Booking) {
	r.ID = m.ID
	r.Traveler = m.Traveler.Hex()
	r.Guide = m.Guide.Hex()
	r.Description = m.Description
	r.Amount = amount.FormatEther(m.Amount)
	r.AmountWei = amount.Clone(m.Amount).String()
	r.Status = m.Status.String()
	r.Disputed = m.Disputed
	r.CreatedAt = timezone.Format(m.CreatedAt, constant.DateFormat)
	r.UpdatedAt = timezone.Format(m.UpdatedAt, constant.DateFormat)
}

type BookingIDsResponse struct {
	Address    string   `json:"address"`
	BookingIDs []uint64 `json:"booking_ids"`
}
