package dto

import (
	"traveltrust/internal/domains/dispute/model"
	"traveltrust/shared/constant"
	"traveltrust/shared/timezone"
)

type RaiseDisputeRequest struct {
	BookingID *uint64 `json:"booking_id" validate:"required"`
	Reason    string  `json:"reason"     validate:"required,max=500"`
}

type ResolveDisputeRequest struct {
	FavorTraveler *bool  `json:"favor_traveler" validate:"required"`
	Notes         string `json:"notes"          validate:"max=500"`
}

type DisputeResponse struct {
	TxID       string `json:"tx_id,omitempty"`
	ID         uint64 `json:"id"`
	BookingID  uint64 `json:"booking_id"`
	RaisedBy   string `json:"raised_by"`
	Reason     string `json:"reason"`
	Status     string `json:"status"`
	Notes      string `json:"notes,omitempty"`
	ResolvedBy string `json:"resolved_by,omitempty"`
	CreatedAt  string `json:"created_at"`
	ResolvedAt string `json:"resolved_at,omitempty"`
}

func (r *DisputeResponse) FromModel(m model.Dispute) {
	r.ID = m.ID
	r.BookingID = m.BookingID
	r.RaisedBy = m.RaisedBy.Hex()
	r.Reason = m.Reason
	r.Status = m.Status.String()
	r.Notes = m.Notes
	r.CreatedAt = timezone.Format(m.CreatedAt, constant.DateFormat)

	if m.Status != model.StatusOpen {
		r.ResolvedBy = m.ResolvedBy.Hex()
		r.ResolvedAt = timezone.Format(m.ResolvedAt, constant.DateFormat)
	}
}
