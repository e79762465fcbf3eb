package dto

import (
	"traveltrust/internal/domains/reputation/model"
	"traveltrust/shared/constant"
	"traveltrust/shared/timezone"
)

type ReputationResponse struct {
	Guide             string `json:"guide"`
	Score             uint64 `json:"score"`
	CompletedBookings uint64 `json:"completed_bookings"`
	UpdatedAt         string `json:"updated_at,omitempty"`
}

func (r *ReputationResponse) FromModel(m model.Record) {
	r.Guide = m.Guide.Hex()
	r.Score = m.Score
	r.CompletedBookings = m.CompletedBookings

	if !m.UpdatedAt.IsZero() {
		r.UpdatedAt = timezone.Format(m.UpdatedAt, constant.DateFormat)
	}
}
