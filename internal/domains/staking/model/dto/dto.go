package dto

import (
	"time"
	"traveltrust/internal/domains/staking/model"
	"traveltrust/shared/amount"
	"traveltrust/shared/constant"
	"traveltrust/shared/timezone"
)

type RegisterGuideRequest struct {
	Value string `json:"value" validate:"required,amount"`
}

type GuideStakeResponse struct {
	TxID           string `json:"tx_id,omitempty"`
	Guide          string `json:"guide"`
	IsRegistered   bool   `json:"is_registered"`
	StakeAmount    string `json:"stake_amount"`
	StakeAmountWei string `json:"stake_amount_wei"`
	RegisteredAt   string `json:"registered_at,omitempty"`
	UnregisteredAt string `json:"unregistered_at,omitempty"`
	WithdrawableAt string `json:"withdrawable_at,omitempty"`
}

func (r *GuideStakeResponse) FromModel(m model.GuideStake) {
	stake := amount.Clone(m.StakeAmount)

	r.Guide = m.Owner.Hex()
	r.IsRegistered = m.IsRegistered
	r.StakeAmount = amount.FormatEther(stake)
	r.StakeAmountWei = stake.String()
	r.RegisteredAt = formatTime(m.RegisteredAt)
	r.UnregisteredAt = formatTime(m.UnregisteredAt)
	r.WithdrawableAt = formatTime(m.WithdrawableAt())
}

type WithdrawStakeResponse struct {
	TxID      string `json:"tx_id"`
	Guide     string `json:"guide"`
	Amount    string `json:"amount"`
	AmountWei string `json:"amount_wei"`
}

type QualificationResponse struct {
	Guide       string `json:"guide"`
	IsQualified bool   `json:"is_qualified"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return timezone.Format(t, constant.DateFormat)
}
