package model

import (
	"math/big"
	"time"
	"traveltrust/internal/chain"
	"traveltrust/shared/amount"

	"github.com/ethereum/go-ethereum/common"
)

const (
	EntityName = "guide_stake"
	ModuleName = "traveltrust/staking"

	// LockupPeriod is the wait between unregistering and withdrawing collateral.
	LockupPeriod = 7 * 24 * time.Hour
)

const (
	EventTypeGuideRegistered   = "staking.guideRegistered"
	EventTypeGuideUnregistered = "staking.guideUnregistered"
	EventTypeStakeWithdrawn    = "staking.stakeWithdrawn"

	AttributeGuide          = "guide"
	AttributeAmount         = "amount"
	AttributeUnregisteredAt = "unregisteredAt"
)

var minimumStake = big.NewInt(100_000_000_000_000_000)

// MinimumStake is the collateral a guide must lock to be qualified: 0.1 of
// the native unit.
func MinimumStake() *big.Int {
	return new(big.Int).Set(minimumStake)
}

type GuideStake struct {
	Owner          common.Address
	StakeAmount    *big.Int
	IsRegistered   bool
	RegisteredAt   time.Time
	UnregisteredAt time.Time
}

func (g GuideStake) Clone() GuideStake {
	g.StakeAmount = amount.Clone(g.StakeAmount)

	return g
}

// WithdrawableAt is zero while the guide is registered or has never unregistered.
func (g GuideStake) WithdrawableAt() time.Time {
	if g.IsRegistered || g.UnregisteredAt.IsZero() {
		return time.Time{}
	}

	return g.UnregisteredAt.Add(LockupPeriod)
}

func NewGuideRegisteredEvent(guide common.Address, stake *big.Int) chain.Event {
	return chain.Event{
		Type: EventTypeGuideRegistered,
		Attributes: map[string]string{
			AttributeGuide:  guide.Hex(),
			AttributeAmount: stake.String(),
		},
	}
}

func NewGuideUnregisteredEvent(guide common.Address, at time.Time) chain.Event {
	return chain.Event{
		Type: EventTypeGuideUnregistered,
		Attributes: map[string]string{
			AttributeGuide:          guide.Hex(),
			AttributeUnregisteredAt: at.UTC().Format(time.RFC3339),
		},
	}
}

func NewStakeWithdrawnEvent(guide common.Address, stake *big.Int) chain.Event {
	return chain.Event{
		Type: EventTypeStakeWithdrawn,
		Attributes: map[string]string{
			AttributeGuide:  guide.Hex(),
			AttributeAmount: stake.String(),
		},
	}
}
