package model

import (
	"strconv"
	"time"
	"traveltrust/internal/chain"

	"github.com/ethereum/go-ethereum/common"
)

const (
	EntityName = "reputation"
	ModuleName = "traveltrust/reputation"

	CompletionReward uint64 = 5
	DisputePenalty   uint64 = 10

	PeerEscrow  = "escrow"
	PeerDispute = "dispute"
)

const (
	EventTypeCompletionRecorded = "reputation.completionRecorded"
	EventTypeDisputeRecorded    = "reputation.disputeRecorded"

	AttributeGuide             = "guide"
	AttributeScore             = "score"
	AttributeCompletedBookings = "completedBookings"
)

// Record is created lazily; a guide with no record has score 0.
type Record struct {
	Guide             common.Address
	Score             uint64
	CompletedBookings uint64
	UpdatedAt         time.Time
}

// Penalize lowers the score, saturating at zero.
func (r *Record) Penalize(points uint64) {
	if points >= r.Score {
		r.Score = 0

		return
	}

	r.Score -= points
}

func NewCompletionRecordedEvent(rec Record) chain.Event {
	return chain.Event{
		Type: EventTypeCompletionRecorded,
		Attributes: map[string]string{
			AttributeGuide:             rec.Guide.Hex(),
			AttributeScore:             strconv.FormatUint(rec.Score, 10),
			AttributeCompletedBookings: strconv.FormatUint(rec.CompletedBookings, 10),
		},
	}
}

func NewDisputeRecordedEvent(rec Record) chain.Event {
	return chain.Event{
		Type: EventTypeDisputeRecorded,
		Attributes: map[string]string{
			AttributeGuide: rec.Guide.Hex(),
			AttributeScore: strconv.FormatUint(rec.Score, 10),
		},
	}
}
