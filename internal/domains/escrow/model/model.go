package model

import (
	"math/big"
	"strconv"
	"time"
	"traveltrust/internal/chain"
	"traveltrust/shared/amount"

	"github.com/ethereum/go-ethereum/common"
)

const (
	EntityName = "booking"
	ModuleName = "traveltrust/escrow"

	MaxDescriptionLength = 280

	PeerReputation = "reputation"
	PeerDispute    = "dispute"
)

const (
	EventTypeBookingCreated   = "escrow.bookingCreated"
	EventTypeBookingConfirmed = "escrow.bookingConfirmed"
	EventTypeBookingCompleted = "escrow.bookingCompleted"
	EventTypeBookingCancelled = "escrow.bookingCancelled"
	EventTypeBookingDisputed  = "escrow.bookingDisputed"
	EventTypeDisputeSettled   = "escrow.disputeSettled"

	AttributeBookingID = "bookingId"
	AttributeTraveler  = "traveler"
	AttributeGuide     = "guide"
	AttributeAmount    = "amount"
	AttributeWinner    = "winner"
)

type Status uint8

const (
	StatusPending Status = iota
	StatusConfirmed
	StatusCompleted
	StatusCancelled
)

var statusNames = map[Status]string{
	StatusPending:   "PENDING",
	StatusConfirmed: "CONFIRMED",
	StatusCompleted: "COMPLETED",
	StatusCancelled: "CANCELLED",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}

	return "UNKNOWN"
}

// HoldsFunds reports whether the booking amount is still in escrow custody.
func (s Status) HoldsFunds() bool {
	return s == StatusPending || s == StatusConfirmed
}

type Booking struct {
	ID          uint64
	Traveler    common.Address
	Guide       common.Address
	Description string
	Amount      *big.Int
	Status      Status
	Disputed    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (b Booking) Clone() Booking {
	b.Amount = amount.Clone(b.Amount)

	return b
}

func bookingID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func NewBookingCreatedEvent(b Booking) chain.Event {
	return chain.Event{
		Type: EventTypeBookingCreated,
		Attributes: map[string]string{
			AttributeBookingID: bookingID(b.ID),
			AttributeTraveler:  b.Traveler.Hex(),
			AttributeGuide:     b.Guide.Hex(),
			AttributeAmount:    b.Amount.String(),
		},
	}
}

func NewBookingConfirmedEvent(b Booking) chain.Event {
	return chain.Event{
		Type:       EventTypeBookingConfirmed,
		Attributes: map[string]string{AttributeBookingID: bookingID(b.ID)},
	}
}

func NewBookingCompletedEvent(b Booking) chain.Event {
	return chain.Event{
		Type: EventTypeBookingCompleted,
		Attributes: map[string]string{
			AttributeBookingID: bookingID(b.ID),
			AttributeGuide:     b.Guide.Hex(),
			AttributeAmount:    b.Amount.String(),
		},
	}
}

func NewBookingCancelledEvent(b Booking) chain.Event {
	return chain.Event{
		Type: EventTypeBookingCancelled,
		Attributes: map[string]string{
			AttributeBookingID: bookingID(b.ID),
			AttributeTraveler:  b.Traveler.Hex(),
			AttributeAmount:    b.Amount.String(),
		},
	}
}

func NewBookingDisputedEvent(b Booking) chain.Event {
	return chain.Event{
		Type:       EventTypeBookingDisputed,
		Attributes: map[string]string{AttributeBookingID: bookingID(b.ID)},
	}
}

func NewDisputeSettledEvent(b Booking, winner common.Address) chain.Event {
	return chain.Event{
		Type: EventTypeDisputeSettled,
		Attributes: map[string]string{
			AttributeBookingID: bookingID(b.ID),
			AttributeWinner:    winner.Hex(),
			AttributeAmount:    b.Amount.String(),
		},
	}
}
