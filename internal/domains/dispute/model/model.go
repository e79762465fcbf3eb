package model

import (
	"strconv"
	"time"
	"traveltrust/internal/chain"

	"github.com/ethereum/go-ethereum/common"
)

const (
	EntityName = "dispute"
	ModuleName = "traveltrust/dispute"

	// Text limits are in bytes.
	MaxReasonLength = 500
	MaxNotesLength  = 500

	PeerArbitrator = "arbitrator"
	PeerEscrow     = "escrow"
	PeerReputation = "reputation"
)

const (
	EventTypeDisputeRaised   = "dispute.raised"
	EventTypeDisputeResolved = "dispute.resolved"

	AttributeDisputeID  = "disputeId"
	AttributeBookingID  = "bookingId"
	AttributeRaisedBy   = "raisedBy"
	AttributeStatus     = "status"
	AttributeResolvedBy = "resolvedBy"
)

type Status uint8

const (
	StatusOpen Status = iota
	StatusResolvedForTraveler
	StatusResolvedForGuide
)

var statusNames = map[Status]string{
	StatusOpen:                "OPEN",
	StatusResolvedForTraveler: "RESOLVED_FOR_TRAVELER",
	StatusResolvedForGuide:    "RESOLVED_FOR_GUIDE",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}

	return "UNKNOWN"
}

// Dispute is raised once per booking by one of its parties and resolved
// once by the arbitrator.
type Dispute struct {
	ID         uint64
	BookingID  uint64
	RaisedBy   common.Address
	Reason     string
	Status     Status
	Notes      string
	ResolvedBy common.Address
	CreatedAt  time.Time
	ResolvedAt time.Time
}

// Resolve moves an open dispute to its terminal status.
func (d *Dispute) Resolve(arbitrator common.Address, favorTraveler bool, notes string, at time.Time) {
	d.Status = StatusResolvedForGuide
	if favorTraveler {
		d.Status = StatusResolvedForTraveler
	}

	d.Notes = notes
	d.ResolvedBy = arbitrator
	d.ResolvedAt = at
}

func NewDisputeRaisedEvent(d Dispute) chain.Event {
	return chain.Event{
		Type: EventTypeDisputeRaised,
		Attributes: map[string]string{
			AttributeDisputeID: strconv.FormatUint(d.ID, 10),
			AttributeBookingID: strconv.FormatUint(d.BookingID, 10),
			AttributeRaisedBy:  d.RaisedBy.Hex(),
		},
	}
}

func NewDisputeResolvedEvent(d Dispute) chain.Event {
	return chain.Event{
		Type: EventTypeDisputeResolved,
		Attributes: map[string]string{
			AttributeDisputeID:  strconv.FormatUint(d.ID, 10),
			AttributeBookingID:  strconv.FormatUint(d.BookingID, 10),
			AttributeStatus:     d.Status.String(),
			AttributeResolvedBy: d.ResolvedBy.Hex(),
		},
	}
}
