package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

const (
	EventTypeDeposited = "account.deposited"

	AttributeAccount = "account"
	AttributeAmount  = "amount"
)

// Event is a structured state change published after commit.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// Transfer records value paid out of a component's custody.
type Transfer struct {
	From   common.Address `json:"from"`
	To     common.Address `json:"to"`
	Amount *big.Int       `json:"amount"`
}

// Emitter receives committed operations in commit order.
type Emitter interface {
	Emit(ctx context.Context, receipt *Receipt)
}

// NoopEmitter discards everything.
type NoopEmitter struct{}

func (NoopEmitter) Emit(context.Context, *Receipt) {}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(ctx context.Context, receipt *Receipt)

func (f EmitterFunc) Emit(ctx context.Context, receipt *Receipt) {
	f(ctx, receipt)
}

func NewDepositedEvent(account common.Address, amount *big.Int) Event {
	return Event{
		Type: EventTypeDeposited,
		Attributes: map[string]string{
			AttributeAccount: account.Hex(),
			AttributeAmount:  amount.String(),
		},
	}
}

const (
	EventTypePeerConfigured = "admin.peerConfigured"

	AttributeComponent = "component"
	AttributePeer      = "peer"
	AttributeAddress   = "address"
)

// NewPeerConfiguredEvent records an owner pointing component at a trusted peer.
func NewPeerConfiguredEvent(component common.Address, peer string, addr common.Address) Event {
	return Event{
		Type: EventTypePeerConfigured,
		Attributes: map[string]string{
			AttributeComponent: component.Hex(),
			AttributePeer:      peer,
			AttributeAddress:   addr.Hex(),
		},
	}
}
