package chain

import (
	"traveltrust/shared/failure"

	"github.com/ethereum/go-ethereum/common"
)

// Ownable holds the administrative owner of a component.
type Ownable struct {
	owner common.Address
}

func NewOwnable(owner common.Address) Ownable {
	return Ownable{owner: owner}
}

func (o *Ownable) Owner() common.Address {
	return o.owner
}

// OwnerSlot exposes the owner for Runtime.BindSlot.
func (o *Ownable) OwnerSlot() *common.Address {
	return &o.owner
}

// OnlyOwner rejects any sender but the owner with the generic forbidden failure.
func (o *Ownable) OnlyOwner(tx *Tx) error {
	if o.owner == (common.Address{}) || tx.Sender() != o.owner {
		return failure.ForbiddenError
	}

	return nil
}

func (o *Ownable) TransferOwnership(tx *Tx, newOwner common.Address) error {
	if err := o.OnlyOwner(tx); err != nil {
		return err
	}

	if newOwner == (common.Address{}) {
		return ErrInvalidAddress
	}

	tx.SetSlot(&o.owner, SlotOwner, newOwner)

	return nil
}

// SetPeer points one of the owner's trust slots at addr.
func (o *Ownable) SetPeer(tx *Tx, slot *common.Address, peer string, addr common.Address) error {
	if err := o.OnlyOwner(tx); err != nil {
		return err
	}

	if addr == (common.Address{}) {
		return ErrInvalidAddress
	}

	tx.SetSlot(slot, peer, addr)
	tx.Emit(NewPeerConfiguredEvent(tx.Self(), peer, addr))

	return nil
}
