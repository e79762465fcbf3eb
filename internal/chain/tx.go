package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"
	"traveltrust/shared/repository"

	"github.com/ethereum/go-ethereum/common"
)

const maxCallDepth = 16

// Tx is the view a component gets of the operation it is executing.
type Tx struct {
	ctx     context.Context
	rt      *Runtime
	journal *journal
	receipt *Receipt
	sender  common.Address
	self    common.Address
	value   *big.Int
	now     time.Time
	depth   int
}

func (tx *Tx) Context() context.Context {
	return tx.ctx
}

// Sender is the immediate caller: an end user for a top level operation, or
// the calling component for a nested one.
func (tx *Tx) Sender() common.Address {
	return tx.sender
}

// Self is the address of the component currently executing.
func (tx *Tx) Self() common.Address {
	return tx.self
}

// Value is the amount attached to the call, already held by Self.
func (tx *Tx) Value() *big.Int {
	return new(big.Int).Set(tx.value)
}

func (tx *Tx) Now() time.Time {
	return tx.now
}

func (tx *Tx) TxID() string {
	return tx.receipt.TxID
}

// Emit records an event published once the operation commits.
func (tx *Tx) Emit(event Event) {
	tx.receipt.Events = append(tx.receipt.Events, event)
}

// OnRevert registers an undo step run if the operation fails.
func (tx *Tx) OnRevert(undo func()) {
	tx.journal.append(undo)
}

// Stage queues row to be written when the operation commits.
func (tx *Tx) Stage(row repository.Row) {
	tx.journal.stage(row)
}

// SetSlot stores addr in slot and records it as the name setting of Self.
func (tx *Tx) SetSlot(slot *common.Address, name string, addr common.Address) {
	Store(tx, slot, addr)
	tx.Stage(settingRecord(tx.self, name, addr))
}

// BalanceOf reads a balance inside the operation.
func (tx *Tx) BalanceOf(addr common.Address) *big.Int {
	return new(big.Int).Set(tx.rt.balance(addr))
}

// Transfer pays amount out of the custody of Self. Receiver hooks of the
// recipient run before Transfer returns.
func (tx *Tx) Transfer(to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	if err := tx.move(tx.self, to, amount); err != nil {
		return err
	}

	tx.receipt.Transfers = append(tx.receipt.Transfers, Transfer{
		From:   tx.self,
		To:     to,
		Amount: new(big.Int).Set(amount),
	})

	receiver, ok := tx.rt.receivers[to]
	if !ok {
		return nil
	}

	sub, err := tx.derive(tx.self, to)
	if err != nil {
		return err
	}

	return receiver(sub, new(big.Int).Set(amount))
}

// Call runs fn against the component deployed at to. Inside fn the sender is
// the calling component.
func Call[T any](tx *Tx, to common.Address, fn func(sub *Tx, contract T) error) error {
	contract, ok := tx.rt.contracts[to].(T)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoContract, to.Hex())
	}

	sub, err := tx.derive(tx.self, to)
	if err != nil {
		return err
	}

	return fn(sub, contract)
}

// Store assigns value to slot and restores the previous value on revert.
func Store[T any](tx *Tx, slot *T, value T) {
	prev := *slot
	tx.OnRevert(func() {
		*slot = prev
	})

	*slot = value
}

func (tx *Tx) derive(sender, self common.Address) (*Tx, error) {
	if tx.depth+1 > maxCallDepth {
		return nil, ErrCallDepth
	}

	return &Tx{
		ctx:     tx.ctx,
		rt:      tx.rt,
		journal: tx.journal,
		receipt: tx.receipt,
		sender:  sender,
		self:    self,
		value:   new(big.Int),
		now:     tx.now,
		depth:   tx.depth + 1,
	}, nil
}

func (tx *Tx) move(from, to common.Address, amount *big.Int) error {
	fromBalance := tx.rt.balance(from)
	if fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}

	tx.setBalance(from, new(big.Int).Sub(fromBalance, amount))
	tx.setBalance(to, new(big.Int).Add(tx.rt.balance(to), amount))

	return nil
}

func (tx *Tx) setBalance(addr common.Address, value *big.Int) {
	prev, had := tx.rt.balances[addr]
	tx.journal.append(func() {
		if had {
			tx.rt.balances[addr] = prev

			return
		}

		delete(tx.rt.balances, addr)
	})

	tx.rt.balances[addr] = value
	tx.journal.stage(balanceRecord(addr, value))
}
