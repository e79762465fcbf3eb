package service

import (
	"fmt"
	"traveltrust/internal/chain"
	"traveltrust/internal/domains/escrow/model"

	"github.com/ethereum/go-ethereum/common"
)

// Every transition below updates the booking before any value leaves
// custody, so a receiver reentering the ledger sees the final status.

func (s *serviceImpl) CreateBookingTx(tx *chain.Tx, guide common.Address, description string) (uint64, error) {
	traveler := tx.Sender()
	value := tx.Value()

	if value.Sign() == 0 {
		return 0, ErrPaymentRequired
	}

	qualified := false
	err := chain.Call(tx, s.staking, func(sub *chain.Tx, staking Qualifier) error {
		qualified = staking.IsQualifiedTx(sub, guide)

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to check guide qualification: %w", err)
	}

	if !qualified {
		return 0, ErrGuideNotQualified
	}

	if traveler == guide {
		return 0, ErrCannotBookSelf
	}

	if len(description) > model.MaxDescriptionLength {
		return 0, ErrDescriptionTooLong
	}

	booking := model.Booking{
		Traveler:    traveler,
		Guide:       guide,
		Description: description,
		Amount:      value,
		Status:      model.StatusPending,
		CreatedAt:   tx.Now(),
		UpdatedAt:   tx.Now(),
	}
	booking.ID = s.repo.Insert(tx, booking)

	tx.Emit(model.NewBookingCreatedEvent(booking))

	return booking.ID, nil
}

func (s *serviceImpl) ConfirmBookingTx(tx *chain.Tx, id uint64) error {
	booking, err := s.BookingTx(tx, id)
	if err != nil {
		return err
	}

	if tx.Sender() != booking.Guide {
		return ErrNotTheGuide
	}

	if booking.Disputed {
		return ErrBookingDisputed
	}

	if booking.Status != model.StatusPending {
		return ErrBookingNotPending
	}

	booking.Status = model.StatusConfirmed
	s.save(tx, booking)

	tx.Emit(model.NewBookingConfirmedEvent(booking))

	return nil
}

func (s *serviceImpl) CompleteBookingTx(tx *chain.Tx, id uint64) error {
	booking, err := s.BookingTx(tx, id)
	if err != nil {
		return err
	}

	if tx.Sender() != booking.Traveler {
		return ErrNotTheTraveler
	}

	if booking.Disputed {
		return ErrBookingDisputed
	}

	if booking.Status != model.StatusConfirmed {
		return ErrBookingNotConfirmed
	}

	if s.reputation == (common.Address{}) {
		return ErrReputationNotSet
	}

	booking.Status = model.StatusCompleted
	s.save(tx, booking)

	err = chain.Call(tx, s.reputation, func(sub *chain.Tx, reputation CompletionRecorder) error {
		return reputation.RecordCompletionTx(sub, booking.Guide)
	})
	if err != nil {
		return fmt.Errorf("failed to credit guide reputation: %w", err)
	}

	tx.Emit(model.NewBookingCompletedEvent(booking))

	return s.payout(tx, booking.Guide, booking)
}

func (s *serviceImpl) CancelBookingTx(tx *chain.Tx, id uint64) error {
	booking, err := s.BookingTx(tx, id)
	if err != nil {
		return err
	}

	if tx.Sender() != booking.Traveler {
		return ErrNotTheTraveler
	}

	if booking.Disputed {
		return ErrBookingDisputed
	}

	if booking.Status != model.StatusPending {
		return ErrOnlyPendingCancellable
	}

	booking.Status = model.StatusCancelled
	s.save(tx, booking)

	tx.Emit(model.NewBookingCancelledEvent(booking))

	return s.payout(tx, booking.Traveler, booking)
}

func (s *serviceImpl) BookingTx(_ *chain.Tx, id uint64) (model.Booking, error) {
	booking, found := s.repo.Get(id)
	if !found {
		return model.Booking{}, ErrBookingNotFound
	}

	return booking, nil
}

// MarkDisputedTx freezes a booking that still holds funds until the dispute
// arbiter settles it.
func (s *serviceImpl) MarkDisputedTx(tx *chain.Tx, id uint64) error {
	if err := s.onlyDisputeArbiter(tx); err != nil {
		return err
	}

	booking, err := s.BookingTx(tx, id)
	if err != nil {
		return err
	}

	if !booking.Status.HoldsFunds() {
		return ErrBookingNotDisputable
	}

	if booking.Disputed {
		return ErrBookingDisputed
	}

	booking.Disputed = true
	s.save(tx, booking)

	tx.Emit(model.NewBookingDisputedEvent(booking))

	return nil
}

// SettleDisputeTx releases the full amount to the winner. A traveler win
// ends the booking CANCELLED, a guide win ends it COMPLETED.
func (s *serviceImpl) SettleDisputeTx(tx *chain.Tx, id uint64, favorTraveler bool) error {
	if err := s.onlyDisputeArbiter(tx); err != nil {
		return err
	}

	booking, err := s.BookingTx(tx, id)
	if err != nil {
		return err
	}

	if !booking.Disputed || !booking.Status.HoldsFunds() {
		return ErrBookingNotDisputable
	}

	winner := booking.Guide
	booking.Status = model.StatusCompleted

	if favorTraveler {
		winner = booking.Traveler
		booking.Status = model.StatusCancelled
	}

	s.save(tx, booking)

	tx.Emit(model.NewDisputeSettledEvent(booking, winner))

	return s.payout(tx, winner, booking)
}

func (s *serviceImpl) SetReputationLedgerTx(tx *chain.Tx, reputation common.Address) error {
	return s.SetPeer(tx, &s.reputation, model.PeerReputation, reputation)
}

func (s *serviceImpl) SetDisputeArbiterTx(tx *chain.Tx, dispute common.Address) error {
	return s.SetPeer(tx, &s.dispute, model.PeerDispute, dispute)
}

func (s *serviceImpl) onlyDisputeArbiter(tx *chain.Tx) error {
	if s.dispute == (common.Address{}) || tx.Sender() != s.dispute {
		return ErrOnlyDisputeArbiter
	}

	return nil
}

func (s *serviceImpl) save(tx *chain.Tx, booking model.Booking) {
	booking.UpdatedAt = tx.Now()
	s.repo.Update(tx, booking)
}

func (s *serviceImpl) payout(tx *chain.Tx, to common.Address, booking model.Booking) error {
	if err := tx.Transfer(to, booking.Amount); err != nil {
		return fmt.Errorf("failed to release booking %d: %w", booking.ID, err)
	}

	return nil
}
