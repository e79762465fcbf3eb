// Package system assembles the trust layer: one runtime, the four components
// deployed on it and the peer links between them.
package system

import (
	"context"
	"fmt"
	"net/http"
	"traveltrust/config"
	"traveltrust/internal/chain"
	disputeService "traveltrust/internal/domains/dispute/service"
	escrowService "traveltrust/internal/domains/escrow/service"
	reputationService "traveltrust/internal/domains/reputation/service"
	stakingService "traveltrust/internal/domains/staking/service"
	"traveltrust/shared/constant"
	"traveltrust/shared/failure"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
)

const (
	ComponentEscrow     = "escrow"
	ComponentReputation = "reputation"
	ComponentDispute    = "dispute"

	PeerReputation = "reputation"
	PeerEscrow     = "escrow"
	PeerDispute    = "dispute"
	PeerArbitrator = "arbitrator"
)

var ErrUnknownPeer = &failure.Failure{Code: http.StatusBadRequest, Message: "Unknown component peer"}

type System struct {
	Runtime    *chain.Runtime
	Staking    stakingService.Staking
	Escrow     escrowService.Escrow
	Reputation reputationService.Reputation
	Dispute    disputeService.Dispute

	owner common.Address
}

// New loads the stored ledger, then links every peer that is still unset on
// behalf of the configured owner.
func New(
	rt *chain.Runtime,
	staking stakingService.Staking,
	escrow escrowService.Escrow,
	reputation reputationService.Reputation,
	dispute disputeService.Dispute,
	cfg *config.Config,
) (*System, error) {
	s := &System{
		Runtime:    rt,
		Staking:    staking,
		Escrow:     escrow,
		Reputation: reputation,
		Dispute:    dispute,
		owner:      common.HexToAddress(cfg.Trust.OwnerAddress),
	}

	ctx := context.Background()

	if err := rt.Restore(ctx); err != nil {
		return nil, fmt.Errorf("failed to restore trust ledger: %w", err)
	}

	if err := s.link(ctx); err != nil {
		return nil, err
	}

	log.Info().
		Str("staking", staking.Address().Hex()).
		Str("escrow", escrow.Address().Hex()).
		Str("reputation", reputation.Address().Hex()).
		Str("dispute", dispute.Address().Hex()).
		Str("arbitrator", dispute.Arbitrator().Hex()).
		Msg("Trust layer assembled")

	return s, nil
}

func (s *System) Owner() common.Address {
	return s.owner
}

func (s *System) Arbitrator() common.Address {
	return s.Dispute.Arbitrator()
}

// Role names the privileges addr holds right now. The owner wins when it is
// also the arbitrator.
func (s *System) Role(addr common.Address) string {
	switch {
	case addr == s.owner:
		return constant.RoleOwner
	case addr == s.Arbitrator():
		return constant.RoleArbitrator
	default:
		return constant.RoleUser
	}
}

// Configure points one peer slot of a component at addr. Only the owner may
// do this.
func (s *System) Configure(ctx context.Context, caller common.Address, component, peer string, addr common.Address) error {
	switch {
	case component == ComponentEscrow && peer == PeerReputation:
		return s.Escrow.SetReputationLedger(ctx, caller, addr) //nolint:wrapcheck
	case component == ComponentEscrow && peer == PeerDispute:
		return s.Escrow.SetDisputeArbiter(ctx, caller, addr) //nolint:wrapcheck
	case component == ComponentReputation && peer == PeerEscrow:
		return s.Reputation.SetEscrowLedger(ctx, caller, addr) //nolint:wrapcheck
	case component == ComponentReputation && peer == PeerDispute:
		return s.Reputation.SetDisputeArbiter(ctx, caller, addr) //nolint:wrapcheck
	case component == ComponentDispute && peer == PeerArbitrator:
		return s.Dispute.SetArbitrator(ctx, caller, addr) //nolint:wrapcheck
	case component == ComponentDispute && peer == PeerEscrow:
		return s.Dispute.SetEscrowLedger(ctx, caller, addr) //nolint:wrapcheck
	case component == ComponentDispute && peer == PeerReputation:
		return s.Dispute.SetReputationLedger(ctx, caller, addr) //nolint:wrapcheck
	default:
		return ErrUnknownPeer
	}
}

func (s *System) link(ctx context.Context) error {
	links := []struct {
		component string
		at        common.Address
		peer      string
		addr      common.Address
	}{
		{ComponentEscrow, s.Escrow.Address(), PeerReputation, s.Reputation.Address()},
		{ComponentEscrow, s.Escrow.Address(), PeerDispute, s.Dispute.Address()},
		{ComponentReputation, s.Reputation.Address(), PeerEscrow, s.Escrow.Address()},
		{ComponentReputation, s.Reputation.Address(), PeerDispute, s.Dispute.Address()},
		{ComponentDispute, s.Dispute.Address(), PeerEscrow, s.Escrow.Address()},
		{ComponentDispute, s.Dispute.Address(), PeerReputation, s.Reputation.Address()},
	}

	for _, l := range links {
		// Peers stored by an earlier run, or repointed by the owner, stay.
		if current, _ := s.Runtime.Slot(l.at, l.peer); current != (common.Address{}) {
			continue
		}

		if err := s.Configure(ctx, s.owner, l.component, l.peer, l.addr); err != nil {
			return fmt.Errorf("failed to link %s %s peer: %w", l.component, l.peer, err)
		}
	}

	return nil
}
