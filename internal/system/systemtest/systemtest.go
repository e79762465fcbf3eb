// Package systemtest assembles an in-memory trust layer for tests.
package systemtest

import (
	"context"
	"testing"
	"traveltrust/config"
	"traveltrust/infras/otel/mocks"
	"traveltrust/internal/chain"
	disputeRepo "traveltrust/internal/domains/dispute/repository"
	disputeService "traveltrust/internal/domains/dispute/service"
	escrowRepo "traveltrust/internal/domains/escrow/repository"
	escrowService "traveltrust/internal/domains/escrow/service"
	reputationRepo "traveltrust/internal/domains/reputation/repository"
	reputationService "traveltrust/internal/domains/reputation/service"
	stakingRepo "traveltrust/internal/domains/staking/repository"
	stakingService "traveltrust/internal/domains/staking/service"
	"traveltrust/internal/system"
	"traveltrust/shared/amount"
	"traveltrust/shared/repository"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

var (
	Owner    = common.HexToAddress("0x0000000000000000000000000000000000000001")
	Traveler = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	Guide    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	Other    = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

// New returns a linked system owned by Owner with Traveler, Guide and Other
// each holding 10 ether. The ledger is persisted to an in-memory store.
func New(t *testing.T) *system.System {
	t.Helper()

	ctx := context.Background()

	sys := Restart(t, repository.NewMemoryStore())

	for _, addr := range []common.Address{Traveler, Guide, Other} {
		_, err := sys.Runtime.Fund(ctx, addr, amount.MustParseEther("10"))
		require.NoError(t, err)
	}

	return sys
}

// Restart assembles a system over store the way a fresh process would.
func Restart(t *testing.T, store chain.Storage) *system.System {
	t.Helper()

	cfg := &config.Config{}
	cfg.Trust.OwnerAddress = Owner.Hex()

	rt := chain.NewRuntime()
	rt.UseStorage(store)

	staking, err := stakingService.New(rt, stakingRepo.New(), mocks.NewOtel())
	require.NoError(t, err)

	escrow, err := escrowService.New(rt, escrowRepo.New(), staking, cfg, mocks.NewOtel())
	require.NoError(t, err)

	reputation, err := reputationService.New(rt, reputationRepo.New(), cfg, mocks.NewOtel())
	require.NoError(t, err)

	dispute, err := disputeService.New(rt, disputeRepo.New(), cfg, mocks.NewOtel())
	require.NoError(t, err)

	sys, err := system.New(rt, staking, escrow, reputation, dispute, cfg)
	require.NoError(t, err)

	return sys
}

// RegisterGuide stakes the minimum for Guide.
func RegisterGuide(t *testing.T, sys *system.System) {
	t.Helper()

	_, err := sys.Staking.RegisterGuide(context.Background(), Guide, amount.MustParseEther("0.1"))
	require.NoError(t, err)
}
