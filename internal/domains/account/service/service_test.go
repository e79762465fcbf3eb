package service_test

import (
	"context"
	"math/big"
	"testing"
	"traveltrust/config"
	"traveltrust/infras/jwt"
	"traveltrust/infras/otel/mocks"
	"traveltrust/internal/chain"
	"traveltrust/internal/domains/account/service"
	"traveltrust/shared/amount"
	"traveltrust/shared/constant"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner    = common.HexToAddress("0x0000000000000000000000000000000000000001")
	traveler = common.HexToAddress("0x00000000000000000000000000000000000000c1")
)

type roles map[common.Address]string

func (r roles) Role(addr common.Address) string {
	if role, ok := r[addr]; ok {
		return role
	}

	return constant.RoleUser
}

func newService(t *testing.T, r roles) (service.Account, *chain.Runtime, jwt.JWT) {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.AccessSecret = "a"
	cfg.JWT.RefreshSecret = "r"
	cfg.JWT.AccessExpireMin = 10
	cfg.JWT.RefreshExpireMin = 60

	rt := chain.NewRuntime()
	tokens := jwt.New(cfg)

	return service.New(rt, tokens, r, mocks.NewOtel()), rt, tokens
}

func TestDeposit(t *testing.T) {
	svc, rt, _ := newService(t, roles{})
	ctx := context.Background()

	var seen []*chain.Receipt
	rt.Subscribe(chain.EmitterFunc(func(_ context.Context, r *chain.Receipt) { seen = append(seen, r) }))

	res, err := svc.Deposit(ctx, traveler, amount.MustParseEther("1.25"))
	require.NoError(t, err)
	assert.Equal(t, "1.25", res.Balance)
	assert.NotEmpty(t, res.TxID)

	res, err = svc.Deposit(ctx, traveler, amount.MustParseEther("0.75"))
	require.NoError(t, err)
	assert.Equal(t, "2", res.Balance)
	assert.Equal(t, amount.MustParseEther("2").String(), res.BalanceWei)

	rt.Flush()
	require.Len(t, seen, 2)
	assert.Equal(t, chain.EventTypeDeposited, seen[0].Events[0].Type)

	for _, bad := range []*big.Int{nil, big.NewInt(0), big.NewInt(-1)} {
		_, err = svc.Deposit(ctx, traveler, bad)
		require.ErrorIs(t, err, service.ErrInvalidDeposit)
	}

	assert.Equal(t, "2", svc.GetBalance(ctx, traveler).Balance)
	assert.Equal(t, "0", svc.GetBalance(ctx, owner).Balance)
}

func TestIssueTokens(t *testing.T) {
	r := roles{owner: constant.RoleOwner}
	svc, _, tokens := newService(t, r)
	ctx := context.Background()

	res, err := svc.IssueTokens(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, constant.RoleOwner, res.Role)
	assert.Equal(t, owner.Hex(), res.Address)

	claims, err := tokens.ValidateToken(res.AccessToken, jwt.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, constant.RoleOwner, claims.Role)

	res, err = svc.IssueTokens(ctx, traveler)
	require.NoError(t, err)
	assert.Equal(t, constant.RoleUser, res.Role)
}

func TestRefreshTokensReResolvesRole(t *testing.T) {
	r := roles{}
	svc, _, _ := newService(t, r)
	ctx := context.Background()

	issued, err := svc.IssueTokens(ctx, traveler)
	require.NoError(t, err)
	assert.Equal(t, constant.RoleUser, issued.Role)

	r[traveler] = constant.RoleArbitrator

	refreshed, err := svc.RefreshTokens(ctx, issued.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, constant.RoleArbitrator, refreshed.Role)

	_, err = svc.RefreshTokens(ctx, issued.AccessToken)
	require.ErrorIs(t, err, service.ErrInvalidRefreshToken)
}

func TestComponentAddressesAreNotAccounts(t *testing.T) {
	svc, rt, _ := newService(t, roles{})
	ctx := context.Background()

	component := chain.ModuleAddress("test/component")
	require.NoError(t, rt.Deploy(component, struct{}{}))

	tests := []struct {
		name string
		call func() error
	}{
		{
			name: "issue tokens",
			call: func() error {
				_, err := svc.IssueTokens(ctx, component)

				return err
			},
		},
		{
			name: "deposit",
			call: func() error {
				_, err := svc.Deposit(ctx, component, big.NewInt(1))

				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.call(), service.ErrComponentAccount)
		})
	}

	assert.Equal(t, "0", svc.GetBalance(ctx, component).Balance)
}
