package service

import (
	"context"
	"math/big"
	"net/http"
	"traveltrust/infras/jwt"
	"traveltrust/infras/otel"
	"traveltrust/internal/chain"
	"traveltrust/internal/domains/account/model/dto"
	"traveltrust/shared/constant"
	"traveltrust/shared/failure"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidDeposit      = &failure.Failure{Code: http.StatusBadRequest, Message: "Deposit must be positive"}
	ErrInvalidRefreshToken = &failure.Failure{Code: http.StatusUnauthorized, Message: "Invalid refresh token"}
	ErrComponentAccount    = &failure.Failure{Code: http.StatusBadRequest, Message: "Component addresses cannot act as accounts"}
)

// Roles resolves the privileges an address currently holds.
type Roles interface {
	Role(addr common.Address) string
}

// Account exposes native balances, test funding and token issuance for
// account holders.
type Account interface {
	GetBalance(ctx context.Context, addr common.Address) dto.BalanceResponse
	Deposit(ctx context.Context, addr common.Address, value *big.Int) (dto.BalanceResponse, error)
	IssueTokens(ctx context.Context, addr common.Address) (dto.TokenResponse, error)
	RefreshTokens(ctx context.Context, refreshToken string) (dto.TokenResponse, error)
}

type serviceImpl struct {
	rt    *chain.Runtime
	jwt   jwt.JWT
	roles Roles
	otel  otel.Otel
}

func New(rt *chain.Runtime, jwt jwt.JWT, roles Roles, otel otel.Otel) Account {
	return &serviceImpl{
		rt:    rt,
		jwt:   jwt,
		roles: roles,
		otel:  otel,
	}
}

func (s *serviceImpl) GetBalance(ctx context.Context, addr common.Address) (res dto.BalanceResponse) {
	_, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetBalance")
	defer scope.End()

	res.From(addr, s.rt.BalanceOf(addr))

	return res
}

func (s *serviceImpl) Deposit(ctx context.Context, addr common.Address, value *big.Int) (res dto.BalanceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Deposit")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if value == nil || value.Sign() <= 0 {
		return res, ErrInvalidDeposit
	}

	if s.rt.IsComponent(addr) {
		return res, ErrComponentAccount
	}

	receipt, err := s.rt.Fund(ctx, addr, value)
	if err != nil {
		log.Error().Err(err).Str("account", addr.Hex()).Msg("failed to fund account")

		return res, err //nolint:wrapcheck
	}

	res.From(addr, s.rt.BalanceOf(addr))
	res.TxID = receipt.TxID

	return res, nil
}

func (s *serviceImpl) IssueTokens(ctx context.Context, addr common.Address) (res dto.TokenResponse, err error) {
	_, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".IssueTokens")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if s.rt.IsComponent(addr) {
		return res, ErrComponentAccount
	}

	role := s.roles.Role(addr)

	pair, err := s.jwt.GenerateTokenPair(addr, role)
	if err != nil {
		log.Error().Err(err).Str("account", addr.Hex()).Msg("failed to issue tokens")

		return res, failure.InternalError(err) //nolint:wrapcheck
	}

	return tokenResponse(addr, role, pair), nil
}

// RefreshTokens re-resolves the role so a changed arbitrator or owner takes
// effect on the next refresh.
func (s *serviceImpl) RefreshTokens(ctx context.Context, refreshToken string) (res dto.TokenResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RefreshTokens")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	claims, err := s.jwt.ValidateToken(refreshToken, jwt.RefreshToken)
	if err != nil {
		return res, ErrInvalidRefreshToken
	}

	addr, err := claims.Account()
	if err != nil {
		return res, ErrInvalidRefreshToken
	}

	return s.IssueTokens(ctx, addr)
}

func tokenResponse(addr common.Address, role string, pair *jwt.TokenPair) dto.TokenResponse {
	return dto.TokenResponse{
		Address:      addr.Hex(),
		Role:         role,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
	}
}
