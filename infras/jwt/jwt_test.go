package jwt_test

import (
	"testing"
	"traveltrust/config"
	"traveltrust/infras/jwt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var guide = common.HexToAddress("0x00000000000000000000000000000000000000b2")

func newService(accessMin int) jwt.JWT {
	cfg := &config.Config{}
	cfg.App.Name = "traveltrust"
	cfg.JWT.AccessSecret = "access-secret"
	cfg.JWT.RefreshSecret = "refresh-secret"
	cfg.JWT.AccessExpireMin = accessMin
	cfg.JWT.RefreshExpireMin = 60

	return jwt.New(cfg)
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newService(15)

	pair, err := svc.GenerateTokenPair(guide, "user")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64(900), pair.ExpiresIn)

	claims, err := svc.ValidateToken(pair.AccessToken, jwt.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, guide.Hex(), claims.Address)
	assert.Equal(t, "user", claims.Role)

	account, err := claims.Account()
	require.NoError(t, err)
	assert.Equal(t, guide, account)
}

func TestValidateTokenRejections(t *testing.T) {
	svc := newService(15)

	pair, err := svc.GenerateTokenPair(guide, "owner")
	require.NoError(t, err)

	tests := []struct {
		name      string
		token     string
		tokenType jwt.TokenType
		wantErr   error
	}{
		{name: "refresh used as access", token: pair.RefreshToken, tokenType: jwt.AccessToken, wantErr: jwt.ErrInvalidToken},
		{name: "garbage", token: "not.a.token", tokenType: jwt.AccessToken, wantErr: jwt.ErrInvalidToken},
		{name: "unknown type", token: pair.AccessToken, tokenType: "session", wantErr: jwt.ErrUnknownTokenType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token, tt.tokenType)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExpiredToken(t *testing.T) {
	svc := newService(-1)

	pair, err := svc.GenerateTokenPair(guide, "user")
	require.NoError(t, err)

	_, err = svc.ValidateToken(pair.AccessToken, jwt.AccessToken)
	require.ErrorIs(t, err, jwt.ErrExpiredToken)
}

func TestRefreshTokens(t *testing.T) {
	svc := newService(15)

	pair, err := svc.GenerateTokenPair(guide, "arbitrator")
	require.NoError(t, err)

	refreshed, err := svc.RefreshTokens(pair.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(refreshed.AccessToken, jwt.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "arbitrator", claims.Role)
	assert.Equal(t, guide.Hex(), claims.Address)

	_, err = svc.RefreshTokens(pair.AccessToken)
	require.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{name: "bearer", header: "Bearer abc", want: "abc"},
		{name: "missing", header: "", wantErr: jwt.ErrMissingHeader},
		{name: "basic", header: "Basic abc", wantErr: jwt.ErrMalformedHeader},
		{name: "empty token", header: "Bearer ", wantErr: jwt.ErrMalformedHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := jwt.ExtractTokenFromHeader(tt.header)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
