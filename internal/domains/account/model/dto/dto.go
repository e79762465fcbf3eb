package dto

import (
	"math/big"
	"traveltrust/shared/amount"

	"github.com/ethereum/go-ethereum/common"
)

type DepositRequest struct {
	Value string `json:"value" validate:"required,amount"`
}

type IssueTokensRequest struct {
	Address string `json:"address" validate:"required,eth_addr"`
}

type RefreshTokensRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type BalanceResponse struct {
	TxID       string `json:"tx_id,omitempty"`
	Address    string `json:"address"`
	Balance    string `json:"balance"`
	BalanceWei string `json:"balance_wei"`
}

func (r *BalanceResponse) From(addr common.Address, balance *big.Int) {
	balance = amount.Clone(balance)

	r.Address = addr.Hex()
	r.Balance = amount.FormatEther(balance)
	r.BalanceWei = balance.String()
}

type TokenResponse struct {
	Address      string `json:"address"`
	Role         string `json:"role"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}
