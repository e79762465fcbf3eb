// Package handlers holds request helpers shared by the domain handlers.
package handlers

import (
	"net/http"
	"strconv"
	"traveltrust/shared/constant"
	"traveltrust/shared/failure"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
)

var (
	ErrUnauthenticated = failure.Unauthorized("Authentication required")
	ErrInvalidAddress  = failure.BadRequestFromString("Invalid address")
	ErrInvalidID       = failure.BadRequestFromString("Invalid id")
)

// Caller returns the account address the request was authenticated as.
func Caller(r *http.Request) (common.Address, error) {
	addr, ok := r.Context().Value(constant.ContextKeyAddress).(common.Address)
	if !ok {
		return common.Address{}, ErrUnauthenticated
	}

	return addr, nil
}

// AddressParam parses the {address} path segment.
func AddressParam(r *http.Request) (common.Address, error) {
	raw := chi.URLParam(r, constant.RequestParamAddress)
	if !common.IsHexAddress(raw) {
		return common.Address{}, ErrInvalidAddress
	}

	return common.HexToAddress(raw), nil
}

// IDParam parses the {id} path segment.
func IDParam(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, constant.RequestParamID), 10, 64)
	if err != nil {
		return 0, ErrInvalidID
	}

	return id, nil
}
