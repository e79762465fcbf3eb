package chain

import (
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// ModuleAddress derives the custody address of a component from its name.
func ModuleAddress(name string) common.Address {
	hasher := sha3.NewLegacyKeccak256()
	_, _ = hasher.Write([]byte(name))

	return common.BytesToAddress(hasher.Sum(nil)[12:])
}

// ParseAddress accepts a 0x-prefixed hex address.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, ErrInvalidAddress
	}

	return common.HexToAddress(s), nil
}
