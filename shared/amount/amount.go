package amount

import (
	"math/big"
	"net/http"
	"strings"
	"traveltrust/shared/failure"

	"github.com/shopspring/decimal"
)

// Decimals is the number of wei digits in one unit of the native currency.
const Decimals = 18

var ErrInvalidAmount = &failure.Failure{Code: http.StatusBadRequest, Message: "amount must be a non-negative decimal with at most 18 fractional digits"}

// ParseEther converts a decimal string such as "0.5" into wei.
func ParseEther(value string) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return nil, ErrInvalidAmount
	}

	wei := d.Shift(Decimals)
	if wei.Sign() < 0 || !wei.Equal(wei.Truncate(0)) {
		return nil, ErrInvalidAmount
	}

	return wei.BigInt(), nil
}

// MustParseEther is ParseEther for constants and tests.
func MustParseEther(value string) *big.Int {
	wei, err := ParseEther(value)
	if err != nil {
		panic(err)
	}

	return wei
}

// FormatEther renders wei as a decimal string without trailing zeros.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}

	return decimal.NewFromBigInt(wei, -Decimals).String()
}

// IsValid reports whether value parses as a positive amount.
func IsValid(value string) bool {
	wei, err := ParseEther(value)

	return err == nil && wei.Sign() > 0
}

// Clone copies v, mapping nil to zero.
func Clone(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}

	return new(big.Int).Set(v)
}

// ParseWei reads an integer wei string as stored in the ledger tables.
func ParseWei(value string) (*big.Int, error) {
	wei, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
	if !ok || wei.Sign() < 0 {
		return nil, ErrInvalidAmount
	}

	return wei, nil
}

// Wei renders v as an integer string, mapping nil to zero.
func Wei(v *big.Int) string {
	if v == nil {
		return "0"
	}

	return v.String()
}
