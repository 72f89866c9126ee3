// Package units converts between wei and human-facing ether/gwei values.
// Arithmetic stays in big.Int; decimal.Decimal is only used for display and parsing.
package units

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	gweiExp  = 9
	etherExp = 18
)

var (
	ErrNegative    = errors.New("units: negative value")
	ErrFractionWei = errors.New("units: value has sub-wei precision")
)

// ToGwei converts wei to gwei.
func ToGwei(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -gweiExp)
}

// ToEther converts wei to ether.
func ToEther(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -etherExp)
}

// FormatGwei renders wei as gwei with the given number of decimals.
func FormatGwei(wei *big.Int, places int32) string {
	return ToGwei(wei).StringFixed(places) + " gwei"
}

// FormatEther renders wei as ether with the given number of decimals.
func FormatEther(wei *big.Int, places int32) string {
	return ToEther(wei).StringFixed(places) + " ETH"
}

// ParseGwei parses a decimal gwei string ("1.5") into wei.
func ParseGwei(s string) (*big.Int, error) {
	return parse(s, gweiExp)
}

// ParseEther parses a decimal ether string ("0.01") into wei.
func ParseEther(s string) (*big.Int, error) {
	return parse(s, etherExp)
}

func parse(s string, exp int32) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	if d.IsNegative() {
		return nil, ErrNegative
	}

	wei := d.Shift(exp)
	if !wei.Equal(wei.Truncate(0)) {
		return nil, ErrFractionWei
	}
	return wei.BigInt(), nil
}
