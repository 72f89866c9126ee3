// Package domain contains the core domain types for the wallet context.
package domain

import "github.com/ethereum/go-ethereum/common"

// Source says where an account's key was loaded from.
type Source string

const (
	SourceNone       Source = "none"
	SourceKeystore   Source = "keystore"
	SourcePrivateKey Source = "private-key"
)

// Account is the user's address and the origin of its key.
type Account struct {
	Address common.Address
	Source  Source
}

// IsZero reports whether no account is set.
func (a Account) IsZero() bool {
	return a.Address == (common.Address{})
}

// Short renders the address as 0x1234...abcd.
func (a Account) Short() string {
	return ShortAddress(a.Address)
}

// ShortAddress abbreviates addr for display.
func ShortAddress(addr common.Address) string {
	h := addr.Hex()
	return h[:6] + "..." + h[len(h)-4:]
}
