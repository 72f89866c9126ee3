package domain

import "fmt"

// Network identifies the chain the client is expected to talk to.
type Network struct {
	ChainID uint64
	Name    string
}

// Matches reports whether chainID belongs to this network.
func (n Network) Matches(chainID uint64) bool {
	return n.ChainID == chainID
}

func (n Network) String() string {
	if n.Name == "" {
		return fmt.Sprintf("chain %d", n.ChainID)
	}
	return fmt.Sprintf("%s (%d)", n.Name, n.ChainID)
}
