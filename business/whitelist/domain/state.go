// Package domain contains the page state of the whitelist context and the
// decision of what the single button does.
package domain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Page copy.
const (
	Headline = "Welcome to Crypto Devs!"
	Title    = "Whitelist dApp"
	Footer   = "Made with ❤ from Crypto Devs"
)

// State is everything the page renders.
// JoinedWhitelist and Loading are only meaningful while WalletConnected.
type State struct {
	WalletConnected bool
	JoinedWhitelist bool
	Loading         bool
	NumWhitelisted  uint64

	Account   common.Address
	ChainID   uint64
	LastTx    common.Hash
	LastError string
}

// Action is what pressing the button does in a given state.
type Action int

const (
	ActionConnect Action = iota
	ActionJoin
	ActionLoading
	ActionJoined
)

// Action derives the button from the state.
func (s State) Action() Action {
	switch {
	case !s.WalletConnected:
		return ActionConnect
	case s.JoinedWhitelist:
		return ActionJoined
	case s.Loading:
		return ActionLoading
	default:
		return ActionJoin
	}
}

// Label is the button text.
func (a Action) Label() string {
	switch a {
	case ActionConnect:
		return "Connect Wallet"
	case ActionJoin:
		return "Join the Whitelist"
	case ActionLoading:
		return "Loading..."
	case ActionJoined:
		return "Thanks For Joining the Whitelist ❤"
	default:
		return ""
	}
}

// Pressable reports whether the button does anything.
func (a Action) Pressable() bool {
	return a == ActionConnect || a == ActionJoin
}

func (a Action) String() string {
	switch a {
	case ActionConnect:
		return "connect"
	case ActionJoin:
		return "join"
	case ActionLoading:
		return "loading"
	case ActionJoined:
		return "joined"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Headline is the page title.
func (s State) Headline() string {
	return Headline
}

// Description is the counter line.
func (s State) Description() string {
	return fmt.Sprintf("%d have already joined the Whitelist", s.NumWhitelisted)
}
