// Package domain contains the core domain types for the blockchain context.
package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Block is the subset of an Ethereum header the client displays and reacts to.
type Block struct {
	Number    uint64
	Hash      common.Hash
	Timestamp time.Time
	GasLimit  uint64
	GasUsed   uint64
	BaseFee   *big.Int // nil before London
}

// BlockFromHeader converts a go-ethereum header.
func BlockFromHeader(h *types.Header) *Block {
	return &Block{
		Number:    h.Number.Uint64(),
		Hash:      h.Hash(),
		Timestamp: time.Unix(int64(h.Time), 0),
		GasLimit:  h.GasLimit,
		GasUsed:   h.GasUsed,
		BaseFee:   h.BaseFee,
	}
}

// ConnectionState represents the state of the block feed.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
)

// FeedMode says how new blocks are discovered.
type FeedMode string

const (
	FeedNone      FeedMode = ""
	FeedWebSocket FeedMode = "websocket"
	FeedPolling   FeedMode = "polling"
)
