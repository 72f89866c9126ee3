// Package app contains application services and port definitions for the blockchain context.
package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"

	"github.com/fd1az/whitelist-dapp/business/blockchain/domain"
)

// BlockSubscriber defines the interface for subscribing to new blocks.
type BlockSubscriber interface {
	// Subscribe starts the block feed. It may be called once.
	Subscribe(ctx context.Context) (<-chan *domain.Block, error)

	// LatestBlock retrieves the most recent block.
	LatestBlock(ctx context.Context) (*domain.Block, error)

	State() domain.ConnectionState
	Mode() domain.FeedMode

	// Close stops the feed and closes the channel returned by Subscribe.
	Close() error
}

// GasOracle defines the interface for gas price information.
type GasOracle interface {
	GetGasPrice(ctx context.Context) (*domain.GasPrice, error)

	// GetGasTipCap returns the suggested EIP-1559 priority fee.
	GetGasTipCap(ctx context.Context) (*big.Int, error)

	// EstimateGas estimates msg and adds a safety margin.
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
}

// NetworkChecker reports the chain ID of the connected node.
type NetworkChecker interface {
	ChainID(ctx context.Context) (uint64, error)
}
