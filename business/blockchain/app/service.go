package app

import (
	"context"
	"fmt"

	"github.com/fd1az/whitelist-dapp/business/blockchain/domain"
	"github.com/fd1az/whitelist-dapp/internal/apperror"
)

// BlockchainService coordinates blockchain interactions.
type BlockchainService struct {
	subscriber BlockSubscriber
	gasOracle  GasOracle
	checker    NetworkChecker
	network    domain.Network
}

// NewBlockchainService creates a new BlockchainService for the expected network.
func NewBlockchainService(subscriber BlockSubscriber, gasOracle GasOracle, checker NetworkChecker, network domain.Network) *BlockchainService {
	return &BlockchainService{
		subscriber: subscriber,
		gasOracle:  gasOracle,
		checker:    checker,
		network:    network,
	}
}

// SubscribeBlocks starts the block subscription and returns the channel.
func (s *BlockchainService) SubscribeBlocks(ctx context.Context) (<-chan *domain.Block, error) {
	return s.subscriber.Subscribe(ctx)
}

// LatestBlock returns the current head.
func (s *BlockchainService) LatestBlock(ctx context.Context) (*domain.Block, error) {
	return s.subscriber.LatestBlock(ctx)
}

// GetGasPrice retrieves the current gas price.
func (s *BlockchainService) GetGasPrice(ctx context.Context) (*domain.GasPrice, error) {
	return s.gasOracle.GetGasPrice(ctx)
}

// GasOracle exposes the oracle for transaction building.
func (s *BlockchainService) GasOracle() GasOracle {
	return s.gasOracle
}

// ConnectionState returns the current connection state.
func (s *BlockchainService) ConnectionState() domain.ConnectionState {
	return s.subscriber.State()
}

// FeedMode returns how blocks are being discovered.
func (s *BlockchainService) FeedMode() domain.FeedMode {
	return s.subscriber.Mode()
}

// FeedStatus reports whether the block feed is healthy, with a short detail.
// A feed that was never started is idle, not unhealthy.
func (s *BlockchainService) FeedStatus() (bool, string) {
	mode := s.FeedMode()
	if mode == domain.FeedNone {
		return true, "idle"
	}
	state := s.ConnectionState()
	return state != domain.StateDisconnected, fmt.Sprintf("%s via %s", state, mode)
}

// Network returns the expected network.
func (s *BlockchainService) Network() domain.Network {
	return s.network
}

// VerifyNetwork fails with CodeWrongNetwork when the node is on another chain.
// It returns the node's chain ID.
func (s *BlockchainService) VerifyNetwork(ctx context.Context) (uint64, error) {
	chainID, err := s.checker.ChainID(ctx)
	if err != nil {
		return 0, err
	}
	if !s.network.Matches(chainID) {
		return chainID, apperror.New(apperror.CodeWrongNetwork,
			apperror.WithContext(fmt.Sprintf("change the network to %s, node is on chain %d", s.network, chainID)))
	}
	return chainID, nil
}

// Close stops the block feed.
func (s *BlockchainService) Close() error {
	return s.subscriber.Close()
}
