// Package app contains the whitelist operations and the ports they drive.
package app

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	blockchainDomain "github.com/fd1az/whitelist-dapp/business/blockchain/domain"
	walletApp "github.com/fd1az/whitelist-dapp/business/wallet/app"
	"github.com/fd1az/whitelist-dapp/business/whitelist/domain"
)

// Contract is the whitelist contract as seen through a wallet session.
type Contract interface {
	WhitelistedAddress(ctx context.Context, sess *walletApp.Session, addr common.Address) (bool, error)
	NumAddressesWhitelisted(ctx context.Context, sess *walletApp.Session) (uint64, error)

	// AddAddressToWhitelist signs and sends the join transaction without waiting.
	AddAddressToWhitelist(ctx context.Context, sess *walletApp.Session) (*types.Transaction, error)

	// WaitMined blocks until tx has a receipt; a reverted receipt is an error.
	WaitMined(ctx context.Context, sess *walletApp.Session, tx *types.Transaction) (*types.Receipt, error)
}

// WalletConnector opens node sessions, with or without a signer.
type WalletConnector interface {
	Connect(ctx context.Context, needSigner bool) (*walletApp.Session, error)
}

// ChainFeed supplies new heads and gas prices for the status bar.
type ChainFeed interface {
	SubscribeBlocks(ctx context.Context) (<-chan *blockchainDomain.Block, error)
	GetGasPrice(ctx context.Context) (*blockchainDomain.GasPrice, error)
}

// Presenter renders the page.
type Presenter interface {
	// Render receives a snapshot after every state change.
	Render(state domain.State)

	ReportError(err error)

	// ReportBlock is called per new head; gas is nil when the price lookup failed.
	ReportBlock(block *blockchainDomain.Block, gas *blockchainDomain.GasPrice)
}
