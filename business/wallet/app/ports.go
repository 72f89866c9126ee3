// Package app contains application services and port definitions for the wallet context.
package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/fd1az/whitelist-dapp/business/wallet/domain"
)

// Backend is the node surface a session exposes to contract bindings.
// *ethclient.Client satisfies it, and so does bind.DeployBackend.
type Backend interface {
	bind.ContractCaller
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Signer holds an unlocked key.
type Signer interface {
	Account() domain.Account
	TransactOpts(chainID *big.Int) (*bind.TransactOpts, error)
}

// NetworkVerifier checks the node is on the expected chain and returns its ID.
type NetworkVerifier interface {
	VerifyNetwork(ctx context.Context) (uint64, error)
}
