// Package wallet implements the wallet bounded context: key loading and node sessions.
package wallet

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"

	blockchainDI "github.com/fd1az/whitelist-dapp/business/blockchain/di"
	"github.com/fd1az/whitelist-dapp/business/wallet/app"
	walletDI "github.com/fd1az/whitelist-dapp/business/wallet/di"
	"github.com/fd1az/whitelist-dapp/business/wallet/infra/signer"
	"github.com/fd1az/whitelist-dapp/internal/config"
	"github.com/fd1az/whitelist-dapp/internal/di"
	"github.com/fd1az/whitelist-dapp/internal/logger"
	"github.com/fd1az/whitelist-dapp/internal/monolith"
)

// Module implements the wallet bounded context.
type Module struct{}

// RegisterServices registers the wallet connector.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, walletDI.Connector, func(sr di.ServiceRegistry) *app.Connector {
		cfg := sr.Get(monolith.ConfigKey).(*config.Config)
		log := sr.Get(monolith.LoggerKey).(logger.LoggerInterface)
		client := sr.Get(monolith.EthClientKey).(*ethclient.Client)

		var load app.SignerLoader
		if cfg.Wallet.HasSigner() {
			walletCfg := cfg.Wallet
			load = func() (app.Signer, error) { return signer.Load(walletCfg) }
		}

		return app.NewConnector(client, load, blockchainDI.GetBlockchainService(sr), log)
	})

	return nil
}

// Startup unlocks the configured key so a bad passphrase fails before the page opens.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	connector := walletDI.GetConnector(mono.Services())

	if !connector.Configured() {
		log.Warn(ctx, "no wallet configured, running read-only")
		return nil
	}

	if _, err := connector.Unlock(); err != nil {
		return err
	}

	account := connector.Account()
	log.Info(ctx, "wallet module started", "account", account.Address.Hex(), "source", account.Source)
	return nil
}
