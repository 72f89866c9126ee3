// Package blockchain implements the blockchain bounded context for Ethereum integration.
package blockchain

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fd1az/whitelist-dapp/business/blockchain/app"
	blockchainDI "github.com/fd1az/whitelist-dapp/business/blockchain/di"
	"github.com/fd1az/whitelist-dapp/business/blockchain/domain"
	"github.com/fd1az/whitelist-dapp/business/blockchain/infra/ethereum"
	"github.com/fd1az/whitelist-dapp/internal/apperror"
	"github.com/fd1az/whitelist-dapp/internal/config"
	"github.com/fd1az/whitelist-dapp/internal/di"
	"github.com/fd1az/whitelist-dapp/internal/logger"
	"github.com/fd1az/whitelist-dapp/internal/monolith"
)

// Module implements the blockchain bounded context.
type Module struct{}

// RegisterServices registers all blockchain services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, blockchainDI.BlockSubscriber, func(sr di.ServiceRegistry) app.BlockSubscriber {
		cfg := sr.Get(monolith.ConfigKey).(*config.Config)
		log := sr.Get(monolith.LoggerKey).(logger.LoggerInterface)
		httpClient := sr.Get(monolith.EthClientKey).(*ethclient.Client)

		// A nil *ethclient.Client must not become a non-nil interface.
		var ws ethereum.HeadSubscriber
		if wsClient := sr.Get(monolith.WSClientKey).(*ethclient.Client); wsClient != nil {
			ws = wsClient
		}

		sub, err := ethereum.NewSubscriber(ethereum.DefaultSubscriberConfig(cfg.Ethereum.PollInterval), httpClient, ws, log)
		if err != nil {
			panic("failed to create subscriber: " + err.Error())
		}
		return sub
	})

	di.RegisterToken(c, blockchainDI.GasOracle, func(sr di.ServiceRegistry) app.GasOracle {
		cfg := sr.Get(monolith.ConfigKey).(*config.Config)
		log := sr.Get(monolith.LoggerKey).(logger.LoggerInterface)
		client := sr.Get(monolith.EthClientKey).(*ethclient.Client)

		oracle, err := ethereum.NewGasOracle(ethereum.DefaultGasOracleConfig(cfg.Ethereum.MaxGasPriceWei()), client, log)
		if err != nil {
			panic("failed to create gas oracle: " + err.Error())
		}
		return oracle
	})

	di.RegisterToken(c, blockchainDI.NetworkChecker, func(sr di.ServiceRegistry) app.NetworkChecker {
		return ethereum.NewNetworkChecker(sr.Get(monolith.EthClientKey).(*ethclient.Client))
	})

	di.RegisterToken(c, blockchainDI.BlockchainService, func(sr di.ServiceRegistry) *app.BlockchainService {
		cfg := sr.Get(monolith.ConfigKey).(*config.Config)
		network := domain.Network{ChainID: cfg.Ethereum.ChainID, Name: cfg.Ethereum.NetworkName}

		return app.NewBlockchainService(
			blockchainDI.GetBlockSubscriber(sr),
			blockchainDI.GetGasOracle(sr),
			blockchainDI.GetNetworkChecker(sr),
			network,
		)
	})

	return nil
}

// Startup verifies the node is on the configured network.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	svc := blockchainDI.GetBlockchainService(mono.Services())

	chainID, err := svc.VerifyNetwork(ctx)
	if err != nil {
		// Wrong network is reported on connect, not at startup.
		if apperror.GetCode(err) != apperror.CodeWrongNetwork {
			return err
		}
		log.Warn(ctx, "node is on an unexpected network", "chain_id", chainID, "expected", svc.Network().String())
	}

	log.Info(ctx, "blockchain module started", "network", svc.Network().String(), "chain_id", chainID)
	return nil
}
