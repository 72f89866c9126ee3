// Package whitelist implements the whitelist bounded context: the page state
// and the contract it reads and joins.
package whitelist

import (
	"context"

	blockchainDI "github.com/fd1az/whitelist-dapp/business/blockchain/di"
	walletDI "github.com/fd1az/whitelist-dapp/business/wallet/di"
	"github.com/fd1az/whitelist-dapp/business/whitelist/app"
	whitelistDI "github.com/fd1az/whitelist-dapp/business/whitelist/di"
	"github.com/fd1az/whitelist-dapp/business/whitelist/infra"
	"github.com/fd1az/whitelist-dapp/business/whitelist/infra/contract"
	"github.com/fd1az/whitelist-dapp/internal/apperror"
	"github.com/fd1az/whitelist-dapp/internal/config"
	"github.com/fd1az/whitelist-dapp/internal/di"
	"github.com/fd1az/whitelist-dapp/internal/logger"
	"github.com/fd1az/whitelist-dapp/internal/monolith"
	"github.com/fd1az/whitelist-dapp/internal/ratelimit"
)

// Module implements the whitelist bounded context.
type Module struct{}

// RegisterServices registers the contract binding and the page service.
func (m *Module) RegisterServices(c di.Container) error {
	if !c.Has(whitelistDI.Presenter.Name()) {
		di.RegisterToken(c, whitelistDI.Presenter, func(di.ServiceRegistry) app.Presenter {
			return infra.NewConsolePresenter(nil)
		})
	}

	di.RegisterToken(c, whitelistDI.Contract, func(sr di.ServiceRegistry) *contract.Whitelist {
		cfg := sr.Get(monolith.ConfigKey).(*config.Config)
		log := sr.Get(monolith.LoggerKey).(logger.LoggerInterface)

		limiter := ratelimit.New(cfg.Ethereum.RequestsPerSec, int(cfg.Ethereum.RequestsPerSec)+1)
		w, err := contract.New(cfg.Whitelist.ContractAddressHex(), blockchainDI.GetBlockchainService(sr).GasOracle(), limiter, log)
		if err != nil {
			panic("failed to create whitelist contract: " + err.Error())
		}
		return w
	})

	di.RegisterToken(c, whitelistDI.Service, func(sr di.ServiceRegistry) *app.Service {
		cfg := sr.Get(monolith.ConfigKey).(*config.Config)
		log := sr.Get(monolith.LoggerKey).(logger.LoggerInterface)

		svc, err := app.NewService(
			whitelistDI.GetContract(sr),
			walletDI.GetConnector(sr),
			blockchainDI.GetBlockchainService(sr),
			whitelistDI.GetPresenter(sr),
			app.Config{
				AutoConnect:         cfg.Whitelist.AutoConnect,
				RefreshOnBlock:      cfg.Whitelist.RefreshOnBlock,
				ConfirmationTimeout: cfg.Whitelist.ConfirmationTimeout,
			},
			log,
		)
		if err != nil {
			panic("failed to create whitelist service: " + err.Error())
		}
		return svc
	})

	return nil
}

// Startup checks a contract is deployed at the configured address.
// The page itself is started by the caller. On the wrong network the check
// is skipped so the page can open and report it.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	w := whitelistDI.GetContract(mono.Services())

	sess, err := walletDI.GetConnector(mono.Services()).Connect(ctx, false)
	if err != nil {
		if apperror.GetCode(err) != apperror.CodeWrongNetwork {
			return err
		}
		log.Warn(ctx, "skipping contract check on unexpected network",
			"contract", w.Address().Hex(), "error", err)
		return nil
	}

	ok, err := w.HasCode(ctx, sess)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.New(apperror.CodeContractNoCode,
			apperror.WithContext("no contract at "+w.Address().Hex()))
	}

	limit, err := w.MaxWhitelistedAddresses(ctx, sess)
	if err != nil {
		log.Warn(ctx, "could not read whitelist capacity", "error", err)
	}

	log.Info(ctx, "whitelist module started",
		"contract", w.Address().Hex(),
		"max_whitelisted", limit)
	return nil
}
