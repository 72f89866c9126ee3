package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	blockchainDI "github.com/fd1az/whitelist-dapp/business/blockchain/di"
	walletDI "github.com/fd1az/whitelist-dapp/business/wallet/di"
	whitelistApp "github.com/fd1az/whitelist-dapp/business/whitelist/app"
	whitelistDI "github.com/fd1az/whitelist-dapp/business/whitelist/di"
	"github.com/fd1az/whitelist-dapp/business/whitelist/domain"
	"github.com/fd1az/whitelist-dapp/business/whitelist/infra"
	"github.com/fd1az/whitelist-dapp/internal/di"
)

func newStatusCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the whitelist counter and whether the wallet has joined",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), opts, io.Discard, func(ctx context.Context, env *environment, svc *whitelistApp.Service) error {
				// Without a wallet the counter is still readable.
				if env.cfg.Wallet.HasSigner() {
					if err := svc.ConnectWallet(ctx); err != nil {
						return err
					}
				} else if err := svc.GetNumberOfWhitelisted(ctx); err != nil {
					return err
				}

				printStatus(cmd.OutOrStdout(), env, svc.State())
				return nil
			})
		},
	}
}

func newJoinCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "join",
		Short: "Add the configured wallet to the whitelist and wait for the receipt",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return runOnce(cmd.Context(), opts, out, func(ctx context.Context, env *environment, svc *whitelistApp.Service) error {
				if err := svc.ConnectWallet(ctx); err != nil {
					return err
				}
				if svc.State().JoinedWhitelist {
					fmt.Fprintln(out, "already on the whitelist")
					return nil
				}
				if err := svc.AddAddressToWhitelist(ctx); err != nil {
					return err
				}
				printStatus(out, env, svc.State())
				return nil
			})
		},
	}
}

// runOnce starts the modules with a console presenter writing to pageOut,
// runs fn, and tears everything down. Logs go to stderr.
func runOnce(ctx context.Context, opts *rootOptions, pageOut io.Writer, fn func(context.Context, *environment, *whitelistApp.Service) error) error {
	env, err := setup(ctx, opts.configPath, os.Stderr, false)
	if err != nil {
		return err
	}
	defer env.close()

	presenter := infra.NewConsolePresenter(pageOut)
	di.RegisterToken(env.mono.Container(), whitelistDI.Presenter, func(di.ServiceRegistry) whitelistApp.Presenter {
		return presenter
	})
	if err := env.register(); err != nil {
		return err
	}
	if err := env.mono.StartModules(ctx, env.modules()...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	return fn(ctx, env, whitelistDI.GetService(env.mono.Services()))
}

func printStatus(out io.Writer, env *environment, st domain.State) {
	services := env.mono.Services()
	network := blockchainDI.GetBlockchainService(services).Network()

	fmt.Fprintln(out, domain.Title)
	fmt.Fprintf(out, "  network:  %s\n", network.String())
	fmt.Fprintf(out, "  contract: %s\n", whitelistDI.GetContract(services).Address().Hex())

	if st.WalletConnected {
		account := walletDI.GetConnector(services).Account()
		fmt.Fprintf(out, "  account:  %s (%s)\n", st.Account.Hex(), account.Source)
		joined := "no"
		if st.JoinedWhitelist {
			joined = "yes"
		}
		fmt.Fprintf(out, "  joined:   %s\n", joined)
	} else {
		fmt.Fprintln(out, "  account:  not connected")
	}

	fmt.Fprintf(out, "  %s\n", st.Description())
	if st.LastTx != (common.Hash{}) {
		fmt.Fprintf(out, "  last tx:  %s\n", st.LastTx.Hex())
	}
}
