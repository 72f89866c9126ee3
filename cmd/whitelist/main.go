// Package main is the entry point for the whitelist dApp client.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fd1az/whitelist-dapp/internal/apperror"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

type rootOptions struct {
	configPath string
	cliMode    bool
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "whitelist",
		Short:         "Join the Crypto Devs whitelist from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// TUI is the default, CLI is for debugging
			return runPage(cmd.Context(), opts, !opts.cliMode)
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to configuration file")
	rootCmd.Flags().BoolVar(&opts.cliMode, "cli", false, "Run in CLI mode with logs (no TUI)")

	rootCmd.AddCommand(newStatusCommand(opts))
	rootCmd.AddCommand(newJoinCommand(opts))
	rootCmd.AddCommand(newVersionCommand())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", apperror.UserMessage(err))
		stop()
		os.Exit(apperror.ExitCode(err))
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "whitelist-dapp %s (commit: %s, built: %s)\n", version, commit, buildDate)
		},
	}
}
