package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	whitelistApp "github.com/fd1az/whitelist-dapp/business/whitelist/app"
	whitelistDI "github.com/fd1az/whitelist-dapp/business/whitelist/di"
	"github.com/fd1az/whitelist-dapp/business/whitelist/infra"
	"github.com/fd1az/whitelist-dapp/internal/apperror"
	"github.com/fd1az/whitelist-dapp/internal/di"
	"github.com/fd1az/whitelist-dapp/pkg/ui"
)

// runPage runs the interactive page, in the TUI or as a console log.
func runPage(ctx context.Context, opts *rootOptions, tuiMode bool) error {
	env, err := setup(ctx, opts.configPath, stderrOrDiscard(tuiMode), true)
	if err != nil {
		return err
	}
	defer env.close()

	if tuiMode {
		presenter := infra.NewTUIPresenter(ui.Send)
		di.RegisterToken(env.mono.Container(), whitelistDI.Presenter, func(di.ServiceRegistry) whitelistApp.Presenter {
			return presenter
		})
	}
	if err := env.register(); err != nil {
		return err
	}
	startHealth(ctx, env)

	if tuiMode {
		return runTUI(ctx, env)
	}
	return runCLI(ctx, env)
}

func runCLI(ctx context.Context, env *environment) error {
	if err := env.mono.StartModules(ctx, env.modules()...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	if console, ok := whitelistDI.GetPresenter(env.mono.Services()).(*infra.ConsolePresenter); ok {
		console.Start()
		defer console.Stop()
	}

	svc := whitelistDI.GetService(env.mono.Services())
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start whitelist page: %w", err)
	}
	env.log.Info(ctx, "page started, waiting for blocks")

	// Wait for shutdown
	<-ctx.Done()

	env.log.Info(ctx, "shutting down")
	svc.Stop()
	return nil
}

func runTUI(ctx context.Context, env *environment) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Channel to receive the welcome-complete signal
	startSignal := make(chan struct{}, 1)
	ui.OnStartModules = func() {
		select {
		case startSignal <- struct{}{}:
		default:
		}
	}

	network := fmt.Sprintf("%s (%d)", env.cfg.Ethereum.NetworkName, env.cfg.Ethereum.ChainID)
	// The program is killed with ctx so a termination signal also closes the TUI.
	p := tea.NewProgram(ui.New(network), tea.WithAltScreen(), tea.WithContext(ctx))
	ui.Program = p

	errCh := make(chan error, 1)
	go func() {
		// Wait for welcome screen to complete
		select {
		case <-startSignal:
		case <-ctx.Done():
			errCh <- nil
			return
		}

		svc, err := startWithProgress(ctx, env)
		if err != nil {
			errCh <- err
			return
		}

		<-ctx.Done()
		svc.Stop()
		errCh <- nil
	}()

	// Run TUI (blocking) - shows immediately with welcome screen
	_, runErr := p.Run()
	cancel()

	// Wait for the page goroutine so svc.Stop runs before resources close.
	err := <-errCh
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", runErr)
	}
	return err
}

// startWithProgress starts each module while the TUI shows the steps, then
// starts the page and hands it to the UI.
func startWithProgress(ctx context.Context, env *environment) (*whitelistApp.Service, error) {
	ui.Send(ui.StartupMsg{Step: "config", Status: "done"})

	steps := []struct {
		name   string
		start  func() error
		skip   bool
		reason string
	}{
		{name: "ethereum", start: func() error { return env.mono.StartModules(ctx, env.blockchain) }},
		{
			name:   "wallet",
			start:  func() error { return env.mono.StartModules(ctx, env.wallet) },
			skip:   !env.cfg.Wallet.HasSigner(),
			reason: "no wallet configured, read-only",
		},
		{name: "contract", start: func() error { return env.mono.StartModules(ctx, env.whitelist) }},
	}

	for _, step := range steps {
		if step.skip {
			ui.Send(ui.StartupMsg{Step: step.name, Status: "skipped", Message: step.reason})
			continue
		}
		ui.Send(ui.StartupMsg{Step: step.name, Status: "connecting"})
		if err := step.start(); err != nil {
			ui.Send(ui.StartupMsg{Step: step.name, Status: "failed", Message: apperror.UserMessage(err)})
			return nil, fmt.Errorf("failed to start %s: %w", step.name, err)
		}
		ui.Send(ui.StartupMsg{Step: step.name, Status: "connected"})
	}

	svc := whitelistDI.GetService(env.mono.Services())
	if err := svc.Start(ctx); err != nil {
		return nil, err
	}
	ui.Send(ui.ReadyMsg{Actions: svc})
	return svc, nil
}
