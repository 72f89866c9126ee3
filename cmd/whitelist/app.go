package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fd1az/whitelist-dapp/business/blockchain"
	blockchainDI "github.com/fd1az/whitelist-dapp/business/blockchain/di"
	"github.com/fd1az/whitelist-dapp/business/wallet"
	walletDI "github.com/fd1az/whitelist-dapp/business/wallet/di"
	"github.com/fd1az/whitelist-dapp/business/whitelist"
	whitelistDI "github.com/fd1az/whitelist-dapp/business/whitelist/di"
	"github.com/fd1az/whitelist-dapp/internal/apm"
	"github.com/fd1az/whitelist-dapp/internal/config"
	"github.com/fd1az/whitelist-dapp/internal/di"
	"github.com/fd1az/whitelist-dapp/internal/health"
	"github.com/fd1az/whitelist-dapp/internal/logger"
	"github.com/fd1az/whitelist-dapp/internal/metrics"
	"github.com/fd1az/whitelist-dapp/internal/monolith"
)

const shutdownTimeout = 5 * time.Second

// application is what main needs from the monolith container.
type application interface {
	monolith.Monolith
	Container() di.Container
	RegisterModules(modules ...monolith.Module) error
	StartModules(ctx context.Context, modules ...monolith.Module) error
	Close() error
}

// environment holds everything built before the modules start.
type environment struct {
	cfg  *config.Config
	log  *logger.Logger
	mono application

	blockchain *blockchain.Module
	wallet     *wallet.Module
	whitelist  *whitelist.Module

	closers []func(ctx context.Context)
}

// modules returns the modules in dependency order.
func (e *environment) modules() []monolith.Module {
	return []monolith.Module{e.blockchain, e.wallet, e.whitelist}
}

// close releases resources in reverse order.
func (e *environment) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i](ctx)
	}
	_ = e.log.Sync()
}

func (e *environment) onClose(fn func(ctx context.Context)) {
	e.closers = append(e.closers, fn)
}

// setup loads config, builds the logger and the monolith, and registers the
// modules. logOut receives the JSON log; telemetry also starts the exporters.
func setup(ctx context.Context, configPath string, logOut io.Writer, telemetry bool) (*environment, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logOut, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, nil)
	log.Info(ctx, "starting whitelist dApp",
		"version", version,
		"environment", cfg.App.Environment,
		"network", cfg.Ethereum.NetworkName,
		"contract", cfg.Whitelist.ContractAddress,
	)

	env := &environment{
		cfg:        cfg,
		log:        log,
		blockchain: &blockchain.Module{},
		wallet:     &wallet.Module{},
		whitelist:  &whitelist.Module{},
	}

	if telemetry && cfg.Telemetry.Enabled {
		startTelemetry(ctx, env)
	}

	mono, err := monolith.New(ctx, cfg, log)
	if err != nil {
		env.close()
		return nil, fmt.Errorf("failed to create monolith: %w", err)
	}
	env.mono = mono
	env.onClose(func(context.Context) { _ = mono.Close() })

	return env, nil
}

// register registers module services. Call after any overrides are in the container.
func (e *environment) register() error {
	if err := e.mono.RegisterModules(e.modules()...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	e.onClose(func(context.Context) {
		_ = blockchainDI.GetBlockchainService(e.mono.Services()).Close()
	})
	e.onClose(func(ctx context.Context) {
		if err := walletDI.GetConnector(e.mono.Services()).Close(); err != nil {
			e.log.Warn(ctx, "failed to relock wallet", "error", err)
		}
	})
	return nil
}

// startTelemetry installs tracing and metrics. Failures are logged, not fatal.
func startTelemetry(ctx context.Context, env *environment) {
	cfg, log := env.cfg.Telemetry, env.log
	headers := apm.ParseHeaders(cfg.OTLPHeaders)

	tp, err := apm.NewTraceProvider(ctx, log, apm.Options{
		Provider:    apm.Provider(cfg.TraceProvider),
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.OTLPEndpoint,
		Headers:     headers,
	})
	if err != nil {
		log.Warn(ctx, "tracing disabled", "provider", cfg.TraceProvider, "error", err)
	} else {
		log.Info(ctx, "tracing initialized", "provider", cfg.TraceProvider, "endpoint", cfg.OTLPEndpoint)
		env.onClose(func(context.Context) { _ = tp.Stop() })
	}

	opts := []metrics.OptionFn{
		metrics.WithServiceName(cfg.ServiceName),
		metrics.WithPrometheus(),
	}
	if apm.Provider(cfg.TraceProvider) == apm.OTLPGRPCProvider && cfg.OTLPEndpoint != "" {
		insecure := strings.HasPrefix(cfg.OTLPEndpoint, "http://")
		opts = append(opts, metrics.WithProviderConfig(metrics.NewOtelCollectorConfig(cfg.OTLPEndpoint, headers, insecure)))
	}

	mp, registry, err := metrics.NewMetricProvider(ctx, opts...)
	if err != nil {
		log.Warn(ctx, "metrics disabled", "error", err)
		return
	}
	env.onClose(func(ctx context.Context) { _ = mp.Shutdown(ctx) })

	port := cfg.PrometheusPort
	if port == 0 {
		port = 9090
	}
	srv, err := metrics.ServePrometheusMetrics(fmt.Sprintf(":%d", port), registry)
	if err != nil {
		log.Warn(ctx, "failed to start prometheus server", "port", port, "error", err)
		return
	}
	log.Info(ctx, "prometheus metrics server started", "addr", srv.Addr().String())
	env.onClose(func(ctx context.Context) { _ = srv.Stop(ctx) })
}

// startHealth serves /health with node, feed and wallet checks.
func startHealth(ctx context.Context, env *environment) {
	if !env.cfg.Health.Enabled {
		return
	}

	srv := health.NewServer(fmt.Sprintf(":%d", env.cfg.Health.Port), version)
	services := env.mono.Services()

	srv.RegisterCheck("rpc", func(ctx context.Context) (bool, string) {
		block, err := blockchainDI.GetBlockchainService(services).LatestBlock(ctx)
		if err != nil {
			return false, err.Error()
		}
		return true, fmt.Sprintf("block %d", block.Number)
	})
	srv.RegisterCheck("feed", func(context.Context) (bool, string) {
		return blockchainDI.GetBlockchainService(services).FeedStatus()
	})
	srv.RegisterCheck("wallet", func(ctx context.Context) (bool, string) {
		if !env.cfg.Wallet.HasSigner() {
			return true, "read-only"
		}
		st := whitelistDI.GetService(services).State()
		if !st.WalletConnected {
			return false, "not connected"
		}
		return true, st.Account.Hex()
	})

	if err := srv.Start(); err != nil {
		env.log.Warn(ctx, "failed to start health server", "error", err)
		return
	}
	env.log.Info(ctx, "health server started", "addr", srv.Addr().String())
	env.onClose(func(ctx context.Context) { _ = srv.Stop(ctx) })
}

// stderrOrDiscard keeps logs off the terminal while the TUI owns it.
func stderrOrDiscard(tuiMode bool) io.Writer {
	if tuiMode {
		return io.Discard
	}
	return os.Stderr
}
