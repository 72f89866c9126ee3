// Package monolith provides the application container and module interface.
package monolith

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/fd1az/whitelist-dapp/internal/apm"
	"github.com/fd1az/whitelist-dapp/internal/config"
	"github.com/fd1az/whitelist-dapp/internal/di"
	"github.com/fd1az/whitelist-dapp/internal/httpclient"
	"github.com/fd1az/whitelist-dapp/internal/logger"
)

// Registry keys for shared infrastructure.
const (
	ConfigKey    = "config"
	LoggerKey    = "logger"
	EthClientKey = "ethClient"
	WSClientKey  = "wsClient"
)

// Monolith is the main application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	EthClient() *ethclient.Client
	// WSClient is nil when no WebSocket endpoint is configured or reachable.
	WSClient() *ethclient.Client
	Services() di.ServiceRegistry
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

type app struct {
	config    *config.Config
	logger    logger.LoggerInterface
	ethClient *ethclient.Client
	wsClient  *ethclient.Client
	container di.Container
}

// New dials the configured RPC endpoints and registers shared infrastructure.
// A WebSocket dial failure is logged and leaves WSClient nil.
func New(ctx context.Context, cfg *config.Config, log logger.LoggerInterface) (*app, error) {
	httpClient, err := httpclient.New(
		httpclient.WithName(cfg.Ethereum.NetworkName),
		httpclient.WithTimeout(cfg.Ethereum.RequestTimeout),
		httpclient.WithHeaders(apm.ParseHeaders(cfg.Ethereum.HTTPHeaders)),
		httpclient.WithUserAgent(cfg.App.Name),
	)
	if err != nil {
		return nil, fmt.Errorf("rpc http client: %w", err)
	}

	rpcClient, err := rpc.DialOptions(ctx, cfg.Ethereum.HTTPURL, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.Ethereum.HTTPURL, err)
	}
	ethClient := ethclient.NewClient(rpcClient)

	var wsClient *ethclient.Client
	if cfg.Ethereum.WebSocketURL != "" {
		wsClient, err = ethclient.DialContext(ctx, cfg.Ethereum.WebSocketURL)
		if err != nil {
			log.Warn(ctx, "websocket dial failed, falling back to polling",
				"url", cfg.Ethereum.WebSocketURL, "error", err)
			wsClient = nil
		}
	}

	container := di.NewContainer()
	container.Register(ConfigKey, cfg)
	container.Register(LoggerKey, log)
	container.Register(EthClientKey, ethClient)
	container.Register(WSClientKey, wsClient)

	return &app{
		config:    cfg,
		logger:    log,
		ethClient: ethClient,
		wsClient:  wsClient,
		container: container,
	}, nil
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *app) EthClient() *ethclient.Client {
	return a.ethClient
}

func (a *app) WSClient() *ethclient.Client {
	return a.wsClient
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *app) Container() di.Container {
	return a.container
}

// RegisterModules registers all provided modules.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules in order.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all resources.
func (a *app) Close() error {
	if a.wsClient != nil {
		a.wsClient.Close()
	}
	if a.ethClient != nil {
		a.ethClient.Close()
	}
	return nil
}
