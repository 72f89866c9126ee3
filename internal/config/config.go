// Package config provides configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"

	"github.com/fd1az/whitelist-dapp/internal/units"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Ethereum  EthereumConfig  `mapstructure:"ethereum"`
	Wallet    WalletConfig    `mapstructure:"wallet"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Health    HealthConfig    `mapstructure:"health"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// EthereumConfig holds Ethereum node configuration.
type EthereumConfig struct {
	HTTPURL         string        `mapstructure:"http_url"`
	HTTPHeaders     string        `mapstructure:"http_headers"` // "k=v,k2=v2", e.g. a provider API key
	WebSocketURL    string        `mapstructure:"websocket_url"` // optional, enables push block updates
	ChainID         uint64        `mapstructure:"chain_id"`
	NetworkName     string        `mapstructure:"network_name"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	MaxGasPriceGwei string        `mapstructure:"max_gas_price_gwei"`
	RequestsPerSec  float64       `mapstructure:"requests_per_sec"`
}

// MaxGasPriceWei returns the gas price ceiling in wei, or nil when unset.
func (c *EthereumConfig) MaxGasPriceWei() *big.Int {
	if c.MaxGasPriceGwei == "" {
		return nil
	}
	wei, err := units.ParseGwei(c.MaxGasPriceGwei)
	if err != nil {
		return nil
	}
	return wei
}

// WalletConfig describes where the signing key comes from.
// PrivateKey takes precedence over KeystorePath.
type WalletConfig struct {
	KeystorePath     string `mapstructure:"keystore_path"`
	KeystorePassword string `mapstructure:"keystore_password"`
	Address          string `mapstructure:"address"` // selects an account inside a keystore directory
	PrivateKey       string `mapstructure:"private_key"`
}

// HasSigner reports whether any signing key source is configured.
func (c *WalletConfig) HasSigner() bool {
	return c.PrivateKey != "" || c.KeystorePath != ""
}

// WhitelistConfig holds whitelist contract settings.
type WhitelistConfig struct {
	ContractAddress     string        `mapstructure:"contract_address"`
	AutoConnect         bool          `mapstructure:"auto_connect"`
	RefreshOnBlock      bool          `mapstructure:"refresh_on_block"`
	ConfirmationTimeout time.Duration `mapstructure:"confirmation_timeout"`
}

// ContractAddressHex returns the contract address as common.Address.
func (c *WhitelistConfig) ContractAddressHex() common.Address {
	return common.HexToAddress(c.ContractAddress)
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	TraceProvider  string `mapstructure:"trace_provider"` // zipkin, otlp-grpc, otlp-http, console
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// HealthConfig holds the health server settings.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("WL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "WL_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "WL_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "WL_LOG_LEVEL", "LOG_LEVEL")

	// Ethereum
	v.BindEnv("ethereum.http_url", "WL_ETH_HTTP_URL", "ETH_HTTP_URL")
	v.BindEnv("ethereum.http_headers", "WL_ETH_HTTP_HEADERS")
	v.BindEnv("ethereum.websocket_url", "WL_ETH_WS_URL", "ETH_WS_URL")
	v.BindEnv("ethereum.chain_id", "WL_ETH_CHAIN_ID", "ETH_CHAIN_ID")
	v.BindEnv("ethereum.network_name", "WL_ETH_NETWORK", "ETH_NETWORK")

	// Wallet
	v.BindEnv("wallet.keystore_path", "WL_KEYSTORE_PATH", "KEYSTORE_PATH")
	v.BindEnv("wallet.keystore_password", "WL_KEYSTORE_PASSWORD", "KEYSTORE_PASSWORD")
	v.BindEnv("wallet.address", "WL_WALLET_ADDRESS")
	v.BindEnv("wallet.private_key", "WL_PRIVATE_KEY", "PRIVATE_KEY")

	// Whitelist
	v.BindEnv("whitelist.contract_address", "WL_CONTRACT_ADDRESS", "WHITELIST_CONTRACT_ADDRESS")

	// Telemetry
	v.BindEnv("telemetry.enabled", "WL_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "WL_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "WL_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("telemetry.otlp_headers", "WL_OTEL_HEADERS", "OTEL_EXPORTER_OTLP_HEADERS")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "whitelist-dapp")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Ethereum defaults (Sepolia)
	v.SetDefault("ethereum.http_url", "https://ethereum-sepolia-rpc.publicnode.com")
	v.SetDefault("ethereum.chain_id", 11155111)
	v.SetDefault("ethereum.network_name", "sepolia")
	v.SetDefault("ethereum.request_timeout", "15s")
	v.SetDefault("ethereum.poll_interval", "12s") // ~1 block
	v.SetDefault("ethereum.max_gas_price_gwei", "500")
	v.SetDefault("ethereum.requests_per_sec", 10)

	// Whitelist defaults
	v.SetDefault("whitelist.auto_connect", true)
	v.SetDefault("whitelist.refresh_on_block", true)
	v.SetDefault("whitelist.confirmation_timeout", "5m")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.trace_provider", "zipkin")
	v.SetDefault("telemetry.service_name", "whitelist-dapp")
	v.SetDefault("telemetry.prometheus_port", 9090)

	// Health defaults
	v.SetDefault("health.enabled", true)
	v.SetDefault("health.port", 8081)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Ethereum.HTTPURL == "" {
		return fmt.Errorf("ethereum.http_url is required")
	}
	if c.Ethereum.ChainID == 0 {
		return fmt.Errorf("ethereum.chain_id is required")
	}
	if c.Ethereum.MaxGasPriceGwei != "" {
		if _, err := units.ParseGwei(c.Ethereum.MaxGasPriceGwei); err != nil {
			return fmt.Errorf("invalid ethereum.max_gas_price_gwei %q: %w", c.Ethereum.MaxGasPriceGwei, err)
		}
	}
	if !common.IsHexAddress(c.Whitelist.ContractAddress) {
		return fmt.Errorf("invalid whitelist.contract_address: %q", c.Whitelist.ContractAddress)
	}
	if c.Whitelist.ContractAddressHex() == (common.Address{}) {
		return fmt.Errorf("whitelist.contract_address cannot be the zero address")
	}
	if c.Wallet.Address != "" && !common.IsHexAddress(c.Wallet.Address) {
		return fmt.Errorf("invalid wallet.address: %q", c.Wallet.Address)
	}
	if c.Wallet.KeystorePath != "" && c.Wallet.PrivateKey == "" && c.Wallet.KeystorePassword == "" {
		return fmt.Errorf("wallet.keystore_password is required with wallet.keystore_path")
	}
	return nil
}
