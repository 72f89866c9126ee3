package config

import (
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testContract = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_DefaultsFromEnv(t *testing.T) {
	t.Setenv("WL_CONTRACT_ADDRESS", testContract)

	cfg, err := Load(writeConfig(t, "app:\n  name: whitelist-dapp\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Ethereum.ChainID != 11155111 || cfg.Ethereum.NetworkName != "sepolia" {
		t.Errorf("unexpected network defaults: %+v", cfg.Ethereum)
	}
	if cfg.Ethereum.PollInterval != 12*time.Second || cfg.Ethereum.RequestTimeout != 15*time.Second {
		t.Errorf("unexpected durations: %+v", cfg.Ethereum)
	}
	if !cfg.Whitelist.AutoConnect || !cfg.Whitelist.RefreshOnBlock {
		t.Error("whitelist flags should default to true")
	}
	if cfg.Whitelist.ConfirmationTimeout != 5*time.Minute {
		t.Errorf("confirmation timeout = %s", cfg.Whitelist.ConfirmationTimeout)
	}
	if cfg.Whitelist.ContractAddressHex().Hex() != testContract {
		t.Errorf("contract = %s", cfg.Whitelist.ContractAddressHex().Hex())
	}
	if cfg.Health.Port != 8081 || !cfg.Health.Enabled {
		t.Errorf("unexpected health config: %+v", cfg.Health)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
ethereum:
  http_url: http://localhost:8545
  chain_id: 31337
  network_name: anvil
  poll_interval: 2s
whitelist:
  contract_address: `+testContract+`
  refresh_on_block: false
wallet:
  private_key: "0x01"
`)
	t.Setenv("WL_ETH_NETWORK", "local")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ethereum.HTTPURL != "http://localhost:8545" || cfg.Ethereum.ChainID != 31337 {
		t.Errorf("file values not applied: %+v", cfg.Ethereum)
	}
	if cfg.Ethereum.NetworkName != "local" {
		t.Errorf("env should win over file, got %q", cfg.Ethereum.NetworkName)
	}
	if cfg.Ethereum.PollInterval != 2*time.Second {
		t.Errorf("poll interval = %s", cfg.Ethereum.PollInterval)
	}
	if cfg.Whitelist.RefreshOnBlock {
		t.Error("refresh_on_block should be false")
	}
	if !cfg.Wallet.HasSigner() {
		t.Error("private key should count as a signer")
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	if _, err := Load(writeConfig(t, "ethereum: [\n")); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func validConfig() Config {
	return Config{
		Ethereum: EthereumConfig{
			HTTPURL:         "http://localhost:8545",
			ChainID:         11155111,
			MaxGasPriceGwei: "500",
		},
		Whitelist: WhitelistConfig{ContractAddress: testContract},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing_url", func(c *Config) { c.Ethereum.HTTPURL = "" }, "http_url"},
		{"missing_chain", func(c *Config) { c.Ethereum.ChainID = 0 }, "chain_id"},
		{"bad_gas_ceiling", func(c *Config) { c.Ethereum.MaxGasPriceGwei = "lots" }, "max_gas_price_gwei"},
		{"bad_contract", func(c *Config) { c.Whitelist.ContractAddress = "0x123" }, "contract_address"},
		{"zero_contract", func(c *Config) {
			c.Whitelist.ContractAddress = "0x0000000000000000000000000000000000000000"
		}, "zero address"},
		{"bad_wallet_address", func(c *Config) { c.Wallet.Address = "nope" }, "wallet.address"},
		{"keystore_without_password", func(c *Config) { c.Wallet.KeystorePath = "/tmp/keys" }, "keystore_password"},
		{"keystore_with_private_key", func(c *Config) {
			c.Wallet.KeystorePath = "/tmp/keys"
			c.Wallet.PrivateKey = "0x01"
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMaxGasPriceWei(t *testing.T) {
	c := EthereumConfig{MaxGasPriceGwei: "1.5"}
	if got := c.MaxGasPriceWei(); got == nil || got.Cmp(big.NewInt(1_500_000_000)) != 0 {
		t.Errorf("MaxGasPriceWei = %v", got)
	}

	c.MaxGasPriceGwei = ""
	if c.MaxGasPriceWei() != nil {
		t.Error("expected nil when unset")
	}
}
