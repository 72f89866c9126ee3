// Package signer loads signing keys from a go-ethereum keystore or a raw hex key.
package signer

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/fd1az/whitelist-dapp/business/wallet/app"
	"github.com/fd1az/whitelist-dapp/business/wallet/domain"
	"github.com/fd1az/whitelist-dapp/internal/apperror"
	"github.com/fd1az/whitelist-dapp/internal/config"
)

var (
	_ app.Signer = (*KeySigner)(nil)
	_ app.Signer = (*KeystoreSigner)(nil)
)

// Load builds a signer from cfg. A private key wins over a keystore.
// It returns CodeWalletNotConfigured when neither is set.
func Load(cfg config.WalletConfig) (app.Signer, error) {
	switch {
	case cfg.PrivateKey != "":
		return NewKeySigner(cfg.PrivateKey)
	case cfg.KeystorePath != "":
		return OpenKeystore(cfg.KeystorePath, cfg.Address, cfg.KeystorePassword)
	default:
		return nil, apperror.New(apperror.CodeWalletNotConfigured)
	}
}

// KeySigner signs with an in-memory private key.
type KeySigner struct {
	key     *ecdsa.PrivateKey
	account domain.Account
}

// NewKeySigner parses a hex private key, with or without 0x.
func NewKeySigner(hexKey string) (*KeySigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		// The parse error never includes the key material.
		return nil, apperror.New(apperror.CodeInvalidPrivateKey, apperror.WithCause(err))
	}
	return &KeySigner{
		key: key,
		account: domain.Account{
			Address: crypto.PubkeyToAddress(key.PublicKey),
			Source:  domain.SourcePrivateKey,
		},
	}, nil
}

func (s *KeySigner) Account() domain.Account {
	return s.account
}

func (s *KeySigner) TransactOpts(chainID *big.Int) (*bind.TransactOpts, error) {
	return bind.NewKeyedTransactorWithChainID(s.key, chainID)
}

// KeystoreSigner signs through an unlocked go-ethereum keystore account.
type KeystoreSigner struct {
	ks      *keystore.KeyStore
	acct    accounts.Account
	account domain.Account
}

// OpenKeystore opens path and unlocks one account with passphrase.
// path may be a keystore directory or a single key file. In a directory,
// address selects the account; empty means the first one.
func OpenKeystore(path, address, passphrase string) (*KeystoreSigner, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperror.New(apperror.CodeWalletUnlockFailed,
			apperror.WithCause(err),
			apperror.WithContext("keystore not readable"))
	}

	dir := path
	if !info.IsDir() {
		dir, address, err = keyFileDir(path, address)
		if err != nil {
			return nil, err
		}
	}

	ks := keystore.NewKeyStore(dir, keystore.StandardScryptN, keystore.StandardScryptP)

	acct, err := selectAccount(ks, address)
	if err != nil {
		return nil, err
	}

	if err := ks.Unlock(acct, passphrase); err != nil {
		return nil, apperror.New(apperror.CodeWalletUnlockFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("unlock %s", acct.Address.Hex())))
	}

	return &KeystoreSigner{
		ks:   ks,
		acct: acct,
		account: domain.Account{
			Address: acct.Address,
			Source:  domain.SourceKeystore,
		},
	}, nil
}

// keyFileDir maps a key file to its directory and the address it holds.
func keyFileDir(file, address string) (string, string, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return "", "", apperror.New(apperror.CodeWalletUnlockFailed, apperror.WithCause(err))
	}
	var keyFile struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(raw, &keyFile); err != nil || !common.IsHexAddress(keyFile.Address) {
		return "", "", apperror.New(apperror.CodeWalletUnlockFailed,
			apperror.WithCause(err),
			apperror.WithContext("not a keystore key file"))
	}
	if address != "" && !strings.EqualFold(common.HexToAddress(address).Hex(), common.HexToAddress(keyFile.Address).Hex()) {
		return "", "", apperror.New(apperror.CodeWalletUnlockFailed,
			apperror.WithContext("key file does not hold wallet.address"))
	}
	return filepath.Dir(file), keyFile.Address, nil
}

func selectAccount(ks *keystore.KeyStore, address string) (accounts.Account, error) {
	if address != "" {
		acct, err := ks.Find(accounts.Account{Address: common.HexToAddress(address)})
		if err != nil {
			return accounts.Account{}, apperror.New(apperror.CodeWalletUnlockFailed,
				apperror.WithCause(err),
				apperror.WithContext(fmt.Sprintf("account %s not in keystore", address)))
		}
		return acct, nil
	}

	all := ks.Accounts()
	if len(all) == 0 {
		return accounts.Account{}, apperror.New(apperror.CodeWalletUnlockFailed,
			apperror.WithContext("keystore has no accounts"))
	}
	return all[0], nil
}

func (s *KeystoreSigner) Account() domain.Account {
	return s.account
}

func (s *KeystoreSigner) TransactOpts(chainID *big.Int) (*bind.TransactOpts, error) {
	return bind.NewKeyStoreTransactorWithChainID(s.ks, s.acct, chainID)
}

// Lock relocks the account.
func (s *KeystoreSigner) Lock() error {
	return s.ks.Lock(s.acct.Address)
}
