package signer

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/whitelist-dapp/business/wallet/domain"
	"github.com/fd1az/whitelist-dapp/internal/apperror"
	"github.com/fd1az/whitelist-dapp/internal/config"
)

const passphrase = "correct horse"

func newKeystore(t *testing.T, n int) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	ks := keystore.NewKeyStore(dir, keystore.LightScryptN, keystore.LightScryptP)

	var addrs []string
	for i := 0; i < n; i++ {
		acct, err := ks.NewAccount(passphrase)
		require.NoError(t, err)
		addrs = append(addrs, acct.Address.Hex())
	}
	return dir, addrs
}

func TestNewKeySigner(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	hexKey := "0x" + hex.EncodeToString(crypto.FromECDSA(key))

	s, err := NewKeySigner(hexKey)
	require.NoError(t, err)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), s.Account().Address)
	require.Equal(t, domain.SourcePrivateKey, s.Account().Source)

	chainID := big.NewInt(11155111)
	opts, err := s.TransactOpts(chainID)
	require.NoError(t, err)

	tx := types.NewTx(&types.LegacyTx{Nonce: 1, Gas: 21000, GasPrice: big.NewInt(1)})
	signed, err := opts.Signer(opts.From, tx)
	require.NoError(t, err)

	from, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	require.NoError(t, err)
	require.Equal(t, s.Account().Address, from)
}

func TestNewKeySigner_Invalid(t *testing.T) {
	_, err := NewKeySigner("0xnothex")
	require.Equal(t, apperror.CodeInvalidPrivateKey, apperror.GetCode(err))
}

func TestOpenKeystore(t *testing.T) {
	dir, addrs := newKeystore(t, 2)

	t.Run("selects_by_address", func(t *testing.T) {
		s, err := OpenKeystore(dir, addrs[1], passphrase)
		require.NoError(t, err)
		require.Equal(t, addrs[1], s.Account().Address.Hex())
		require.Equal(t, domain.SourceKeystore, s.Account().Source)

		chainID := big.NewInt(5)
		opts, err := s.TransactOpts(chainID)
		require.NoError(t, err)

		signed, err := opts.Signer(opts.From, types.NewTx(&types.LegacyTx{Gas: 21000, GasPrice: big.NewInt(1)}))
		require.NoError(t, err)
		from, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
		require.NoError(t, err)
		require.Equal(t, addrs[1], from.Hex())
	})

	t.Run("single_key_file", func(t *testing.T) {
		ks := keystore.NewKeyStore(dir, keystore.LightScryptN, keystore.LightScryptP)
		acct, err := ks.Find(accounts.Account{Address: common.HexToAddress(addrs[0])})
		require.NoError(t, err)

		s, err := OpenKeystore(acct.URL.Path, "", passphrase)
		require.NoError(t, err)
		require.Equal(t, addrs[0], s.Account().Address.Hex())

		_, err = OpenKeystore(acct.URL.Path, addrs[1], passphrase)
		require.Equal(t, apperror.CodeWalletUnlockFailed, apperror.GetCode(err))
	})

	t.Run("wrong_passphrase", func(t *testing.T) {
		_, err := OpenKeystore(dir, addrs[0], "nope")
		require.Equal(t, apperror.CodeWalletUnlockFailed, apperror.GetCode(err))
	})

	t.Run("unknown_address", func(t *testing.T) {
		_, err := OpenKeystore(dir, "0x00000000000000000000000000000000000000ff", passphrase)
		require.Equal(t, apperror.CodeWalletUnlockFailed, apperror.GetCode(err))
	})

	t.Run("missing_path", func(t *testing.T) {
		_, err := OpenKeystore(dir+"/missing", "", passphrase)
		require.Equal(t, apperror.CodeWalletUnlockFailed, apperror.GetCode(err))
	})
}

func TestOpenKeystore_EmptyDir(t *testing.T) {
	_, err := OpenKeystore(t.TempDir(), "", passphrase)
	require.Equal(t, apperror.CodeWalletUnlockFailed, apperror.GetCode(err))
}

func TestLoad(t *testing.T) {
	_, err := Load(config.WalletConfig{})
	require.Equal(t, apperror.CodeWalletNotConfigured, apperror.GetCode(err))

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	s, err := Load(config.WalletConfig{
		PrivateKey:   hex.EncodeToString(crypto.FromECDSA(key)),
		KeystorePath: "/does/not/matter",
	})
	require.NoError(t, err)
	require.Equal(t, domain.SourcePrivateKey, s.Account().Source)
}
