package app

import (
	"context"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	blockchainDomain "github.com/fd1az/whitelist-dapp/business/blockchain/domain"
	walletApp "github.com/fd1az/whitelist-dapp/business/wallet/app"
	walletDomain "github.com/fd1az/whitelist-dapp/business/wallet/domain"
	"github.com/fd1az/whitelist-dapp/business/whitelist/domain"
)

const sepolia = 11155111

var alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Info(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Warn(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (m *mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

type fakeConnector struct {
	err       error // returned for every Connect
	signerErr error // returned only when a signer is requested
	calls     atomic.Int32
}

func (f *fakeConnector) Connect(ctx context.Context, needSigner bool) (*walletApp.Session, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	sess := &walletApp.Session{ChainID: sepolia, Account: walletDomain.Account{Source: walletDomain.SourceNone}}
	if !needSigner {
		return sess, nil
	}
	if f.signerErr != nil {
		return nil, f.signerErr
	}
	sess.Account = walletDomain.Account{Address: alice, Source: walletDomain.SourcePrivateKey}
	sess.Opts = &bind.TransactOpts{From: alice}
	return sess, nil
}

type fakeContract struct {
	mu       sync.Mutex
	joined   bool
	count    uint64
	checkErr error
	countErr error
	sendErr  error
	waitErr  error

	// When set, WaitMined blocks until release is closed or ctx ends.
	release chan struct{}

	countCalls atomic.Int32
	sendCalls  atomic.Int32
}

func (f *fakeContract) WhitelistedAddress(ctx context.Context, sess *walletApp.Session, addr common.Address) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.joined, f.checkErr
}

func (f *fakeContract) NumAddressesWhitelisted(ctx context.Context, sess *walletApp.Session) (uint64, error) {
	f.countCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count, f.countErr
}

func (f *fakeContract) AddAddressToWhitelist(ctx context.Context, sess *walletApp.Session) (*types.Transaction, error) {
	f.sendCalls.Add(1)
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return types.NewTx(&types.LegacyTx{Nonce: 3, Gas: 50_000, GasPrice: big.NewInt(1)}), nil
}

func (f *fakeContract) WaitMined(ctx context.Context, sess *walletApp.Session, tx *types.Transaction) (*types.Receipt, error) {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.waitErr != nil {
		return nil, f.waitErr
	}

	f.mu.Lock()
	f.joined = true
	f.count++
	f.mu.Unlock()
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(10), GasUsed: 45_000}, nil
}

type fakeFeed struct {
	blocks chan *blockchainDomain.Block
	err    error
}

func (f *fakeFeed) SubscribeBlocks(ctx context.Context) (<-chan *blockchainDomain.Block, error) {
	return f.blocks, f.err
}

func (f *fakeFeed) GetGasPrice(ctx context.Context) (*blockchainDomain.GasPrice, error) {
	return blockchainDomain.NewGasPrice(big.NewInt(1_000_000_000)), nil
}

type recordingPresenter struct {
	mu     sync.Mutex
	states []domain.State
	errs   []error
	blocks []uint64
	gas    []*blockchainDomain.GasPrice
}

func (p *recordingPresenter) Render(state domain.State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states = append(p.states, state)
}

func (p *recordingPresenter) ReportError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs = append(p.errs, err)
}

func (p *recordingPresenter) ReportBlock(block *blockchainDomain.Block, gas *blockchainDomain.GasPrice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.blocks = append(p.blocks, block.Number)
	p.gas = append(p.gas, gas)
}

func (p *recordingPresenter) sawLoading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.states {
		if s.Loading {
			return true
		}
	}
	return false
}

func (p *recordingPresenter) errorCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.errs)
}

func (p *recordingPresenter) blockCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.blocks)
}
