package ethereum

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Info(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Warn(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (m *mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

// fakeHeaders returns a header one higher than the previous call.
type fakeHeaders struct {
	next atomic.Uint64
	err  error
}

func (f *fakeHeaders) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	if f.err != nil {
		return nil, f.err
	}
	n := f.next.Add(1)
	return &types.Header{Number: new(big.Int).SetUint64(n), Time: 1_700_000_000 + n}, nil
}

type fakeSub struct {
	errc chan error
	once sync.Once
}

func (s *fakeSub) Unsubscribe() { s.once.Do(func() {}) }
func (s *fakeSub) Err() <-chan error { return s.errc }

type fakeHeadSubscriber struct {
	mu  sync.Mutex
	ch  chan<- *types.Header
	sub *fakeSub
	err error
}

func (f *fakeHeadSubscriber) SubscribeNewHead(ctx context.Context, ch chan<- *types.Header) (ethereum.Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ch = ch
	f.sub = &fakeSub{errc: make(chan error, 1)}
	return f.sub, nil
}

func (f *fakeHeadSubscriber) push(n uint64) {
	f.mu.Lock()
	ch := f.ch
	f.mu.Unlock()
	ch <- &types.Header{Number: new(big.Int).SetUint64(n), Time: 1_700_000_000}
}

func (f *fakeHeadSubscriber) fail() {
	f.mu.Lock()
	sub := f.sub
	f.mu.Unlock()
	sub.errc <- errors.New("connection reset")
}

type fakeGasClient struct {
	price    *big.Int
	tip      *big.Int
	gas      uint64
	err      error
	gotMsg   ethereum.CallMsg
	chainID  *big.Int
	chainErr error
}

func (f *fakeGasClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return f.price, f.err
}

func (f *fakeGasClient) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return f.tip, f.err
}

func (f *fakeGasClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	f.gotMsg = msg
	return f.gas, f.err
}

func (f *fakeGasClient) ChainID(ctx context.Context) (*big.Int, error) {
	return f.chainID, f.chainErr
}
