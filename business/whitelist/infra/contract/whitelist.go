// Package contract talks to the deployed Whitelist contract over JSON-RPC.
package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	blockchainApp "github.com/fd1az/whitelist-dapp/business/blockchain/app"
	blockchainDomain "github.com/fd1az/whitelist-dapp/business/blockchain/domain"
	walletApp "github.com/fd1az/whitelist-dapp/business/wallet/app"
	"github.com/fd1az/whitelist-dapp/business/whitelist/app"
	"github.com/fd1az/whitelist-dapp/internal/apperror"
	"github.com/fd1az/whitelist-dapp/internal/circuitbreaker"
	"github.com/fd1az/whitelist-dapp/internal/logger"
	"github.com/fd1az/whitelist-dapp/internal/ratelimit"
)

const (
	tracerName = "github.com/fd1az/whitelist-dapp/business/whitelist/infra/contract"
	meterName  = "github.com/fd1az/whitelist-dapp/business/whitelist/infra/contract"
)

var _ app.Contract = (*Whitelist)(nil)

type whitelistMetrics struct {
	calls       metric.Int64Counter
	callLatency metric.Float64Histogram
	txSent      metric.Int64Counter
	txMined     metric.Int64Counter
}

// Whitelist is the contract binding used by the whitelist service.
type Whitelist struct {
	address common.Address
	abi     abi.ABI
	gas     blockchainApp.GasOracle
	limiter *ratelimit.Limiter // nil disables limiting
	logger  logger.LoggerInterface
	cb      *circuitbreaker.CircuitBreaker[[]byte]

	tracer  trace.Tracer
	metrics *whitelistMetrics
}

// New creates a binding for the contract at address.
func New(address common.Address, gas blockchainApp.GasOracle, limiter *ratelimit.Limiter, log logger.LoggerInterface) (*Whitelist, error) {
	parsed, err := abi.JSON(strings.NewReader(WhitelistABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse whitelist ABI: %w", err)
	}

	w := &Whitelist{
		address: address,
		abi:     parsed,
		gas:     gas,
		limiter: limiter,
		logger:  log,
		cb:      circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("whitelist-contract")),
		tracer:  otel.Tracer(tracerName),
	}

	if err := w.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}
	return w, nil
}

func (w *Whitelist) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	w.metrics = &whitelistMetrics{}

	w.metrics.calls, err = meter.Int64Counter(
		"whitelist_contract_calls_total",
		metric.WithDescription("Contract view calls by method and result"),
	)
	if err != nil {
		return err
	}

	w.metrics.callLatency, err = meter.Float64Histogram(
		"whitelist_contract_call_latency_ms",
		metric.WithDescription("Contract view call latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	w.metrics.txSent, err = meter.Int64Counter(
		"whitelist_transactions_sent_total",
		metric.WithDescription("Join transactions broadcast"),
	)
	if err != nil {
		return err
	}

	w.metrics.txMined, err = meter.Int64Counter(
		"whitelist_transactions_mined_total",
		metric.WithDescription("Join transactions mined, by status"),
	)
	return err
}

// Address returns the contract address.
func (w *Whitelist) Address() common.Address {
	return w.address
}

// HasCode reports whether bytecode is deployed at the contract address.
func (w *Whitelist) HasCode(ctx context.Context, sess *walletApp.Session) (bool, error) {
	if err := w.limiter.Wait(ctx); err != nil {
		return false, err
	}
	code, err := sess.Client.CodeAt(ctx, w.address, nil)
	if err != nil {
		return false, apperror.New(apperror.CodeEthereumRPCError,
			apperror.WithCause(err),
			apperror.WithContext("eth_getCode "+w.address.Hex()))
	}
	return len(code) > 0, nil
}

// WhitelistedAddress reads whitelistedAddress(addr).
func (w *Whitelist) WhitelistedAddress(ctx context.Context, sess *walletApp.Session, addr common.Address) (bool, error) {
	out, err := w.call(ctx, sess, methodWhitelisted, addr)
	if err != nil {
		return false, err
	}
	joined, ok := out[0].(bool)
	if !ok {
		return false, w.decodeError(methodWhitelisted, out[0])
	}
	return joined, nil
}

// NumAddressesWhitelisted reads numAddressesWhitelisted().
func (w *Whitelist) NumAddressesWhitelisted(ctx context.Context, sess *walletApp.Session) (uint64, error) {
	return w.readUint8(ctx, sess, methodCount)
}

// MaxWhitelistedAddresses reads the cap set at deployment.
func (w *Whitelist) MaxWhitelistedAddresses(ctx context.Context, sess *walletApp.Session) (uint64, error) {
	return w.readUint8(ctx, sess, methodMax)
}

func (w *Whitelist) readUint8(ctx context.Context, sess *walletApp.Session, method string) (uint64, error) {
	out, err := w.call(ctx, sess, method)
	if err != nil {
		return 0, err
	}
	n, ok := out[0].(uint8)
	if !ok {
		return 0, w.decodeError(method, out[0])
	}
	return uint64(n), nil
}

func (w *Whitelist) decodeError(method string, got any) error {
	return apperror.New(apperror.CodeContractCallFailed,
		apperror.WithContext(fmt.Sprintf("%s returned %T", method, got)))
}

// call runs a view method and returns its decoded outputs.
func (w *Whitelist) call(ctx context.Context, sess *walletApp.Session, method string, args ...any) ([]any, error) {
	ctx, span := w.tracer.Start(ctx, "whitelist.call",
		trace.WithAttributes(
			attribute.String("method", method),
			attribute.String("contract", w.address.Hex()),
		),
	)
	defer span.End()

	start := time.Now()
	out, err := w.doCall(ctx, sess, method, args...)
	w.metrics.callLatency.Record(ctx, float64(time.Since(start).Milliseconds()),
		metric.WithAttributes(attribute.String("method", method)))

	result := "ok"
	if err != nil {
		result = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	w.metrics.calls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("result", result),
	))
	return out, err
}

func (w *Whitelist) doCall(ctx context.Context, sess *walletApp.Session, method string, args ...any) ([]any, error) {
	if sess == nil || sess.Client == nil {
		return nil, apperror.New(apperror.CodeWalletNotConnected)
	}

	input, err := w.abi.Pack(method, args...)
	if err != nil {
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext("encode "+method))
	}

	if err := w.limiter.Wait(ctx); err != nil {
		return nil, apperror.New(apperror.CodeRateLimitExceeded, apperror.WithCause(err))
	}

	output, err := w.cb.Execute(func() ([]byte, error) {
		return sess.Client.CallContract(ctx, ethereum.CallMsg{To: &w.address, Data: input}, nil)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apperror.New(apperror.CodeCircuitOpen,
				apperror.WithCause(err),
				apperror.WithContext(w.cb.Name()))
		}
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext(method))
	}

	// An empty result from a view call usually means nothing is deployed there.
	if len(output) == 0 {
		if ok, codeErr := w.HasCode(ctx, sess); codeErr == nil && !ok {
			return nil, apperror.New(apperror.CodeContractNoCode,
				apperror.WithContext(fmt.Sprintf("no contract at %s on chain %d", w.address.Hex(), sess.ChainID)))
		}
	}

	out, err := w.abi.Unpack(method, output)
	if err != nil {
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext("decode "+method))
	}
	if len(out) == 0 {
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithContext(method+" returned no values"))
	}
	return out, nil
}

// AddAddressToWhitelist signs and broadcasts addAddressToWhitelist() from the
// session account. It returns as soon as the node accepts the transaction.
func (w *Whitelist) AddAddressToWhitelist(ctx context.Context, sess *walletApp.Session) (*types.Transaction, error) {
	ctx, span := w.tracer.Start(ctx, "whitelist.add_address")
	defer span.End()

	tx, err := w.sendJoin(ctx, sess)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	w.metrics.txSent.Add(ctx, 1)
	span.SetAttributes(
		attribute.String("tx_hash", tx.Hash().Hex()),
		attribute.Int64("nonce", int64(tx.Nonce())),
		attribute.Int64("gas", int64(tx.Gas())),
	)
	span.SetStatus(codes.Ok, "sent")

	w.logger.Info(ctx, "join transaction sent",
		"tx", tx.Hash().Hex(),
		"from", sess.Account.Address.Hex(),
		"nonce", tx.Nonce(),
		"gas", tx.Gas(),
		"max_fee", blockchainDomain.NewGasEstimate(tx.Gas(), blockchainDomain.NewGasPrice(tx.GasFeeCap())).Cost(),
	)
	return tx, nil
}

func (w *Whitelist) sendJoin(ctx context.Context, sess *walletApp.Session) (*types.Transaction, error) {
	if !sess.CanSign() {
		return nil, apperror.New(apperror.CodeWalletNotConnected,
			apperror.WithContext("a signing wallet is required to join"))
	}
	from := sess.Opts.From

	input, err := w.abi.Pack(methodAdd)
	if err != nil {
		return nil, apperror.New(apperror.CodeTransactionFailed, apperror.WithCause(err))
	}

	if err := w.limiter.Wait(ctx); err != nil {
		return nil, apperror.New(apperror.CodeRateLimitExceeded, apperror.WithCause(err))
	}

	head, err := sess.Client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, apperror.New(apperror.CodeEthereumRPCError,
			apperror.WithCause(err),
			apperror.WithContext("latest header"))
	}

	nonce, err := sess.Client.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, apperror.New(apperror.CodeEthereumRPCError,
			apperror.WithCause(err),
			apperror.WithContext("pending nonce"))
	}

	gasLimit, err := w.gas.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &w.address, Data: input})
	if err != nil {
		// A revert during estimation is how the contract reports a full or duplicate join.
		return nil, apperror.Wrap(err, apperror.CodeGasEstimationFailed, methodAdd)
	}

	chainID := new(big.Int).SetUint64(sess.ChainID)
	var unsigned *types.Transaction
	if head.BaseFee != nil {
		tip, err := w.gas.GetGasTipCap(ctx)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeGasEstimationFailed, "tip cap")
		}
		feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
		unsigned = types.NewTx(&types.DynamicFeeTx{
			ChainID:   chainID,
			Nonce:     nonce,
			GasTipCap: tip,
			GasFeeCap: feeCap,
			Gas:       gasLimit,
			To:        &w.address,
			Data:      input,
		})
	} else {
		price, err := w.gas.GetGasPrice(ctx)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeGasEstimationFailed, "gas price")
		}
		unsigned = types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: price.Wei,
			Gas:      gasLimit,
			To:       &w.address,
			Data:     input,
		})
	}

	signed, err := sess.Opts.Signer(from, unsigned)
	if err != nil {
		return nil, apperror.New(apperror.CodeTransactionSignError, apperror.WithCause(err))
	}

	if err := sess.Client.SendTransaction(ctx, signed); err != nil {
		return nil, apperror.New(apperror.CodeTransactionFailed,
			apperror.WithCause(err),
			apperror.WithContext("eth_sendRawTransaction"))
	}
	return signed, nil
}

// WaitMined blocks until tx is mined. A receipt with failed status is
// returned together with CodeTransactionReverted.
func (w *Whitelist) WaitMined(ctx context.Context, sess *walletApp.Session, tx *types.Transaction) (*types.Receipt, error) {
	ctx, span := w.tracer.Start(ctx, "whitelist.wait_mined",
		trace.WithAttributes(attribute.String("tx_hash", tx.Hash().Hex())),
	)
	defer span.End()

	if sess == nil || sess.Client == nil {
		return nil, apperror.New(apperror.CodeWalletNotConnected)
	}

	receipt, err := bind.WaitMined(ctx, sess.Client, tx)
	if err != nil {
		code := apperror.CodeTransactionFailed
		if errors.Is(err, context.DeadlineExceeded) {
			code = apperror.CodeServiceTimeout
		}
		appErr := apperror.New(code,
			apperror.WithCause(err),
			apperror.WithContext("waiting for "+tx.Hash().Hex()))
		span.RecordError(appErr)
		span.SetStatus(codes.Error, appErr.Error())
		return nil, appErr
	}

	span.SetAttributes(
		attribute.Int64("block", receipt.BlockNumber.Int64()),
		attribute.Int64("gas_used", int64(receipt.GasUsed)),
	)

	if receipt.Status == types.ReceiptStatusFailed {
		w.metrics.txMined.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "reverted")))
		appErr := apperror.New(apperror.CodeTransactionReverted,
			apperror.WithContext(fmt.Sprintf("%s in block %s", tx.Hash().Hex(), receipt.BlockNumber)))
		span.SetStatus(codes.Error, "reverted")
		return receipt, appErr
	}

	w.metrics.txMined.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "success")))
	span.SetStatus(codes.Ok, "mined")
	w.logger.Info(ctx, "join transaction mined",
		"tx", tx.Hash().Hex(),
		"block", receipt.BlockNumber.String(),
		"gas_used", receipt.GasUsed,
	)
	return receipt, nil
}
