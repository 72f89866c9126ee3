package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/whitelist-dapp/business/blockchain/domain"
	"github.com/fd1az/whitelist-dapp/internal/apperror"
	"github.com/fd1az/whitelist-dapp/internal/circuitbreaker"
	"github.com/fd1az/whitelist-dapp/internal/logger"
)

// GasClient is the node surface the oracle needs. *ethclient.Client satisfies it.
type GasClient interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
}

// GasOracleConfig holds configuration for the gas oracle.
type GasOracleConfig struct {
	MaxGasPrice   *big.Int // suggestions above this are clamped; nil disables
	MarginPercent uint64   // added on top of EstimateGas results
}

// DefaultGasOracleConfig returns defaults with the given price ceiling.
func DefaultGasOracleConfig(maxGasPrice *big.Int) GasOracleConfig {
	return GasOracleConfig{
		MaxGasPrice:   maxGasPrice,
		MarginPercent: 10,
	}
}

type gasOracleMetrics struct {
	gasPriceFetches metric.Int64Counter
	gasPriceGwei    metric.Float64Gauge
	estimateGas     metric.Int64Counter
	clamped         metric.Int64Counter
}

// GasOracle implements app.GasOracle against a JSON-RPC node.
type GasOracle struct {
	config GasOracleConfig
	client GasClient
	logger logger.LoggerInterface

	cb *circuitbreaker.CircuitBreaker[*big.Int]

	tracer  trace.Tracer
	metrics *gasOracleMetrics
}

// NewGasOracle creates a new gas oracle instance.
func NewGasOracle(cfg GasOracleConfig, client GasClient, log logger.LoggerInterface) (*GasOracle, error) {
	g := &GasOracle{
		config: cfg,
		client: client,
		logger: log,
		cb:     circuitbreaker.New[*big.Int](circuitbreaker.DefaultConfig("gas-oracle")),
		tracer: otel.Tracer(tracerName),
	}

	if err := g.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return g, nil
}

func (g *GasOracle) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	g.metrics = &gasOracleMetrics{}

	g.metrics.gasPriceFetches, err = meter.Int64Counter(
		"gas_price_fetches_total",
		metric.WithDescription("Total gas price fetch attempts"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return err
	}

	g.metrics.gasPriceGwei, err = meter.Float64Gauge(
		"gas_price_gwei",
		metric.WithDescription("Current gas price in gwei"),
		metric.WithUnit("gwei"),
	)
	if err != nil {
		return err
	}

	g.metrics.estimateGas, err = meter.Int64Counter(
		"gas_estimate_total",
		metric.WithDescription("Total gas estimation calls"),
		metric.WithUnit("{estimate}"),
	)
	if err != nil {
		return err
	}

	g.metrics.clamped, err = meter.Int64Counter(
		"gas_price_clamped_total",
		metric.WithDescription("Gas price suggestions clamped to the configured maximum"),
		metric.WithUnit("{fetch}"),
	)
	return err
}

// GetGasPrice retrieves the suggested gas price, clamped to MaxGasPrice.
func (g *GasOracle) GetGasPrice(ctx context.Context) (*domain.GasPrice, error) {
	ctx, span := g.tracer.Start(ctx, "gas.get_price")
	defer span.End()

	g.metrics.gasPriceFetches.Add(ctx, 1)

	wei, err := g.cb.Execute(func() (*big.Int, error) {
		return g.client.SuggestGasPrice(ctx)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, apperror.New(apperror.CodeEthereumRPCError,
			apperror.WithCause(err),
			apperror.WithContext("failed to get gas price"))
	}

	wei = g.clamp(ctx, span, wei)
	price := domain.NewGasPrice(wei)

	g.metrics.gasPriceGwei.Record(ctx, price.Gwei())
	span.SetAttributes(attribute.Float64("gwei", price.Gwei()))
	span.SetStatus(codes.Ok, "fetched")

	return price, nil
}

// GetGasTipCap retrieves the suggested gas tip cap (EIP-1559), clamped to MaxGasPrice.
func (g *GasOracle) GetGasTipCap(ctx context.Context) (*big.Int, error) {
	ctx, span := g.tracer.Start(ctx, "gas.get_tip_cap")
	defer span.End()

	tipCap, err := g.cb.Execute(func() (*big.Int, error) {
		return g.client.SuggestGasTipCap(ctx)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, apperror.New(apperror.CodeEthereumRPCError,
			apperror.WithCause(err),
			apperror.WithContext("failed to get gas tip cap"))
	}

	span.SetStatus(codes.Ok, "fetched")
	return g.clamp(ctx, span, tipCap), nil
}

// EstimateGas estimates msg and adds MarginPercent on top.
// Reverting calls surface here, before anything is signed.
func (g *GasOracle) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	to := ""
	if msg.To != nil {
		to = msg.To.Hex()
	}
	ctx, span := g.tracer.Start(ctx, "gas.estimate",
		trace.WithAttributes(
			attribute.String("from", msg.From.Hex()),
			attribute.String("to", to),
			attribute.Int("data_len", len(msg.Data)),
		),
	)
	defer span.End()

	g.metrics.estimateGas.Add(ctx, 1)

	gas, err := g.client.EstimateGas(ctx, msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "estimate failed")
		return 0, apperror.New(apperror.CodeGasEstimationFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("failed to estimate gas for %s", to)))
	}

	gas += gas * g.config.MarginPercent / 100

	span.SetAttributes(attribute.Int64("gas", int64(gas)))
	span.SetStatus(codes.Ok, "estimated")

	return gas, nil
}

func (g *GasOracle) clamp(ctx context.Context, span trace.Span, wei *big.Int) *big.Int {
	if g.config.MaxGasPrice == nil || wei.Cmp(g.config.MaxGasPrice) <= 0 {
		return wei
	}
	span.AddEvent("gas_price_exceeded_max",
		trace.WithAttributes(attribute.String("wei", wei.String())))
	g.metrics.clamped.Add(ctx, 1)
	g.logger.Warn(ctx, "gas price exceeds max, clamping",
		"wei", wei.String(), "max", g.config.MaxGasPrice.String())
	return new(big.Int).Set(g.config.MaxGasPrice)
}
