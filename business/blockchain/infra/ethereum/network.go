package ethereum

import (
	"context"
	"math/big"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/whitelist-dapp/internal/apperror"
	"github.com/fd1az/whitelist-dapp/internal/circuitbreaker"
)

// ChainIDReader is implemented by *ethclient.Client.
type ChainIDReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// NetworkChecker asks the node for its chain ID on every call.
type NetworkChecker struct {
	client ChainIDReader
	cb     *circuitbreaker.CircuitBreaker[*big.Int]
	tracer trace.Tracer
}

// NewNetworkChecker creates a NetworkChecker.
func NewNetworkChecker(client ChainIDReader) *NetworkChecker {
	return &NetworkChecker{
		client: client,
		cb:     circuitbreaker.New[*big.Int](circuitbreaker.DefaultConfig("eth-chain-id")),
		tracer: otel.Tracer(tracerName),
	}
}

// ChainID returns the node's chain ID.
func (n *NetworkChecker) ChainID(ctx context.Context) (uint64, error) {
	ctx, span := n.tracer.Start(ctx, "eth.chain_id")
	defer span.End()

	id, err := n.cb.Execute(func() (*big.Int, error) {
		return n.client.ChainID(ctx)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return 0, apperror.New(apperror.CodeEthereumConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to get chain id"))
	}

	span.SetAttributes(attribute.Int64("chain_id", id.Int64()))
	span.SetStatus(codes.Ok, "fetched")
	return id.Uint64(), nil
}
