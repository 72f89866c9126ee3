// Package ethereum provides Ethereum blockchain infrastructure adapters.
package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sony/gobreaker/v2"
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

const (
	tracerName = "github.com/fd1az/whitelist-dapp/business/blockchain/infra/ethereum"
	meterName  = "github.com/fd1az/whitelist-dapp/business/blockchain/infra/ethereum"
)

// HeaderClient fetches headers over request/response RPC.
type HeaderClient interface {
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

// HeadSubscriber pushes new heads, typically over a WebSocket.
type HeadSubscriber interface {
	SubscribeNewHead(ctx context.Context, ch chan<- *types.Header) (ethereum.Subscription, error)
}

// SubscriberConfig holds configuration for the block subscriber.
type SubscriberConfig struct {
	PollInterval time.Duration // polling interval when no push feed is available
	BufferSize   int           // block channel buffer size
}

// DefaultSubscriberConfig returns defaults for the given poll interval.
func DefaultSubscriberConfig(pollInterval time.Duration) SubscriberConfig {
	if pollInterval <= 0 {
		pollInterval = 12 * time.Second // ~1 block time
	}
	return SubscriberConfig{
		PollInterval: pollInterval,
		BufferSize:   16,
	}
}

type subscriberMetrics struct {
	blocksReceived  metric.Int64Counter
	subscribeErrors metric.Int64Counter
	connectionState metric.Int64Gauge
	blockLatency    metric.Float64Histogram
	pollFallback    metric.Int64Counter
}

// Subscriber implements app.BlockSubscriber.
// With a HeadSubscriber it uses new-head push and degrades to HTTP polling
// when the subscription fails; it never redials.
type Subscriber struct {
	config SubscriberConfig
	logger logger.LoggerInterface

	http HeaderClient
	ws   HeadSubscriber // nil: polling only

	stateMu sync.RWMutex
	state   domain.ConnectionState
	mode    domain.FeedMode

	lastBlock atomic.Uint64

	lifeMu     sync.Mutex
	subscribed bool
	closed     bool
	blocks     chan *domain.Block
	done       chan struct{}
	wg         sync.WaitGroup

	cb *circuitbreaker.CircuitBreaker[*types.Header]

	tracer  trace.Tracer
	metrics *subscriberMetrics
}

// NewSubscriber creates a block subscriber. ws may be nil.
func NewSubscriber(cfg SubscriberConfig, http HeaderClient, ws HeadSubscriber, log logger.LoggerInterface) (*Subscriber, error) {
	s := &Subscriber{
		config: cfg,
		logger: log,
		http:   http,
		ws:     ws,
		state:  domain.StateDisconnected,
		blocks: make(chan *domain.Block, cfg.BufferSize),
		done:   make(chan struct{}),
		tracer: otel.Tracer(tracerName),
	}

	if err := s.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	cbCfg := circuitbreaker.DefaultConfig("eth-headers")
	cbCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		s.logger.Info(context.Background(), "circuit breaker state change",
			"breaker", name, "from", from.String(), "to", to.String())
	}
	s.cb = circuitbreaker.New[*types.Header](cbCfg)

	return s, nil
}

func (s *Subscriber) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	s.metrics = &subscriberMetrics{}

	s.metrics.blocksReceived, err = meter.Int64Counter(
		"eth_blocks_received_total",
		metric.WithDescription("Total Ethereum blocks received"),
		metric.WithUnit("{block}"),
	)
	if err != nil {
		return err
	}

	s.metrics.subscribeErrors, err = meter.Int64Counter(
		"eth_subscribe_errors_total",
		metric.WithDescription("Total Ethereum subscription and poll errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	s.metrics.connectionState, err = meter.Int64Gauge(
		"eth_connection_state",
		metric.WithDescription("Block feed state (0=disconnected, 1=connecting, 2=connected)"),
		metric.WithUnit("{state}"),
	)
	if err != nil {
		return err
	}

	s.metrics.blockLatency, err = meter.Float64Histogram(
		"eth_block_latency_ms",
		metric.WithDescription("Latency from block timestamp to receipt"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	s.metrics.pollFallback, err = meter.Int64Counter(
		"eth_poll_fallback_total",
		metric.WithDescription("Times the feed fell back to HTTP polling"),
		metric.WithUnit("{fallback}"),
	)
	return err
}

// Subscribe starts the block feed and returns its channel.
// The channel is closed by Close.
func (s *Subscriber) Subscribe(ctx context.Context) (<-chan *domain.Block, error) {
	runCtx := ctx
	ctx, span := s.tracer.Start(ctx, "eth.subscribe",
		trace.WithAttributes(attribute.Bool("websocket", s.ws != nil)))
	defer span.End()

	s.lifeMu.Lock()
	if s.closed || s.subscribed {
		s.lifeMu.Unlock()
		err := apperror.New(apperror.CodeInvalidState,
			apperror.WithContext("subscriber already started or closed"))
		span.RecordError(err)
		return nil, err
	}
	s.subscribed = true
	s.lifeMu.Unlock()

	s.setState(domain.StateConnecting)

	if s.ws != nil {
		headers := make(chan *types.Header, s.config.BufferSize)
		sub, err := s.ws.SubscribeNewHead(ctx, headers)
		if err == nil {
			s.setMode(domain.FeedWebSocket)
			if !s.spawn(func() { s.runWSSubscription(runCtx, headers, sub) }) {
				sub.Unsubscribe()
			}
			s.setState(domain.StateConnected)
			span.SetStatus(codes.Ok, "subscribed via websocket")
			s.logger.Info(ctx, "subscribed to new heads via websocket")
			return s.blocks, nil
		}

		s.metrics.subscribeErrors.Add(ctx, 1)
		span.AddEvent("ws_subscribe_failed")
		s.logger.Warn(ctx, "websocket subscribe failed, falling back to polling", "error", err)
		s.metrics.pollFallback.Add(ctx, 1)
	}

	// Polling needs a reachable node up front.
	if _, err := s.LatestBlock(ctx); err != nil {
		s.setState(domain.StateDisconnected)
		span.RecordError(err)
		span.SetStatus(codes.Error, "no block source")
		return nil, apperror.New(apperror.CodeEthereumSubscribeFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to start block polling"))
	}

	s.setMode(domain.FeedPolling)
	s.spawn(func() { s.pollLoop(runCtx) })
	s.setState(domain.StateConnected)
	span.SetStatus(codes.Ok, "subscribed via polling")
	s.logger.Info(ctx, "polling for new blocks", "interval", s.config.PollInterval)

	return s.blocks, nil
}

// spawn runs fn in a tracked goroutine unless the subscriber is closed.
func (s *Subscriber) spawn(fn func()) bool {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()
	if s.closed {
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
	return true
}

func (s *Subscriber) runWSSubscription(ctx context.Context, headers <-chan *types.Header, sub ethereum.Subscription) {
	defer sub.Unsubscribe()

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case err := <-sub.Err():
			s.metrics.subscribeErrors.Add(ctx, 1)
			s.metrics.pollFallback.Add(ctx, 1)
			s.logger.Warn(ctx, "websocket subscription ended, falling back to polling", "error", err)
			s.setMode(domain.FeedPolling)
			s.pollLoop(ctx)
			return
		case header := <-headers:
			if header == nil {
				continue
			}
			s.processHeader(ctx, header, false)
		}
	}
}

func (s *Subscriber) pollLoop(ctx context.Context) {
	s.pollLatestBlock(ctx)

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollLatestBlock(ctx)
		}
	}
}

func (s *Subscriber) pollLatestBlock(ctx context.Context) {
	ctx, span := s.tracer.Start(ctx, "eth.poll.block")
	defer span.End()

	header, err := s.cb.Execute(func() (*types.Header, error) {
		return s.http.HeaderByNumber(ctx, nil)
	})
	if err != nil {
		span.RecordError(err)
		s.logger.Warn(ctx, "block poll failed", "error", err)
		s.metrics.subscribeErrors.Add(ctx, 1)
		return
	}

	if header.Number.Uint64() <= s.lastBlock.Load() {
		span.AddEvent("duplicate_block")
		return
	}

	s.processHeader(ctx, header, true)
	span.SetStatus(codes.Ok, "polled")
}

// processHeader converts and emits a header without blocking.
func (s *Subscriber) processHeader(ctx context.Context, header *types.Header, fromHTTP bool) {
	ctx, span := s.tracer.Start(ctx, "eth.process.header",
		trace.WithAttributes(
			attribute.Int64("block_number", header.Number.Int64()),
			attribute.Bool("from_http", fromHTTP),
		),
	)
	defer span.End()

	block := domain.BlockFromHeader(header)

	latency := time.Since(block.Timestamp)
	s.metrics.blockLatency.Record(ctx, float64(latency.Milliseconds()))

	s.lastBlock.Store(block.Number)

	select {
	case s.blocks <- block:
		s.metrics.blocksReceived.Add(ctx, 1)
		s.logger.Debug(ctx, "block received",
			"number", block.Number,
			"hash", block.Hash.Hex()[:10],
			"latency_ms", latency.Milliseconds())
	default:
		span.AddEvent("block_dropped_buffer_full")
		s.logger.Warn(ctx, "block dropped, buffer full", "number", block.Number)
	}
}

// LatestBlock fetches the current head over HTTP.
func (s *Subscriber) LatestBlock(ctx context.Context) (*domain.Block, error) {
	ctx, span := s.tracer.Start(ctx, "eth.latest_block")
	defer span.End()

	header, err := s.cb.Execute(func() (*types.Header, error) {
		return s.http.HeaderByNumber(ctx, nil)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, apperror.New(apperror.CodeBlockNotFound,
			apperror.WithCause(err),
			apperror.WithContext("failed to fetch latest block"))
	}

	span.SetStatus(codes.Ok, "fetched")
	return domain.BlockFromHeader(header), nil
}

// State returns the current connection state.
func (s *Subscriber) State() domain.ConnectionState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// Mode returns how blocks are currently discovered.
func (s *Subscriber) Mode() domain.FeedMode {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.mode
}

// BlockNumber returns the number of the last emitted block.
func (s *Subscriber) BlockNumber() uint64 {
	return s.lastBlock.Load()
}

// Close stops all feed goroutines and closes the block channel. Safe to call twice.
func (s *Subscriber) Close() error {
	s.lifeMu.Lock()
	if s.closed {
		s.lifeMu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	s.lifeMu.Unlock()

	s.wg.Wait()
	close(s.blocks)
	s.setState(domain.StateDisconnected)

	s.logger.Info(context.Background(), "block subscriber closed")
	return nil
}

func (s *Subscriber) setMode(mode domain.FeedMode) {
	s.stateMu.Lock()
	s.mode = mode
	s.stateMu.Unlock()
}

func (s *Subscriber) setState(state domain.ConnectionState) {
	s.stateMu.Lock()
	s.state = state
	s.stateMu.Unlock()

	var stateValue int64
	switch state {
	case domain.StateConnecting:
		stateValue = 1
	case domain.StateConnected:
		stateValue = 2
	}

	s.metrics.connectionState.Record(context.Background(), stateValue)
}
