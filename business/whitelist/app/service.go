package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	blockchainDomain "github.com/fd1az/whitelist-dapp/business/blockchain/domain"
	walletApp "github.com/fd1az/whitelist-dapp/business/wallet/app"
	"github.com/fd1az/whitelist-dapp/business/whitelist/domain"
	"github.com/fd1az/whitelist-dapp/internal/apm"
	"github.com/fd1az/whitelist-dapp/internal/apperror"
	"github.com/fd1az/whitelist-dapp/internal/logger"
)

const (
	tracerName = "github.com/fd1az/whitelist-dapp/business/whitelist/app"
	meterName  = "github.com/fd1az/whitelist-dapp/business/whitelist/app"
)

// Config controls the page lifecycle.
type Config struct {
	AutoConnect         bool          // connect on Start, like the page's mount effect
	RefreshOnBlock      bool          // re-read the counter on every new head
	ConfirmationTimeout time.Duration // 0 waits until the context ends
}

type serviceMetrics struct {
	joins          metric.Int64Counter
	numWhitelisted metric.Int64Gauge
}

// Service owns the page state and runs the whitelist operations against it.
// Failed operations leave the state as it was, except that a failed wait
// clears Loading.
type Service struct {
	contract  Contract
	wallet    WalletConnector
	feed      ChainFeed // nil disables the block watcher
	presenter Presenter
	config    Config
	logger    logger.LoggerInterface
	tracer    apm.Tracer
	metrics   *serviceMetrics

	mu      sync.Mutex
	state   domain.State
	joining bool

	runMu  sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService creates the whitelist service. feed may be nil.
func NewService(contract Contract, wallet WalletConnector, feed ChainFeed, presenter Presenter, cfg Config, log logger.LoggerInterface) (*Service, error) {
	s := &Service{
		contract:  contract,
		wallet:    wallet,
		feed:      feed,
		presenter: presenter,
		config:    cfg,
		logger:    log,
		tracer:    apm.NewTracer(tracerName),
	}

	if err := s.initMetrics(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	s.metrics = &serviceMetrics{}

	s.metrics.joins, err = meter.Int64Counter(
		"whitelist_joins_total",
		metric.WithDescription("Join transactions by outcome"),
		metric.WithUnit("{tx}"),
	)
	if err != nil {
		return err
	}

	s.metrics.numWhitelisted, err = meter.Int64Gauge(
		"whitelist_addresses",
		metric.WithDescription("Addresses on the whitelist as last read from the contract"),
		metric.WithUnit("{address}"),
	)
	return err
}

// State returns a snapshot of the page state.
func (s *Service) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// update applies fn under the lock and publishes the result.
func (s *Service) update(fn func(*domain.State)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state
	s.mu.Unlock()

	s.presenter.Render(snapshot)
}

// fail logs err, publishes it as LastError, and returns it.
func (s *Service) fail(ctx context.Context, op string, err error) error {
	s.logger.Errorc(ctx, 1, "whitelist operation failed",
		append([]any{"op", op}, apperror.LogFields(err)...)...)

	msg := apperror.UserMessage(err)
	s.update(func(st *domain.State) { st.LastError = msg })
	s.presenter.ReportError(err)
	return err
}

// GetProviderOrSigner opens a session on the expected network.
func (s *Service) GetProviderOrSigner(ctx context.Context, needSigner bool) (*walletApp.Session, error) {
	sess, err := s.wallet.Connect(ctx, needSigner)
	if err != nil {
		return nil, s.fail(ctx, "get_provider_or_signer", err)
	}

	s.update(func(st *domain.State) { st.ChainID = sess.ChainID })
	return sess, nil
}

// CheckIfAddressIsWhitelisted reads whether the signer's address is whitelisted.
func (s *Service) CheckIfAddressIsWhitelisted(ctx context.Context) error {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "whitelist.check_address")
	defer span.End()

	sess, err := s.GetProviderOrSigner(ctx, true)
	if err != nil {
		span.NoticeError(err)
		return err
	}

	addr := sess.Account.Address
	joined, err := s.contract.WhitelistedAddress(ctx, sess, addr)
	if err != nil {
		span.NoticeError(err)
		return s.fail(ctx, "check_if_address_is_whitelisted", err)
	}

	s.update(func(st *domain.State) {
		st.JoinedWhitelist = joined
		st.Account = addr
	})

	span.SetAttributes(attribute.String("account", addr.Hex()), attribute.Bool("joined", joined))
	span.SetOK("checked")
	return nil
}

// GetNumberOfWhitelisted reads the whitelist counter.
func (s *Service) GetNumberOfWhitelisted(ctx context.Context) error {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "whitelist.count")
	defer span.End()

	sess, err := s.GetProviderOrSigner(ctx, false)
	if err != nil {
		span.NoticeError(err)
		return err
	}

	n, err := s.contract.NumAddressesWhitelisted(ctx, sess)
	if err != nil {
		span.NoticeError(err)
		return s.fail(ctx, "get_number_of_whitelisted", err)
	}

	s.update(func(st *domain.State) { st.NumWhitelisted = n })
	s.metrics.numWhitelisted.Record(ctx, int64(n))

	span.SetAttributes(attribute.Int64("count", int64(n)))
	span.SetOK("counted")
	return nil
}

// AddAddressToWhitelist sends the join transaction and waits for it.
// Only one join runs at a time.
func (s *Service) AddAddressToWhitelist(ctx context.Context) error {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "whitelist.join")
	defer span.End()

	if err := s.beginJoin(); err != nil {
		span.NoticeError(err)
		return s.fail(ctx, "add_address_to_whitelist", err)
	}
	defer s.endJoin()

	sess, err := s.GetProviderOrSigner(ctx, true)
	if err != nil {
		span.NoticeError(err)
		return err
	}

	tx, err := s.contract.AddAddressToWhitelist(ctx, sess)
	if err != nil {
		span.NoticeError(err)
		s.metrics.joins.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "send_failed")))
		return s.fail(ctx, "add_address_to_whitelist", err)
	}

	s.update(func(st *domain.State) {
		st.Loading = true
		st.LastTx = tx.Hash()
	})
	span.SetAttributes(attribute.String("tx", tx.Hash().Hex()))
	s.logger.Info(ctx, "join transaction sent", "tx", tx.Hash().Hex(), "nonce", tx.Nonce())

	waitCtx := ctx
	if s.config.ConfirmationTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, s.config.ConfirmationTimeout)
		defer cancel()
	}

	receipt, err := s.contract.WaitMined(waitCtx, sess, tx)
	s.update(func(st *domain.State) { st.Loading = false })
	if err != nil {
		span.NoticeError(err)
		s.metrics.joins.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "failed")))
		return s.fail(ctx, "add_address_to_whitelist", err)
	}

	// The join stands even when the counter refresh fails; that error is recorded on its own.
	_ = s.GetNumberOfWhitelisted(ctx)

	s.update(func(st *domain.State) { st.JoinedWhitelist = true })
	s.metrics.joins.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "mined")))

	span.SetAttributes(attribute.Int64("block", receipt.BlockNumber.Int64()))
	span.SetOK("joined")
	s.logger.Info(ctx, "joined whitelist",
		"tx", tx.Hash().Hex(),
		"block", receipt.BlockNumber.Uint64(),
		"gas_used", receipt.GasUsed)
	return nil
}

func (s *Service) beginJoin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case !s.state.WalletConnected:
		return apperror.New(apperror.CodeWalletNotConnected)
	case s.joining || s.state.Loading:
		return apperror.New(apperror.CodeInvalidState,
			apperror.WithContext("a join transaction is already pending"))
	case s.state.JoinedWhitelist:
		return apperror.New(apperror.CodeAlreadyWhitelisted)
	}
	s.joining = true
	return nil
}

func (s *Service) endJoin() {
	s.mu.Lock()
	s.joining = false
	s.mu.Unlock()
}

// ConnectWallet unlocks the signer, marks the wallet connected, then reads
// the whitelist flag and the counter. Errors from the two reads are returned
// joined but do not undo the connection.
func (s *Service) ConnectWallet(ctx context.Context) error {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "whitelist.connect_wallet")
	defer span.End()

	sess, err := s.GetProviderOrSigner(ctx, true)
	if err != nil {
		span.NoticeError(err)
		return err
	}

	s.update(func(st *domain.State) {
		st.WalletConnected = true
		st.Account = sess.Account.Address
		st.ChainID = sess.ChainID
	})
	s.logger.Info(ctx, "wallet connected",
		"account", sess.Account.Address.Hex(),
		"source", sess.Account.Source,
		"chain_id", sess.ChainID)

	err = errors.Join(
		s.CheckIfAddressIsWhitelisted(ctx),
		s.GetNumberOfWhitelisted(ctx),
	)
	if err != nil {
		span.NoticeError(err)
		return err
	}

	span.SetOK("connected")
	return nil
}

// Press runs whatever the button currently does.
func (s *Service) Press(ctx context.Context) error {
	switch action := s.State().Action(); action {
	case domain.ActionConnect:
		return s.ConnectWallet(ctx)
	case domain.ActionJoin:
		return s.AddAddressToWhitelist(ctx)
	default:
		s.logger.Debug(ctx, "button press ignored", "action", action.String())
		return nil
	}
}

// Refresh re-reads the counter, and the whitelist flag when connected.
func (s *Service) Refresh(ctx context.Context) error {
	if !s.State().WalletConnected {
		return s.GetNumberOfWhitelisted(ctx)
	}
	return errors.Join(
		s.CheckIfAddressIsWhitelisted(ctx),
		s.GetNumberOfWhitelisted(ctx),
	)
}

// ClearError drops LastError.
func (s *Service) ClearError() {
	s.update(func(st *domain.State) { st.LastError = "" })
}

// Start publishes the initial page, auto-connects when configured, and
// starts the block watcher. The counter follows new blocks only with
// RefreshOnBlock. Connection failures are recorded, not returned.
func (s *Service) Start(ctx context.Context) error {
	s.runMu.Lock()
	if s.cancel != nil {
		s.runMu.Unlock()
		return apperror.New(apperror.CodeInvalidState, apperror.WithContext("whitelist service already started"))
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.runMu.Unlock()

	s.update(func(*domain.State) {})

	if s.config.AutoConnect && !s.State().WalletConnected {
		if err := s.ConnectWallet(ctx); err != nil {
			s.logger.Warn(ctx, "auto connect failed", "error", err)
		}
	}
	if !s.State().WalletConnected {
		// Read-only pages still show the counter.
		_ = s.GetNumberOfWhitelisted(ctx)
	}

	if s.feed == nil {
		return nil
	}

	blocks, err := s.feed.SubscribeBlocks(runCtx)
	if err != nil {
		s.logger.Warn(ctx, "block feed unavailable, no block updates", "error", err)
		s.presenter.ReportError(err)
		return nil
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.watchBlocks(runCtx, blocks)
	}()
	return nil
}

func (s *Service) watchBlocks(ctx context.Context, blocks <-chan *blockchainDomain.Block) {
	for {
		select {
		case <-ctx.Done():
			return
		case block, ok := <-blocks:
			if !ok {
				return
			}
			s.onBlock(ctx, block)
		}
	}
}

func (s *Service) onBlock(ctx context.Context, block *blockchainDomain.Block) {
	gas, err := s.feed.GetGasPrice(ctx)
	if err != nil {
		s.logger.Debug(ctx, "gas price unavailable", "block", block.Number, "error", err)
		gas = nil
	}
	s.presenter.ReportBlock(block, gas)

	if !s.config.RefreshOnBlock {
		return
	}

	s.mu.Lock()
	busy := s.joining || s.state.Loading
	s.mu.Unlock()
	if busy {
		return
	}
	_ = s.GetNumberOfWhitelisted(ctx)
}

// Stop ends the block watcher and waits for it.
func (s *Service) Stop() {
	s.runMu.Lock()
	cancel := s.cancel
	s.runMu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}
