package app

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/whitelist-dapp/business/wallet/domain"
	"github.com/fd1az/whitelist-dapp/internal/apperror"
	"github.com/fd1az/whitelist-dapp/internal/logger"
)

const tracerName = "github.com/fd1az/whitelist-dapp/business/wallet/app"

// Session is a verified connection to the node, optionally able to sign.
type Session struct {
	Client  Backend
	ChainID uint64
	Account domain.Account
	Opts    *bind.TransactOpts // nil for read-only sessions
}

// CanSign reports whether the session carries a signer.
func (s *Session) CanSign() bool {
	return s != nil && s.Opts != nil
}

// SignerLoader unlocks the configured key.
type SignerLoader func() (Signer, error)

// StaticSigner returns a loader for an already unlocked signer.
func StaticSigner(s Signer) SignerLoader {
	if s == nil {
		return nil
	}
	return func() (Signer, error) { return s, nil }
}

// Connector hands out sessions against a single node.
type Connector struct {
	client   Backend
	verifier NetworkVerifier
	logger   logger.LoggerInterface
	tracer   trace.Tracer

	load    SignerLoader // nil when no key is configured
	once    sync.Once
	signer  Signer
	loadErr error
}

// NewConnector creates a Connector. load may be nil for a read-only client.
func NewConnector(client Backend, load SignerLoader, verifier NetworkVerifier, log logger.LoggerInterface) *Connector {
	return &Connector{
		client:   client,
		load:     load,
		verifier: verifier,
		logger:   log,
		tracer:   otel.Tracer(tracerName),
	}
}

// Configured reports whether a signing key is configured.
func (c *Connector) Configured() bool {
	return c.load != nil
}

// Unlock loads the key once; later calls return the same result.
func (c *Connector) Unlock() (Signer, error) {
	if c.load == nil {
		return nil, apperror.New(apperror.CodeWalletNotConfigured,
			apperror.WithContext("set wallet.private_key or wallet.keystore_path"))
	}
	c.once.Do(func() {
		c.signer, c.loadErr = c.load()
	})
	return c.signer, c.loadErr
}

// Close relocks a keystore account. Later unlocks fail.
func (c *Connector) Close() error {
	if c.load == nil {
		return nil
	}
	c.once.Do(func() {
		c.loadErr = apperror.New(apperror.CodeWalletNotConfigured, apperror.WithContext("wallet closed"))
	})
	if l, ok := c.signer.(interface{ Lock() error }); ok {
		return l.Lock()
	}
	return nil
}

// Account returns the unlocked account, or a zero account.
func (c *Connector) Account() domain.Account {
	s, err := c.Unlock()
	if err != nil {
		return domain.Account{Source: domain.SourceNone}
	}
	return s.Account()
}

// Connect verifies the network and returns a session.
// With needSigner the session carries transact options for the configured key.
func (c *Connector) Connect(ctx context.Context, needSigner bool) (*Session, error) {
	ctx, span := c.tracer.Start(ctx, "wallet.connect",
		trace.WithAttributes(attribute.Bool("need_signer", needSigner)))
	defer span.End()

	chainID, err := c.verifier.VerifyNetwork(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "network check failed")
		return nil, err
	}

	session := &Session{
		Client:  c.client,
		ChainID: chainID,
		Account: domain.Account{Source: domain.SourceNone},
	}
	if !needSigner {
		span.SetStatus(codes.Ok, "provider")
		return session, nil
	}

	signer, err := c.Unlock()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "no signer")
		return nil, err
	}

	opts, err := signer.TransactOpts(new(big.Int).SetUint64(chainID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transactor failed")
		return nil, apperror.Wrap(err, apperror.CodeWalletUnlockFailed, "failed to build transactor")
	}

	session.Account = signer.Account()
	session.Opts = opts

	span.SetAttributes(attribute.String("account", session.Account.Address.Hex()))
	span.SetStatus(codes.Ok, "signer")
	c.logger.Debug(ctx, "wallet session opened",
		"account", session.Account.Address.Hex(),
		"source", session.Account.Source,
		"chain_id", chainID)

	return session, nil
}
