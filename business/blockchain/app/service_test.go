package app

import (
	"context"
	"errors"
	"testing"

	"github.com/fd1az/whitelist-dapp/business/blockchain/domain"
	"github.com/fd1az/whitelist-dapp/internal/apperror"
)

type fakeChecker struct {
	id  uint64
	err error
}

func (f fakeChecker) ChainID(context.Context) (uint64, error) { return f.id, f.err }

type fakeSubscriber struct {
	BlockSubscriber
	state domain.ConnectionState
	mode  domain.FeedMode
}

func (f fakeSubscriber) State() domain.ConnectionState { return f.state }
func (f fakeSubscriber) Mode() domain.FeedMode { return f.mode }

func TestVerifyNetwork(t *testing.T) {
	sepolia := domain.Network{ChainID: 11155111, Name: "sepolia"}
	rpcErr := apperror.New(apperror.CodeEthereumRPCError)

	tests := []struct {
		name     string
		checker  fakeChecker
		wantCode apperror.Code
	}{
		{name: "match", checker: fakeChecker{id: 11155111}},
		{name: "wrong_chain", checker: fakeChecker{id: 1}, wantCode: apperror.CodeWrongNetwork},
		{name: "rpc_error", checker: fakeChecker{err: rpcErr}, wantCode: apperror.CodeEthereumRPCError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewBlockchainService(nil, nil, tt.checker, sepolia)
			id, err := svc.VerifyNetwork(context.Background())

			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if id != 11155111 {
					t.Errorf("expected chain id, got %d", id)
				}
				return
			}
			if got := apperror.GetCode(err); got != tt.wantCode {
				t.Fatalf("expected %s, got %s (%v)", tt.wantCode, got, err)
			}
		})
	}
}

func TestVerifyNetwork_MessageNamesNetwork(t *testing.T) {
	svc := NewBlockchainService(nil, nil, fakeChecker{id: 1}, domain.Network{ChainID: 11155111, Name: "sepolia"})
	_, err := svc.VerifyNetwork(context.Background())

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if want := "change the network to sepolia (11155111), node is on chain 1"; appErr.Context != want {
		t.Errorf("unexpected context %q", appErr.Context)
	}
}

func TestFeedStatus(t *testing.T) {
	tests := []struct {
		name    string
		sub     fakeSubscriber
		healthy bool
		detail  string
	}{
		{"not started", fakeSubscriber{state: domain.StateDisconnected, mode: domain.FeedNone}, true, "idle"},
		{"websocket", fakeSubscriber{state: domain.StateConnected, mode: domain.FeedWebSocket}, true, "connected via websocket"},
		{"polling", fakeSubscriber{state: domain.StateConnecting, mode: domain.FeedPolling}, true, "connecting via polling"},
		{"lost", fakeSubscriber{state: domain.StateDisconnected, mode: domain.FeedPolling}, false, "disconnected via polling"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewBlockchainService(tt.sub, nil, nil, domain.Network{})
			healthy, detail := svc.FeedStatus()
			if healthy != tt.healthy || detail != tt.detail {
				t.Errorf("FeedStatus() = %v, %q; want %v, %q", healthy, detail, tt.healthy, tt.detail)
			}
		})
	}
}
