package infra

import (
	"bytes"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"

	blockchainDomain "github.com/fd1az/whitelist-dapp/business/blockchain/domain"
	"github.com/fd1az/whitelist-dapp/business/whitelist/domain"
	"github.com/fd1az/whitelist-dapp/internal/apperror"
	"github.com/fd1az/whitelist-dapp/pkg/ui"
)

func fixedClock() time.Time {
	return time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
}

func TestConsolePresenter_Render(t *testing.T) {
	var out bytes.Buffer
	p := NewConsolePresenter(&out)
	p.now = fixedClock

	state := domain.State{NumWhitelisted: 2}
	p.Render(state)
	p.Render(state) // unchanged page is not repeated

	state.WalletConnected = true
	state.Account = common.HexToAddress("0x1000000000000000000000000000000000001234")
	p.Render(state)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), out.String())
	}

	want := "[15:04:05] Welcome to Crypto Devs! | 2 have already joined the Whitelist | wallet not connected | [Connect Wallet]"
	if lines[0] != want {
		t.Errorf("unexpected first line:\n got %q\nwant %q", lines[0], want)
	}
	if !strings.Contains(lines[1], "wallet 0x1000...1234") || !strings.HasSuffix(lines[1], "[Join the Whitelist]") {
		t.Errorf("unexpected second line %q", lines[1])
	}
}

func TestConsolePresenter_ErrorsAndBlocks(t *testing.T) {
	var out bytes.Buffer
	p := NewConsolePresenter(&out)
	p.now = fixedClock

	p.ReportError(apperror.New(apperror.CodeAlreadyWhitelisted))
	p.ReportError(nil)
	p.ReportBlock(&blockchainDomain.Block{Number: 42}, blockchainDomain.NewGasPrice(big.NewInt(1_500_000_000)))
	p.ReportBlock(&blockchainDomain.Block{Number: 43}, nil)

	got := out.String()
	if strings.Count(got, "error:") != 1 {
		t.Errorf("expected one error line, got:\n%s", got)
	}
	if !strings.Contains(got, "block #42 gas 1.50 gwei") {
		t.Errorf("expected block with gas, got:\n%s", got)
	}
	if !strings.Contains(got, "block #43\n") {
		t.Errorf("expected block without gas, got:\n%s", got)
	}
}

func TestFormatPage_PendingTx(t *testing.T) {
	tx := common.HexToHash("0x01")
	page := FormatPage(domain.State{WalletConnected: true, Loading: true, LastTx: tx})

	if !strings.Contains(page, "tx "+tx.Hex()) || !strings.HasSuffix(page, "[Loading...]") {
		t.Errorf("unexpected page %q", page)
	}
}

func TestTUIPresenter(t *testing.T) {
	var sent []tea.Msg
	p := NewTUIPresenter(func(msg tea.Msg) { sent = append(sent, msg) })

	p.Render(domain.State{NumWhitelisted: 5})
	p.ReportError(errors.New("boom"))
	p.ReportError(nil)
	p.ReportBlock(&blockchainDomain.Block{Number: 9}, blockchainDomain.NewGasPrice(big.NewInt(2_000_000_000)))
	p.ReportBlock(nil, nil)

	if len(sent) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(sent))
	}
	if st, ok := sent[0].(ui.StateMsg); !ok || st.State.NumWhitelisted != 5 {
		t.Errorf("expected StateMsg, got %#v", sent[0])
	}
	if _, ok := sent[1].(ui.ErrorMsg); !ok {
		t.Errorf("expected ErrorMsg, got %#v", sent[1])
	}
	if b, ok := sent[2].(ui.BlockMsg); !ok || b.Number != 9 || b.Gas != "2.00 gwei" {
		t.Errorf("expected BlockMsg, got %#v", sent[2])
	}
}
