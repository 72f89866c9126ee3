// Package infra contains infrastructure adapters for the whitelist context.
package infra

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	blockchainDomain "github.com/fd1az/whitelist-dapp/business/blockchain/domain"
	walletDomain "github.com/fd1az/whitelist-dapp/business/wallet/domain"
	"github.com/fd1az/whitelist-dapp/business/whitelist/app"
	"github.com/fd1az/whitelist-dapp/business/whitelist/domain"
	"github.com/fd1az/whitelist-dapp/internal/apperror"
)

var _ app.Presenter = (*ConsolePresenter)(nil)

// ConsolePresenter implements Presenter as a line log for CLI mode.
// Identical consecutive pages are printed once.
type ConsolePresenter struct {
	out io.Writer
	now func() time.Time

	mu       sync.Mutex
	lastPage string
}

// NewConsolePresenter creates a presenter writing to out, or stdout when nil.
func NewConsolePresenter(out io.Writer) *ConsolePresenter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsolePresenter{
		out: out,
		now: time.Now,
	}
}

// Start prints the banner.
func (p *ConsolePresenter) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, domain.Title)
	fmt.Fprintln(p.out, strings.Repeat("=", len(domain.Title)))
}

// Render prints the page when it differs from the last one printed.
func (p *ConsolePresenter) Render(state domain.State) {
	page := FormatPage(state)

	p.mu.Lock()
	defer p.mu.Unlock()
	if page == p.lastPage {
		return
	}
	p.lastPage = page
	fmt.Fprintf(p.out, "[%s] %s\n", p.stamp(), page)
}

// ReportError prints err in its display form.
func (p *ConsolePresenter) ReportError(err error) {
	if err == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "[%s] error: %s\n", p.stamp(), apperror.UserMessage(err))
}

// ReportBlock prints the new head and the gas price when known.
func (p *ConsolePresenter) ReportBlock(block *blockchainDomain.Block, gas *blockchainDomain.GasPrice) {
	if block == nil {
		return
	}
	line := fmt.Sprintf("block #%d", block.Number)
	if gas != nil {
		line += " gas " + gas.String()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "[%s] %s\n", p.stamp(), line)
}

// Stop prints the footer.
func (p *ConsolePresenter) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, "")
	fmt.Fprintln(p.out, domain.Footer)
}

func (p *ConsolePresenter) stamp() string {
	return p.now().Format("15:04:05")
}

// FormatPage renders state as a single line.
func FormatPage(state domain.State) string {
	parts := []string{
		state.Headline(),
		state.Description(),
	}
	if state.WalletConnected {
		parts = append(parts, "wallet "+walletDomain.ShortAddress(state.Account))
	} else {
		parts = append(parts, "wallet not connected")
	}
	if state.Loading && state.LastTx != (common.Hash{}) {
		parts = append(parts, "tx "+state.LastTx.Hex())
	}
	parts = append(parts, "["+state.Action().Label()+"]")
	return strings.Join(parts, " | ")
}
