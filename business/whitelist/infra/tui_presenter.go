package infra

import (
	tea "github.com/charmbracelet/bubbletea"

	blockchainDomain "github.com/fd1az/whitelist-dapp/business/blockchain/domain"
	"github.com/fd1az/whitelist-dapp/business/whitelist/app"
	"github.com/fd1az/whitelist-dapp/business/whitelist/domain"
	"github.com/fd1az/whitelist-dapp/pkg/ui"
)

var _ app.Presenter = (*TUIPresenter)(nil)

// TUIPresenter implements Presenter by forwarding to the Bubble Tea program.
type TUIPresenter struct {
	send func(tea.Msg)
}

// NewTUIPresenter creates a presenter that delivers messages through send,
// usually ui.Send.
func NewTUIPresenter(send func(tea.Msg)) *TUIPresenter {
	return &TUIPresenter{send: send}
}

// Render sends the page state to the TUI.
func (p *TUIPresenter) Render(state domain.State) {
	p.send(ui.StateMsg{State: state})
}

// ReportError sends err to the error panel.
func (p *TUIPresenter) ReportError(err error) {
	if err == nil {
		return
	}
	p.send(ui.ErrorMsg{Error: err})
}

// ReportBlock sends the new head to the status bar.
func (p *TUIPresenter) ReportBlock(block *blockchainDomain.Block, gas *blockchainDomain.GasPrice) {
	if block == nil {
		return
	}
	msg := ui.BlockMsg{Number: block.Number, Timestamp: block.Timestamp}
	if gas != nil {
		msg.Gas = gas.String()
	}
	p.send(msg)
}
