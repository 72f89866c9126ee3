// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	connectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	disconnectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	mutedStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// ChainStatus is what the status bar knows about the node and the wallet.
type ChainStatus struct {
	Account    string // short form, empty when no wallet is connected
	Network    string
	Block      uint64
	Gas        string // empty until the first price arrives
	LastUpdate time.Time
}

// StatusComponent renders the one-line status bar.
type StatusComponent struct {
	status ChainStatus
	now    func() time.Time
}

// NewStatusComponent creates a status bar for network.
func NewStatusComponent(network string) *StatusComponent {
	return &StatusComponent{
		status: ChainStatus{Network: network},
		now:    time.Now,
	}
}

// SetAccount updates the wallet segment.
func (s *StatusComponent) SetAccount(short string) {
	s.status.Account = short
}

// SetBlock records a new head and its gas price.
func (s *StatusComponent) SetBlock(number uint64, gas string) {
	s.status.Block = number
	if gas != "" {
		s.status.Gas = gas
	}
	s.status.LastUpdate = s.now()
}

// Status returns the current values.
func (s *StatusComponent) Status() ChainStatus {
	return s.status
}

// View renders the status bar.
func (s *StatusComponent) View() string {
	var parts []string

	if s.status.Account != "" {
		parts = append(parts, connectedStyle.Render("● "+s.status.Account))
	} else {
		parts = append(parts, disconnectedStyle.Render("○ wallet not connected"))
	}

	if s.status.Network != "" {
		parts = append(parts, s.status.Network)
	}

	if s.status.Block > 0 {
		parts = append(parts, fmt.Sprintf("Block: #%d", s.status.Block))
	} else {
		parts = append(parts, mutedStyle.Render("Block: waiting..."))
	}

	if s.status.Gas != "" {
		parts = append(parts, "Gas: "+s.status.Gas)
	}

	if !s.status.LastUpdate.IsZero() {
		ago := s.now().Sub(s.status.LastUpdate).Round(time.Second)
		parts = append(parts, mutedStyle.Render(fmt.Sprintf("Updated: %s ago", ago)))
	}

	return strings.Join(parts, "  │  ")
}
